package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"StockForecast/internal/app"
	"StockForecast/internal/cleaning"
	"StockForecast/internal/collector"
	"StockForecast/internal/config"
	"StockForecast/internal/prompt"
	"StockForecast/internal/report"
	"StockForecast/internal/scheduler"
)

func configPath(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return p
	}
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "configs/config.yaml"
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath(cmd))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "stockforecast",
		Short:        "Load, clean and forecast daily stock prices",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "Configuration file path (default configs/config.yaml or $CONFIG_PATH)")

	root.AddCommand(newRunCmd())
	root.AddCommand(newCleanCmd())
	root.AddCommand(newWatchCmd())
	return root
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [TICKER]",
		Short: "Forecast one ticker and print the report",
		Long: `Load the ticker's history, clean it, fit the forecast model and print the
terminal report. Without TICKER an interactive selection is shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			years, _ := cmd.Flags().GetInt("years")
			startFlag, _ := cmd.Flags().GetString("start")
			endFlag, _ := cmd.Flags().GetString("end")
			noHTML, _ := cmd.Flags().GetBool("no-html")

			p := prompt.New()
			var ticker string
			if len(args) == 1 {
				ticker = strings.ToUpper(args[0])
			} else {
				if ticker, err = p.Ticker(cfg.Tickers); err != nil {
					return err
				}
			}
			if years == 0 {
				if len(args) == 1 {
					years = cfg.Forecast.Years
				} else if years, err = p.Years(cfg.Forecast.Years); err != nil {
					return err
				}
			}
			if years < 1 || years > prompt.MaxYears {
				return fmt.Errorf("--years must be between 1 and %d", prompt.MaxYears)
			}

			req := app.Request{Ticker: ticker, Years: years}
			if req.Start, err = parseDateFlag(startFlag, cfg.DataSource.StartDate); err != nil {
				return fmt.Errorf("--start: %w", err)
			}
			if req.End, err = parseDateFlag(endFlag, ""); err != nil {
				return fmt.Errorf("--end: %w", err)
			}

			c, err := app.Build(cfg)
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rep, err := c.Runner.Run(ctx, req)
			if err != nil {
				return err
			}
			if err := report.WriteTerminal(os.Stdout, rep.View, c.Report); err != nil {
				return err
			}
			if noHTML {
				return nil
			}
			path, err := report.WriteHTML(rep.View, c.Report, time.Now())
			if err != nil {
				return err
			}
			log.Printf("[INFO] report written: %s", path)
			return nil
		},
	}
	cmd.Flags().Int("years", 0, "Forecast horizon in years, 1 to 4 (default from config)")
	cmd.Flags().String("start", "", "First date to load, YYYY-MM-DD (default data_source.start_date)")
	cmd.Flags().String("end", "", "Last date to load, YYYY-MM-DD (default today)")
	cmd.Flags().Bool("no-html", false, "Skip writing the HTML chart page")
	return cmd
}

func parseDateFlag(v, def string) (time.Time, error) {
	if v == "" {
		v = def
	}
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(cleaning.DateLayout, v)
}

func newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Run the cleaning pipeline over a CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, _ := cmd.Flags().GetString("in")
			out, _ := cmd.Flags().GetString("out")
			k, _ := cmd.Flags().GetFloat64("iqr")

			f, err := os.Open(in)
			if err != nil {
				return err
			}
			defer f.Close()
			rows, err := collector.ReadCSV(f)
			if err != nil {
				return fmt.Errorf("read %s: %w", in, err)
			}

			res, err := cleaning.Clean(rows, cleaning.Options{IQRMultiplier: k})
			if err != nil {
				return err
			}
			for _, w := range res.Warnings {
				log.Printf("[WARN] %s", w)
			}
			log.Printf("[INFO] %d rows in, %d kept, %d outliers, %d inconsistent (fences %.4f..%.4f)",
				len(rows), len(res.Bars), len(res.Outliers), len(res.Inconsistent), res.Bounds.Lower, res.Bounds.Upper)

			w := os.Stdout
			if out != "" && out != "-" {
				of, err := os.Create(out)
				if err != nil {
					return err
				}
				defer of.Close()
				w = of
			}
			return collector.WriteCSV(w, res.Bars)
		},
	}
	cmd.Flags().String("in", "", "Input CSV file")
	cmd.Flags().String("out", "-", "Output CSV file, - for stdout")
	cmd.Flags().Float64("iqr", cleaning.DefaultIQRMultiplier, "IQR fence multiplier")
	cmd.MarkFlagRequired("in")
	return cmd
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Refresh every configured ticker on a cron schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			start, err := cfg.StartTime()
			if err != nil {
				return err
			}
			c, err := app.Build(cfg)
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sched := scheduler.NewScheduler(ctx, c, cfg.Tickers, cfg.Forecast.Years, start)
			if err := sched.RegisterAll(cfg.Schedule.RefreshCron, cfg.Schedule.PurgeCron); err != nil {
				return fmt.Errorf("register cron tasks: %w", err)
			}
			sched.Start()
			defer sched.Stop()

			if os.Getenv("RUN_ON_START") == "true" {
				log.Println("[INFO] RUN_ON_START enabled, refreshing now")
				sched.RunRefreshNow()
			}

			log.Printf("[INFO] watching %s. Press Ctrl+C to stop.", strings.Join(cfg.Tickers, ", "))

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh

			log.Println("[INFO] shutdown signal received, stopping...")
			cancel()
			return nil
		},
	}
}
