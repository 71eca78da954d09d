package app

import (
	"fmt"
	"log"

	"StockForecast/internal/cache"
	"StockForecast/internal/cleaning"
	"StockForecast/internal/collector"
	"StockForecast/internal/config"
	"StockForecast/internal/forecast"
	"StockForecast/internal/notifier"
	"StockForecast/internal/report"
	"StockForecast/internal/store"
)

// Components are the long-lived objects built from a Config.
type Components struct {
	Loader   collector.Loader
	Store    store.Store
	Cache    *cache.BarCache
	Runner   *Runner
	Notifier notifier.Notifier
	Report   report.Options
}

// Close releases the persistent store.
func (c *Components) Close() error {
	return c.Store.Close()
}

// NewLoader picks the loader for cfg.DataSource.Provider.
func NewLoader(cfg *config.Config) (collector.Loader, error) {
	switch cfg.DataSource.Provider {
	case "yahoo":
		return collector.NewYahooLoader(cfg.DataSource.BaseURL, cfg.Proxy), nil
	case "finance-go":
		return collector.NewFinanceGoLoader(), nil
	case "rest":
		return collector.NewRESTLoader(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy), nil
	case "csv":
		return collector.NewCSVLoader(cfg.DataSource.CSVDir), nil
	default:
		return nil, fmt.Errorf("unknown data provider %q", cfg.DataSource.Provider)
	}
}

// Build wires every component from cfg.
func Build(cfg *config.Config) (*Components, error) {
	loader, err := NewLoader(cfg)
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] data source: %s", loader.Name())

	var st store.Store
	if cfg.Cache.SQLitePath != "" {
		ss, err := store.NewSQLiteStore(cfg.Cache.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite store failed, using noop: %v", err)
			st = store.NewNoopStore()
		} else {
			st = ss
		}
	} else {
		st = store.NewNoopStore()
	}

	barCache := cache.New(cfg.Cache.TTL, cfg.Cache.CleanupInterval, st)
	col := collector.NewCollector(loader, barCache, cleaning.Options{IQRMultiplier: cfg.Cleaning.IQRMultiplier})

	fcCfg := forecast.Config{
		IntervalWidth:    cfg.Forecast.IntervalWidth,
		Changepoints:     cfg.Forecast.Changepoints,
		ChangepointRange: cfg.Forecast.ChangepointRange,
	}
	runner := NewRunner(col, func() forecast.Engine { return forecast.NewModel(fcCfg) }, st, cfg.Report.MAWindow)

	var n notifier.Notifier = notifier.NoopNotifier{}
	if cfg.TelegramEnabled() {
		n = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	}

	return &Components{
		Loader:   loader,
		Store:    st,
		Cache:    barCache,
		Runner:   runner,
		Notifier: n,
		Report: report.Options{
			MAWindow:   cfg.Report.MAWindow,
			CandleDays: cfg.Report.CandleDays,
			TailRows:   cfg.Report.TailRows,
			OutputDir:  cfg.Report.OutputDir,
		},
	}, nil
}
