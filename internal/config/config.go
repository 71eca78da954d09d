package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"StockForecast/internal/calculator"
	"StockForecast/internal/cleaning"
)

// Providers lists the supported data_source.provider values.
var Providers = []string{"yahoo", "finance-go", "rest", "csv"}

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Provider  string `yaml:"provider"`
		BaseURL   string `yaml:"base_url"`
		APIKey    string `yaml:"api_key"`
		CSVDir    string `yaml:"csv_dir"`
		StartDate string `yaml:"start_date"`
	} `yaml:"data_source"`
	Tickers  []string `yaml:"tickers"`
	Cleaning struct {
		IQRMultiplier float64 `yaml:"iqr_multiplier"`
	} `yaml:"cleaning"`
	Report struct {
		MAWindow   int    `yaml:"ma_window"`
		CandleDays int    `yaml:"candle_days"`
		TailRows   int    `yaml:"tail_rows"`
		OutputDir  string `yaml:"output_dir"`
	} `yaml:"report"`
	Forecast struct {
		Years            int     `yaml:"years"`
		IntervalWidth    float64 `yaml:"interval_width"`
		Changepoints     int     `yaml:"changepoints"`
		ChangepointRange float64 `yaml:"changepoint_range"`
	} `yaml:"forecast"`
	Cache struct {
		TTL             time.Duration `yaml:"ttl"`
		CleanupInterval time.Duration `yaml:"cleanup_interval"`
		SQLitePath      string        `yaml:"sqlite_path"`
	} `yaml:"cache"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
		PurgeCron   string `yaml:"purge_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Proxy string `yaml:"proxy"`
}

// Load reads .env, then the YAML file, then applies environment variable
// overrides and defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		c.DataSource.Provider = v
	}
	if v := os.Getenv("DATA_BASE_URL"); v != "" {
		c.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_API_KEY"); v != "" {
		c.DataSource.APIKey = v
	}
	if v := os.Getenv("CSV_DIR"); v != "" {
		c.DataSource.CSVDir = v
	}
	if v := os.Getenv("START_DATE"); v != "" {
		c.DataSource.StartDate = v
	}
	if v := os.Getenv("TICKERS"); v != "" {
		c.Tickers = nil
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				c.Tickers = append(c.Tickers, strings.ToUpper(t))
			}
		}
	}
	if v := os.Getenv("FORECAST_YEARS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Forecast.Years = n
		}
	}
	if v := os.Getenv("IQR_MULTIPLIER"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Cleaning.IQRMultiplier = f
		}
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		c.Report.OutputDir = v
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Cache.TTL = d
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Cache.SQLitePath = v
	}
	if v := os.Getenv("CRON_REFRESH"); v != "" {
		c.Schedule.RefreshCron = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
}

func (c *Config) applyDefaults() {
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
	}
	if c.DataSource.CSVDir == "" {
		c.DataSource.CSVDir = "data"
	}
	if c.DataSource.StartDate == "" {
		c.DataSource.StartDate = "2020-01-01"
	}
	if len(c.Tickers) == 0 {
		c.Tickers = []string{"GOOG", "MSFT", "GME", "SONY"}
	}
	if c.Cleaning.IQRMultiplier == 0 {
		c.Cleaning.IQRMultiplier = cleaning.DefaultIQRMultiplier
	}
	if c.Report.MAWindow == 0 {
		c.Report.MAWindow = calculator.DefaultMAWindow
	}
	if c.Report.CandleDays == 0 {
		c.Report.CandleDays = 10
	}
	if c.Report.TailRows == 0 {
		c.Report.TailRows = 5
	}
	if c.Report.OutputDir == "" {
		c.Report.OutputDir = "output"
	}
	if c.Forecast.Years == 0 {
		c.Forecast.Years = 1
	}
	if c.Forecast.IntervalWidth == 0 {
		c.Forecast.IntervalWidth = 0.8
	}
	if c.Forecast.Changepoints == 0 {
		c.Forecast.Changepoints = 25
	}
	if c.Forecast.ChangepointRange == 0 {
		c.Forecast.ChangepointRange = 0.8
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = time.Hour
	}
	if c.Cache.CleanupInterval == 0 {
		c.Cache.CleanupInterval = 10 * time.Minute
	}
	if c.Schedule.RefreshCron == "" {
		c.Schedule.RefreshCron = "0 0 22 * * 1-5"
	}
	if c.Schedule.PurgeCron == "" {
		c.Schedule.PurgeCron = "0 */30 * * * *"
	}
}

// StartTime parses data_source.start_date.
func (c *Config) StartTime() (time.Time, error) {
	return time.Parse("2006-01-02", c.DataSource.StartDate)
}

// TelegramEnabled reports whether notifications are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that all fields are usable.
func (c *Config) Validate() error {
	known := false
	for _, p := range Providers {
		if c.DataSource.Provider == p {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("data_source.provider %q must be one of %s", c.DataSource.Provider, strings.Join(Providers, ", "))
	}
	if c.DataSource.Provider == "rest" && c.DataSource.BaseURL == "" {
		return fmt.Errorf("data_source.base_url is required for the rest provider")
	}
	if _, err := c.StartTime(); err != nil {
		return fmt.Errorf("data_source.start_date: %w", err)
	}
	if c.Forecast.Years < 1 || c.Forecast.Years > 4 {
		return fmt.Errorf("forecast.years must be between 1 and 4")
	}
	if w := c.Forecast.IntervalWidth; !(w > 0 && w < 1) {
		return fmt.Errorf("forecast.interval_width must be in (0, 1)")
	}
	if !cleaning.ValidMultiplier(c.Cleaning.IQRMultiplier) {
		return fmt.Errorf("cleaning.iqr_multiplier must be a positive finite number")
	}
	if c.Report.MAWindow < 1 {
		return fmt.Errorf("report.ma_window must be positive")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}
