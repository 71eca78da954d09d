package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("does-not-exist.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DataSource.Provider != "yahoo" || cfg.DataSource.StartDate != "2020-01-01" {
		t.Errorf("unexpected data source defaults %+v", cfg.DataSource)
	}
	if len(cfg.Tickers) != 4 || cfg.Tickers[0] != "GOOG" || cfg.Tickers[3] != "SONY" {
		t.Errorf("unexpected tickers %v", cfg.Tickers)
	}
	if cfg.Report.MAWindow != 20 || cfg.Report.CandleDays != 10 || cfg.Forecast.Years != 1 {
		t.Errorf("unexpected report/forecast defaults %+v %+v", cfg.Report, cfg.Forecast)
	}
	if cfg.Cache.TTL != time.Hour || cfg.Cleaning.IQRMultiplier != 1.5 {
		t.Errorf("unexpected cache/cleaning defaults")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	if cfg.TelegramEnabled() {
		t.Error("telegram should be disabled by default")
	}
}

func TestLoad_YAMLAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "config.yaml")
	content := `
data_source:
  provider: csv
  csv_dir: prices
tickers: [AAPL]
forecast:
  years: 3
cache:
  ttl: 30m
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TICKERS", "tsla, nvda")
	t.Setenv("FORECAST_YEARS", "2")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DataSource.Provider != "csv" || cfg.DataSource.CSVDir != "prices" {
		t.Errorf("unexpected data source %+v", cfg.DataSource)
	}
	if len(cfg.Tickers) != 2 || cfg.Tickers[0] != "TSLA" || cfg.Tickers[1] != "NVDA" {
		t.Errorf("expected env tickers, got %v", cfg.Tickers)
	}
	if cfg.Forecast.Years != 2 {
		t.Errorf("expected env years 2, got %d", cfg.Forecast.Years)
	}
	if cfg.Cache.TTL != 30*time.Minute {
		t.Errorf("expected ttl 30m, got %v", cfg.Cache.TTL)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("DATA_PROVIDER=finance-go\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DATA_PROVIDER", "")
	os.Unsetenv("DATA_PROVIDER")

	cfg, err := Load("missing.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DataSource.Provider != "finance-go" {
		t.Errorf("expected provider from .env, got %q", cfg.DataSource.Provider)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "bloomberg" }},
		{"rest without url", func(c *Config) { c.DataSource.Provider = "rest" }},
		{"bad start date", func(c *Config) { c.DataSource.StartDate = "01/01/2020" }},
		{"too many years", func(c *Config) { c.Forecast.Years = 5 }},
		{"bad interval", func(c *Config) { c.Forecast.IntervalWidth = 1.2 }},
		{"NaN interval", func(c *Config) { c.Forecast.IntervalWidth = math.NaN() }},
		{"negative iqr multiplier", func(c *Config) { c.Cleaning.IQRMultiplier = -1 }},
		{"NaN iqr multiplier", func(c *Config) { c.Cleaning.IQRMultiplier = math.NaN() }},
		{"infinite iqr multiplier", func(c *Config) { c.Cleaning.IQRMultiplier = math.Inf(1) }},
		{"half telegram", func(c *Config) { c.Telegram.BotToken = "x" }},
	}
	for _, tt := range tests {
		cfg := &Config{}
		cfg.applyDefaults()
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestLoad_NaNMultiplierFromEnvFailsValidation(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("IQR_MULTIPLIER", "NaN")
	cfg, err := Load("config.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected NaN multiplier to be rejected")
	}
}
