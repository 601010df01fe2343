package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/meanrev/pairscan/internal/core"
)

func TestLoad_FromFile(t *testing.T) {
	content := []byte(`
server:
  host: "127.0.0.1"
  port: 9090

symbols:
  - BTCUSDT
  - ETHUSDT
  - SOLUSDT

scanner:
  lookback_days: 14
  interval: "15m"
  min_correlation: 0.7

backtest:
  entry_threshold: 2.5
  stop_loss: 4.0
  lookback: 48h
  interval: "15m"

storage:
  archive:
    type: localfs
    path: "/tmp/pairscan/archive"
`)

	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if len(cfg.Symbols) != 3 {
		t.Errorf("expected 3 symbols, got %d", len(cfg.Symbols))
	}
	if cfg.Scanner.LookbackDays != 14 {
		t.Errorf("expected scanner lookback 14 days, got %d", cfg.Scanner.LookbackDays)
	}
	if cfg.Scanner.MinCorrelation != 0.7 {
		t.Errorf("expected min_correlation 0.7, got %f", cfg.Scanner.MinCorrelation)
	}
	if cfg.Backtest.EntryThreshold != 2.5 {
		t.Errorf("expected entry_threshold 2.5, got %f", cfg.Backtest.EntryThreshold)
	}
	if cfg.Backtest.Lookback != 48*time.Hour {
		t.Errorf("expected backtest lookback 48h, got %v", cfg.Backtest.Lookback)
	}
	if cfg.Storage.Archive.Type != "localfs" {
		t.Errorf("expected localfs, got %s", cfg.Storage.Archive.Type)
	}

	// Fields absent from the file keep their defaults.
	if cfg.Backtest.CommissionPct != 0.1 {
		t.Errorf("expected default commission 0.1, got %f", cfg.Backtest.CommissionPct)
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Scanner.LookbackDays != 30 {
		t.Errorf("expected default scanner lookback 30 days, got %d", cfg.Scanner.LookbackDays)
	}
	if cfg.Storage.Archive.Type != "localfs" {
		t.Errorf("expected default archive type localfs, got %s", cfg.Storage.Archive.Type)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"invalid port - zero", func(c *Config) { c.Server.Port = 0 }, true},
		{"invalid port - too high", func(c *Config) { c.Server.Port = 70000 }, true},
		{"zero max jobs", func(c *Config) { c.Server.MaxJobs = 0 }, true},
		{"bad scanner interval", func(c *Config) { c.Scanner.Interval = "3m" }, true},
		{"backtest stop below entry", func(c *Config) { c.Backtest.StopLoss = 1.0 }, true},
		{"unknown archive type", func(c *Config) { c.Storage.Archive.Type = "tape" }, true},
		{"localfs without path", func(c *Config) { c.Storage.Archive.Path = "" }, true},
		{"s3 without bucket", func(c *Config) { c.Storage.Archive.Type = "s3" }, true},
		{"negative cache ttl", func(c *Config) { c.Cache.TTL = -time.Second }, true},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !isConfigError(err) {
				t.Errorf("expected a config error code, got %v", err)
			}
		})
	}
}

func isConfigError(err error) bool {
	var coreErr *core.Error
	if !errors.As(err, &coreErr) {
		return false
	}
	return coreErr.Code == core.ErrConfigInvalid.Code || coreErr.Code == core.ErrConfigMissing.Code
}
