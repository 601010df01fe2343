package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/meanrev/pairscan/internal/app"
	"github.com/meanrev/pairscan/internal/collector/binance"
	"github.com/meanrev/pairscan/internal/config"
	"github.com/meanrev/pairscan/internal/logger"
	"github.com/meanrev/pairscan/internal/storage/archive"
)

// loadConfig reads the config file named by --config, or falls back to
// defaults when none is given.
func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Defaults(), nil
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger from the loaded config. --debug
// overrides the configured level.
func newLogger(cfg *config.Config) *zap.Logger {
	level, format := cfg.Log.Level, cfg.Log.Format
	if debug {
		level = "debug"
		format = "console"
	}
	log := logger.Must(level, format)
	if cfgFile == "" {
		log.Warn("no config file specified, using defaults")
	}
	return log
}

// buildApp assembles the application from configuration: collectors,
// snapshot archive, and series cache.
func buildApp(cfg *config.Config, log *zap.Logger) (*app.App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	a := app.New(cfg, log)

	for name, c := range cfg.Collectors {
		if !c.Enabled {
			continue
		}
		switch name {
		case "binance":
			if c.BaseURL != "" {
				a.RegisterProvider(binance.NewWithBaseURL(c.BaseURL))
			} else {
				a.RegisterProvider(binance.New())
			}
		default:
			return nil, fmt.Errorf("unknown collector %q", name)
		}
	}

	storage, err := buildArchive(cfg)
	if err != nil {
		return nil, err
	}
	if storage != nil {
		a.SetSnapshots(archive.NewSnapshots(storage))
	}

	return a, nil
}

func buildArchive(cfg *config.Config) (archive.Storage, error) {
	switch cfg.Storage.Archive.Type {
	case "localfs":
		return archive.NewLocalFS(cfg.Storage.Archive.Path)
	case "s3":
		s3 := cfg.Storage.Archive.S3
		return archive.NewS3(archive.S3Config{
			Bucket:    s3.Bucket,
			Endpoint:  s3.Endpoint,
			Region:    s3.Region,
			AccessKey: s3.AccessKey,
			SecretKey: s3.SecretKey,
			Prefix:    s3.Prefix,
		})
	default:
		return nil, fmt.Errorf("unknown archive type %q", cfg.Storage.Archive.Type)
	}
}
