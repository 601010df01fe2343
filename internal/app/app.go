// Package app composes the data, statistics and persistence layers into the
// operations the CLI and the HTTP API expose: pair scans, pair backtests and
// the synthetic validation harness.
package app

import (
	"context"
	"time"

	"github.com/meanrev/pairscan/internal/backtest"
	"github.com/meanrev/pairscan/internal/cache"
	"github.com/meanrev/pairscan/internal/collector"
	"github.com/meanrev/pairscan/internal/config"
	"github.com/meanrev/pairscan/internal/core"
	"github.com/meanrev/pairscan/internal/metrics"
	"github.com/meanrev/pairscan/internal/scanner"
	"github.com/meanrev/pairscan/internal/storage/archive"
	"go.uber.org/zap"
)

// App is the main application orchestrator.
type App struct {
	cfg       *config.Config
	logger    *zap.Logger
	providers *collector.Registry
	seriesTTL *cache.Memory
	metrics   *metrics.Registry
	snapshots *archive.Snapshots
}

// New creates a new App instance.
func New(cfg *config.Config, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		cfg:       cfg,
		logger:    logger,
		providers: collector.NewRegistry(),
		seriesTTL: cache.New(cfg.Cache.TTL),
	}
}

// RegisterProvider adds a data provider to the app.
func (a *App) RegisterProvider(p collector.Provider) {
	a.providers.Register(p)
}

// SetMetrics attaches a metrics registry. Optional; without it scans and
// backtests run unrecorded.
func (a *App) SetMetrics(m *metrics.Registry) {
	a.metrics = m
}

// SetSnapshots attaches an archive snapshot writer. Optional.
func (a *App) SetSnapshots(s *archive.Snapshots) {
	a.snapshots = s
}

// Snapshots returns the attached snapshot writer, or nil.
func (a *App) Snapshots() *archive.Snapshots {
	return a.snapshots
}

// Config returns the application configuration.
func (a *App) Config() *config.Config {
	return a.cfg
}

// source builds a cached series source over the default provider.
func (a *App) source() (*collector.Source, error) {
	p := a.providers.Default()
	if p == nil {
		return nil, core.ErrProviderFailed
	}
	return collector.NewSource(p, a.seriesTTL, a.logger), nil
}

// Scan runs a pair scan over the given symbols. progress may be nil.
func (a *App) Scan(ctx context.Context, symbols []string, progress scanner.Progress) (*scanner.ScanResult, error) {
	src, err := a.source()
	if err != nil {
		return nil, err
	}

	sc := scanner.New(a.cfg.Scanner, src, a.logger)
	if progress != nil {
		sc.OnProgress(progress)
	}

	start := time.Now()
	result, err := sc.Scan(ctx, symbols)
	if a.metrics != nil {
		if err != nil {
			a.metrics.RecordScan("error", time.Since(start).Seconds(), 0)
		} else {
			a.metrics.RecordScan("success", time.Since(start).Seconds(), result.PairsEvaluated)
		}
	}

	if err == nil && a.snapshots != nil {
		key, serr := a.snapshots.Save(ctx, archive.KindScan, result)
		if serr != nil {
			a.logger.Warn("scan snapshot not archived", zap.Error(serr))
		} else {
			a.logger.Debug("scan snapshot archived", zap.String("key", key))
		}
	}
	return result, err
}

// Backtest loads the two symbols' history over the scanner lookback window
// and simulates the pair with the given parameters.
func (a *App) Backtest(ctx context.Context, symbol1, symbol2 string, cfg backtest.Config) (*backtest.Result, error) {
	src, err := a.source()
	if err != nil {
		return nil, err
	}

	span := a.cfg.Scanner.Lookback()
	s1, err := src.PriceSeries(ctx, symbol1, span, cfg.Interval)
	if err != nil {
		return nil, err
	}
	s2, err := src.PriceSeries(ctx, symbol2, span, cfg.Interval)
	if err != nil {
		return nil, err
	}

	// Trim to the common most-recent window so the engine sees aligned series.
	if s1.Len() != s2.Len() {
		n := s1.Len()
		if s2.Len() < n {
			n = s2.Len()
		}
		s1.Points = s1.Points[s1.Len()-n:]
		s2.Points = s2.Points[s2.Len()-n:]
	}

	engine := backtest.New(cfg, a.logger)

	start := time.Now()
	result, err := engine.Run(ctx, s1, s2)
	if a.metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		a.metrics.RecordBacktest(status, time.Since(start).Seconds())
	}
	return result, err
}

// Validate runs the synthetic validation harness with the given seed.
func (a *App) Validate(ctx context.Context, seed int64) []backtest.ValidationCase {
	return backtest.RunValidation(ctx, seed, a.cfg.Backtest.Interval)
}
