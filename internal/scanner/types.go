package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/meanrev/pairscan/internal/core"
	"github.com/meanrev/pairscan/internal/signal"
)

// Config holds pair-scan parameters.
type Config struct {
	LookbackDays   int           `json:"lookback_days" mapstructure:"lookback_days"`
	Interval       core.Interval `json:"interval" mapstructure:"interval"`
	EntryThreshold float64       `json:"entry_threshold" mapstructure:"entry_threshold"`

	// MinCorrelation gates pairs before the more expensive cointegration
	// test; pairs below it are excluded outright.
	MinCorrelation float64 `json:"min_correlation" mapstructure:"min_correlation"`

	// MaxPValue and the half-life band shape the composite score; they do
	// not exclude pairs from the result set.
	MaxPValue   float64 `json:"max_p_value" mapstructure:"max_p_value"`
	MinHalfLife float64 `json:"min_half_life" mapstructure:"min_half_life"`
	MaxHalfLife float64 `json:"max_half_life" mapstructure:"max_half_life"`

	IncludeFunding bool `json:"include_funding" mapstructure:"include_funding"`

	// Concurrency bounds the worker pool over the O(n^2) pair space.
	Concurrency int `json:"concurrency" mapstructure:"concurrency"`

	// Timeout caps a whole scan's wall clock; zero disables the cap.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// DefaultConfig returns the standard scan parameters.
func DefaultConfig() Config {
	return Config{
		LookbackDays:   30,
		Interval:       core.Interval1h,
		EntryThreshold: 2.0,
		MinCorrelation: 0.5,
		MaxPValue:      0.05,
		MinHalfLife:    1,
		MaxHalfLife:    100,
		IncludeFunding: false,
		Concurrency:    4,
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.LookbackDays <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("lookback_days must be positive, got %d", c.LookbackDays))
	}
	if !c.Interval.IsValid() {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown bar interval %q", c.Interval))
	}
	if c.EntryThreshold <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("entry_threshold must be positive, got %f", c.EntryThreshold))
	}
	if c.MinCorrelation < 0 || c.MinCorrelation > 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("min_correlation must be in [0,1], got %f", c.MinCorrelation))
	}
	if c.MaxPValue <= 0 || c.MaxPValue > 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_p_value must be in (0,1], got %f", c.MaxPValue))
	}
	if c.MinHalfLife < 0 || c.MaxHalfLife <= c.MinHalfLife {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("half-life band [%f, %f] is invalid", c.MinHalfLife, c.MaxHalfLife))
	}
	if c.Concurrency < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency))
	}
	return nil
}

// Lookback returns the scan lookback as a duration.
func (c Config) Lookback() time.Duration {
	return time.Duration(c.LookbackDays) * 24 * time.Hour
}

// SeriesProvider supplies aligned price history and optional funding-rate
// history per symbol. It is the market-data collaborator boundary: the
// scanner core performs no I/O of its own.
type SeriesProvider interface {
	PriceSeries(ctx context.Context, symbol string, lookback time.Duration, interval core.Interval) (core.PriceSeries, error)
	FundingSeries(ctx context.Context, symbol string, lookback time.Duration) ([]core.FundingPoint, error)
}

// PairResult is one row of a scan: the full statistical picture of a single
// candidate pair.
type PairResult struct {
	Symbol1 string `json:"symbol1"`
	Symbol2 string `json:"symbol2"`

	Correlation    float64 `json:"correlation"`
	IsCointegrated bool    `json:"is_cointegrated"`
	PValue         float64 `json:"p_value"`
	HedgeRatio     float64 `json:"hedge_ratio"`
	Intercept      float64 `json:"intercept"`
	HalfLife       float64 `json:"half_life"`
	ZScore         float64 `json:"z_score"`

	Signal   signal.Signal   `json:"signal"`
	Strength signal.Strength `json:"strength"`

	FundingSpread float64 `json:"funding_spread,omitempty"`

	Score float64 `json:"score"`
}

// ScanResult is a snapshot of one scan invocation. Nothing here is
// persisted by the scanner itself.
type ScanResult struct {
	Results        []PairResult  `json:"results"`
	PairsTotal     int           `json:"pairs_total"`
	PairsEvaluated int           `json:"pairs_evaluated"`
	PairsSkipped   int           `json:"pairs_skipped"`
	Elapsed        time.Duration `json:"elapsed"`
	GeneratedAt    time.Time     `json:"generated_at"`
}

// Progress reports incremental completion to the caller.
type Progress func(completed, total int)
