package backtest

import (
	"fmt"
	"time"

	"github.com/meanrev/pairscan/internal/core"
	"github.com/meanrev/pairscan/internal/kalman"
)

// Config holds backtest parameters. Thresholds are in Z-score units. The
// lookback is calendar time, not a bar count: the engine derives its rolling
// window as Lookback divided by the bar interval so the same configuration
// stays correct across intervals.
type Config struct {
	EntryThreshold float64 `json:"entry_threshold" mapstructure:"entry_threshold"`
	ExitThreshold  float64 `json:"exit_threshold" mapstructure:"exit_threshold"`
	StopLoss       float64 `json:"stop_loss" mapstructure:"stop_loss"`

	CommissionPct float64 `json:"commission_pct" mapstructure:"commission_pct"`
	SlippageBps   float64 `json:"slippage_bps" mapstructure:"slippage_bps"`

	UseDynamicHedge bool    `json:"use_dynamic_hedge" mapstructure:"use_dynamic_hedge"`
	KalmanDelta     float64 `json:"kalman_delta" mapstructure:"kalman_delta"`
	KalmanR         float64 `json:"kalman_r" mapstructure:"kalman_r"`

	Lookback time.Duration `json:"lookback" mapstructure:"lookback"`
	Interval core.Interval `json:"interval" mapstructure:"interval"`

	// Forced regression parameters bypass the Engle-Granger baseline. Used
	// by the synthetic validation harness to isolate engine logic from
	// estimation noise.
	ForcedHedgeRatio *float64 `json:"forced_hedge_ratio,omitempty" mapstructure:"-"`
	ForcedIntercept  *float64 `json:"forced_intercept,omitempty" mapstructure:"-"`
}

// DefaultConfig returns the standard parameter set.
func DefaultConfig() Config {
	return Config{
		EntryThreshold:  2.0,
		ExitThreshold:   0.0,
		StopLoss:        3.0,
		CommissionPct:   0.1,
		SlippageBps:     5,
		UseDynamicHedge: false,
		KalmanDelta:     kalman.DefaultDelta,
		KalmanR:         kalman.DefaultR,
		Lookback:        24 * time.Hour,
		Interval:        core.Interval15m,
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.EntryThreshold <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("entry_threshold must be positive, got %f", c.EntryThreshold))
	}
	if c.ExitThreshold < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("exit_threshold cannot be negative, got %f", c.ExitThreshold))
	}
	if c.StopLoss <= c.EntryThreshold {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("stop_loss %f must exceed entry_threshold %f", c.StopLoss, c.EntryThreshold))
	}
	if c.CommissionPct < 0 || c.SlippageBps < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("costs cannot be negative"))
	}
	if c.Lookback <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("lookback must be positive, got %v", c.Lookback))
	}
	if !c.Interval.IsValid() {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown bar interval %q", c.Interval))
	}
	if (c.ForcedHedgeRatio == nil) != (c.ForcedIntercept == nil) {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("forced hedge ratio and intercept must be set together"))
	}
	return nil
}

// LookbackBars returns the rolling window size for this configuration.
func (c Config) LookbackBars() int {
	return core.LookbackBars(c.Lookback, c.Interval)
}
