package backtest

import (
	"math"
	"testing"

	"github.com/meanrev/pairscan/internal/core"
)

func TestComputeMetrics_Empty(t *testing.T) {
	m := ComputeMetrics(nil, []float64{1.0}, core.Interval1h)
	if m.TotalTrades != 0 || m.TotalReturn != 0 {
		t.Errorf("empty input: %+v", m)
	}
}

func TestComputeMetrics_WinRateAndProfitFactor(t *testing.T) {
	trades := []Trade{
		{NetPnL: 0.10, HoldingBars: 10},
		{NetPnL: 0.05, HoldingBars: 20},
		{NetPnL: -0.05, HoldingBars: 10},
		{NetPnL: 0.02, HoldingBars: 8},
	}
	equity := []float64{1.0, 1.1, 1.155, 1.097, 1.119}

	m := ComputeMetrics(trades, equity, core.Interval1h)

	if m.TotalTrades != 4 {
		t.Errorf("TotalTrades = %d, want 4", m.TotalTrades)
	}
	if m.WinRate != 75 {
		t.Errorf("WinRate = %f, want 75", m.WinRate)
	}
	want := (0.10 + 0.05 + 0.02) / 0.05
	if math.Abs(m.ProfitFactor-want) > 1e-9 {
		t.Errorf("ProfitFactor = %f, want %f", m.ProfitFactor, want)
	}
	if m.AvgHoldingBars != 12 {
		t.Errorf("AvgHoldingBars = %f, want 12", m.AvgHoldingBars)
	}
}

func TestComputeMetrics_ProfitFactorNoLosers(t *testing.T) {
	trades := []Trade{
		{NetPnL: 0.04, HoldingBars: 5},
		{NetPnL: 0.01, HoldingBars: 5},
	}
	m := ComputeMetrics(trades, []float64{1.0, 1.04, 1.05}, core.Interval1h)
	if !math.IsInf(m.ProfitFactor, 1) {
		t.Errorf("ProfitFactor = %f, want +Inf when no losers", m.ProfitFactor)
	}
	if !math.IsInf(m.SortinoRatio, 1) {
		t.Errorf("SortinoRatio = %f, want +Inf with no downside", m.SortinoRatio)
	}
}

func TestComputeMetrics_TotalReturnFromEquity(t *testing.T) {
	equity := []float64{1.0, 1.02, 1.05, 0.98, 1.10}
	m := ComputeMetrics(nil, equity, core.Interval1d)
	if math.Abs(m.TotalReturn-0.10) > 1e-12 {
		t.Errorf("TotalReturn = %f, want 0.10", m.TotalReturn)
	}
}

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		name   string
		equity []float64
		want   float64
		tol    float64
	}{
		{"monotone up", []float64{1.0, 1.1, 1.2, 1.3}, 0, 1e-12},
		{"single dip", []float64{1.0, 1.2, 0.9, 1.1}, 0.25, 1e-9},
		{"deep trough", []float64{1.0, 2.0, 0.5, 3.0}, 0.75, 1e-9},
		{"empty", nil, 0, 1e-12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := maxDrawdown(tt.equity); math.Abs(got-tt.want) > tt.tol {
				t.Errorf("maxDrawdown = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestComputeMetrics_SubDailyAnnualization(t *testing.T) {
	trades := []Trade{
		{NetPnL: 0.02, HoldingBars: 8},
		{NetPnL: -0.01, HoldingBars: 8},
		{NetPnL: 0.02, HoldingBars: 8},
	}
	equity := []float64{1.0, 1.02, 1.0098, 1.03}

	m15 := ComputeMetrics(trades, equity, core.Interval15m)
	m1d := ComputeMetrics(trades, equity, core.Interval1d)

	// A 15-minute interval packs 96 bars into a day, so the same trade
	// PnLs annualize to a much larger Sharpe than at daily bars.
	if m15.SharpeRatio <= m1d.SharpeRatio {
		t.Errorf("15m Sharpe %f should exceed 1d Sharpe %f", m15.SharpeRatio, m1d.SharpeRatio)
	}
	ratio := m15.SharpeRatio / m1d.SharpeRatio
	want := math.Sqrt(96)
	if math.Abs(ratio-want) > 1e-6 {
		t.Errorf("Sharpe ratio scaling = %f, want sqrt(96) = %f", ratio, want)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults ok", func(c *Config) {}, false},
		{"zero entry", func(c *Config) { c.EntryThreshold = 0 }, true},
		{"negative exit", func(c *Config) { c.ExitThreshold = -0.5 }, true},
		{"stop below entry", func(c *Config) { c.StopLoss = 1.0 }, true},
		{"negative commission", func(c *Config) { c.CommissionPct = -1 }, true},
		{"zero lookback", func(c *Config) { c.Lookback = 0 }, true},
		{"bad interval", func(c *Config) { c.Interval = "2w" }, true},
		{"forced ratio without intercept", func(c *Config) {
			one := 1.0
			c.ForcedHedgeRatio = &one
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCostModel_RoundTrip(t *testing.T) {
	c := CostModel{CommissionPct: 0.1, SlippageBps: 5}
	want := 2*0.001 + 2*0.0005
	if math.Abs(c.RoundTrip()-want) > 1e-12 {
		t.Errorf("RoundTrip = %f, want %f", c.RoundTrip(), want)
	}

	free := CostModel{}
	if free.RoundTrip() != 0 {
		t.Errorf("zero-cost model round trip = %f, want 0", free.RoundTrip())
	}
}
