package backtest

// Side is the direction of a spread position.
type Side string

const (
	SideLongSpread  Side = "long_spread"
	SideShortSpread Side = "short_spread"
)

// ExitReason records why a position was closed.
type ExitReason string

const (
	ExitMeanReversion ExitReason = "mean_reversion"
	ExitStopLoss      ExitReason = "stop_loss"
	ExitEndOfData     ExitReason = "end_of_data"
)

// position is the engine's open-position state. A nil *position means flat;
// the entry fields below only exist while a position is open, which is what
// keeps them from leaking into the flat state.
type position struct {
	side        Side
	entryBar    int
	entryZ      float64
	entryPrice1 float64
	entryPrice2 float64
	hedgeRatio  float64
}

// Trade is the immutable record of one completed position.
type Trade struct {
	Side        Side       `json:"side"`
	EntryBar    int        `json:"entry_bar"`
	ExitBar     int        `json:"exit_bar"`
	EntryZ      float64    `json:"entry_z"`
	ExitZ       float64    `json:"exit_z"`
	EntryPrice1 float64    `json:"entry_price1"`
	EntryPrice2 float64    `json:"entry_price2"`
	ExitPrice1  float64    `json:"exit_price1"`
	ExitPrice2  float64    `json:"exit_price2"`
	HedgeRatio  float64    `json:"hedge_ratio"`
	GrossPnL    float64    `json:"gross_pnl"`
	NetPnL      float64    `json:"net_pnl"`
	HoldingBars int        `json:"holding_bars"`
	ExitReason  ExitReason `json:"exit_reason"`
}

// IsWin reports whether the trade was profitable after costs.
func (t Trade) IsWin() bool {
	return t.NetPnL > 0
}

// Result holds the complete output of one backtest run.
type Result struct {
	Trades      []Trade   `json:"trades"`
	BarReturns  []float64 `json:"bar_returns"`
	EquityCurve []float64 `json:"equity_curve"`
	Metrics     Metrics   `json:"metrics"`
	Config      Config    `json:"config"`

	// Baseline regression parameters used for the spread.
	HedgeRatio float64 `json:"hedge_ratio"`
	Intercept  float64 `json:"intercept"`
}
