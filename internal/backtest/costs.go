package backtest

// CostModel converts commission and slippage assumptions into a per-trade
// cost deduction. Commission is a percentage per fill, slippage in basis
// points per fill; a pair trade pays both on entry and exit.
type CostModel struct {
	CommissionPct float64
	SlippageBps   float64
}

// RoundTrip returns the total fractional cost of opening and closing a
// position, deducted from the trade's gross return.
func (c CostModel) RoundTrip() float64 {
	return 2*c.CommissionPct/100 + 2*c.SlippageBps/10000
}
