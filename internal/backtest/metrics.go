package backtest

import (
	"math"

	"github.com/meanrev/pairscan/internal/core"
)

// Metrics holds annualized risk/return statistics for one backtest run.
// Sharpe and Sortino are computed from discrete trade PnLs, not bar returns,
// annualized by trade frequency; this stays correct for sub-daily bar
// intervals where per-bar annualization would be wildly off.
type Metrics struct {
	TotalReturn      float64 `json:"total_return"`
	AnnualizedReturn float64 `json:"annualized_return"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	SortinoRatio     float64 `json:"sortino_ratio"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	WinRate          float64 `json:"win_rate"`
	ProfitFactor     float64 `json:"profit_factor"`
	TotalTrades      int     `json:"total_trades"`
	AvgHoldingBars   float64 `json:"avg_holding_bars"`
}

// ComputeMetrics derives performance statistics from the closed trades and
// the compounded equity curve (first element 1.0).
func ComputeMetrics(trades []Trade, equity []float64, iv core.Interval) Metrics {
	var m Metrics

	if len(equity) > 0 {
		m.TotalReturn = equity[len(equity)-1] - 1
		m.MaxDrawdown = maxDrawdown(equity)

		bars := float64(len(equity) - 1)
		if bars > 0 && iv.BarsPerYear() > 0 && m.TotalReturn > -1 {
			m.AnnualizedReturn = math.Pow(1+m.TotalReturn, iv.BarsPerYear()/bars) - 1
		}
	}

	m.TotalTrades = len(trades)
	if len(trades) == 0 {
		return m
	}

	var wins int
	var grossProfit, grossLoss, totalHolding float64
	pnls := make([]float64, len(trades))
	for i, t := range trades {
		pnls[i] = t.NetPnL
		totalHolding += float64(t.HoldingBars)
		if t.NetPnL > 0 {
			wins++
			grossProfit += t.NetPnL
		} else {
			grossLoss += -t.NetPnL
		}
	}

	m.WinRate = float64(wins) / float64(len(trades)) * 100
	m.AvgHoldingBars = totalHolding / float64(len(trades))

	switch {
	case grossLoss > 0:
		m.ProfitFactor = grossProfit / grossLoss
	case grossProfit > 0:
		m.ProfitFactor = math.Inf(1)
	}

	// Annualize by trade frequency: trades per year = bars per year divided
	// by the average holding period in bars.
	tradesPerYear := 0.0
	if m.AvgHoldingBars > 0 {
		tradesPerYear = iv.BarsPerYear() / m.AvgHoldingBars
	}

	m.SharpeRatio = sharpe(pnls, tradesPerYear)
	m.SortinoRatio = sortino(pnls, tradesPerYear)

	return m
}

// maxDrawdown returns the largest peak-to-trough decline of the equity
// curve, tracking a monotone running peak.
func maxDrawdown(equity []float64) float64 {
	var maxDD float64
	peak := math.Inf(-1)
	for _, v := range equity {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			if dd := (peak - v) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

func sharpe(pnls []float64, tradesPerYear float64) float64 {
	if len(pnls) < 2 || tradesPerYear <= 0 {
		return 0
	}
	mean := meanOf(pnls)
	var ss float64
	for _, p := range pnls {
		d := p - mean
		ss += d * d
	}
	sd := math.Sqrt(ss / float64(len(pnls)-1))
	if sd == 0 {
		return 0
	}
	return mean / sd * math.Sqrt(tradesPerYear)
}

func sortino(pnls []float64, tradesPerYear float64) float64 {
	if len(pnls) < 2 || tradesPerYear <= 0 {
		return 0
	}
	mean := meanOf(pnls)

	var downSS float64
	for _, p := range pnls {
		if p < 0 {
			downSS += p * p
		}
	}
	downside := math.Sqrt(downSS / float64(len(pnls)))
	if downside == 0 {
		if mean > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return mean / downside * math.Sqrt(tradesPerYear)
}

func meanOf(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
