// Package backtest simulates a pairs-trading strategy bar by bar: it derives
// a spread from a cointegrating regression, converts its rolling Z-score
// into entries and exits, prices round-trip costs, and reports trades, an
// equity curve and performance metrics.
package backtest

import (
	"context"
	"fmt"
	"math"

	"github.com/meanrev/pairscan/internal/core"
	"github.com/meanrev/pairscan/internal/kalman"
	"github.com/meanrev/pairscan/internal/stat"
	"go.uber.org/zap"
)

// minSimulationBars is the minimum number of bars the simulation needs
// beyond the rolling lookback window.
const minSimulationBars = 20

// Engine runs pairs-trading backtests. An Engine is stateless across runs;
// all per-run mutable state (position, rolling window, Kalman filter) is
// scoped to a single Run call, so one Engine may serve concurrent runs.
type Engine struct {
	cfg    Config
	logger *zap.Logger
}

// New creates a backtest engine. A nil logger disables logging.
func New(cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{cfg: cfg, logger: logger}
}

// Run simulates the pair over the full history of the two aligned series.
//
// The baseline hedge ratio comes from an Engle-Granger regression over the
// WHOLE series (or from forced parameters). That is a deliberate look-ahead
// simplification: it makes this an offline historical evaluation, never a
// walk-forward result. Enable UseDynamicHedge for a Kalman-filtered hedge
// ratio that only uses data up to the current bar.
func (e *Engine) Run(ctx context.Context, series1, series2 core.PriceSeries) (*Result, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	if !series1.AlignedWith(series2) {
		return nil, core.ErrSeriesMismatch
	}

	prices1 := series1.Prices()
	prices2 := series2.Prices()
	n := len(prices1)

	window := e.cfg.LookbackBars()
	if n < window+minSimulationBars {
		return nil, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("need %d bars (lookback %d + %d), have %d", window+minSimulationBars, window, minSimulationBars, n))
	}

	alpha, beta, err := e.baseline(prices1, prices2)
	if err != nil {
		return nil, err
	}

	var filter *kalman.Filter
	if e.cfg.UseDynamicHedge {
		filter = kalman.New(alpha, beta, e.cfg.KalmanDelta, e.cfg.KalmanR)
	}

	costs := CostModel{CommissionPct: e.cfg.CommissionPct, SlippageBps: e.cfg.SlippageBps}
	roundTrip := costs.RoundTrip()

	var (
		trades     []Trade
		pos        *position
		spreads    = make([]float64, 0, n)
		barReturns = make([]float64, n)
		equity     = make([]float64, 1, n+1)
	)
	equity[0] = 1.0

	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		a, b := alpha, beta
		if filter != nil {
			a, b = filter.Update(prices2[i], prices1[i])
		}

		spread := prices1[i] - a - b*prices2[i]
		spreads = append(spreads, spread)

		windowFull := len(spreads) >= window
		z := 0.0
		if windowFull {
			recent := spreads[len(spreads)-window:]
			sd := stat.StdDev(recent)
			if sd > 0 {
				z = (spread - stat.Mean(recent)) / sd
			}
		}

		closedThisBar := false
		if pos != nil && windowFull {
			if reason, ok := e.shouldExit(pos, z); ok {
				tr := e.closePosition(pos, i, z, prices1[i], prices2[i], reason, roundTrip)
				trades = append(trades, tr)
				barReturns[i] = tr.NetPnL
				pos = nil
				closedThisBar = true
			}
		}

		// No re-entry on the bar a position just closed: a stop-loss exit
		// leaves |Z| beyond the entry threshold and would otherwise reopen
		// immediately.
		if pos == nil && !closedThisBar && windowFull {
			if side, ok := e.shouldEnter(z); ok {
				pos = &position{
					side:        side,
					entryBar:    i,
					entryZ:      z,
					entryPrice1: prices1[i],
					entryPrice2: prices2[i],
					hedgeRatio:  b,
				}
			}
		}

		equity = append(equity, equity[len(equity)-1]*(1+barReturns[i]))
	}

	// Force-close any open position at the end of data.
	if pos != nil {
		last := n - 1
		z := lastZScore(spreads, window)
		tr := e.closePosition(pos, last, z, prices1[last], prices2[last], ExitEndOfData, roundTrip)
		trades = append(trades, tr)
		barReturns[last] += tr.NetPnL
		equity[len(equity)-1] = equity[len(equity)-2] * (1 + barReturns[last])
	}

	metrics := ComputeMetrics(trades, equity, e.cfg.Interval)

	e.logger.Debug("backtest complete",
		zap.String("pair", series1.Symbol+"/"+series2.Symbol),
		zap.Int("bars", n),
		zap.Int("trades", len(trades)),
		zap.Float64("total_return", metrics.TotalReturn),
	)

	return &Result{
		Trades:      trades,
		BarReturns:  barReturns,
		EquityCurve: equity,
		Metrics:     metrics,
		Config:      e.cfg,
		HedgeRatio:  beta,
		Intercept:   alpha,
	}, nil
}

// baseline returns the regression parameters for the spread: forced values
// when injected, otherwise a whole-series Engle-Granger fit.
func (e *Engine) baseline(prices1, prices2 []float64) (alpha, beta float64, err error) {
	if e.cfg.ForcedHedgeRatio != nil && e.cfg.ForcedIntercept != nil {
		return *e.cfg.ForcedIntercept, *e.cfg.ForcedHedgeRatio, nil
	}
	coint, err := stat.EngleGranger(prices1, prices2)
	if err != nil {
		return 0, 0, err
	}
	return coint.Intercept, coint.HedgeRatio, nil
}

// shouldEnter checks entry conditions for a flat engine.
func (e *Engine) shouldEnter(z float64) (Side, bool) {
	switch {
	case z >= e.cfg.EntryThreshold:
		return SideShortSpread, true
	case z <= -e.cfg.EntryThreshold:
		return SideLongSpread, true
	}
	return "", false
}

// shouldExit checks exit conditions in priority order: mean reversion first,
// then stop loss. The stop only fires when Z has moved further adverse than
// at entry, so a favorable extreme never stops a winning position out.
func (e *Engine) shouldExit(pos *position, z float64) (ExitReason, bool) {
	switch pos.side {
	case SideLongSpread:
		if z >= -e.cfg.ExitThreshold {
			return ExitMeanReversion, true
		}
		if z <= -e.cfg.StopLoss && z < pos.entryZ {
			return ExitStopLoss, true
		}
	case SideShortSpread:
		if z <= e.cfg.ExitThreshold {
			return ExitMeanReversion, true
		}
		if z >= e.cfg.StopLoss && z > pos.entryZ {
			return ExitStopLoss, true
		}
	}
	return "", false
}

// closePosition converts an open position into a Trade record at the given
// bar. Gross PnL weights the two legs by the hedge ratio so that a unit of
// capital is split across them in proportion to their sizing:
// w1 = 1/(1+|beta|), w2 = |beta|/(1+|beta|).
func (e *Engine) closePosition(pos *position, bar int, z, price1, price2 float64, reason ExitReason, roundTrip float64) Trade {
	absRatio := math.Abs(pos.hedgeRatio)
	w1 := 1 / (1 + absRatio)
	w2 := absRatio / (1 + absRatio)

	r1 := (price1 - pos.entryPrice1) / pos.entryPrice1
	r2 := (price2 - pos.entryPrice2) / pos.entryPrice2

	var gross float64
	if pos.side == SideLongSpread {
		gross = w1*r1 - w2*r2
	} else {
		gross = -w1*r1 + w2*r2
	}

	return Trade{
		Side:        pos.side,
		EntryBar:    pos.entryBar,
		ExitBar:     bar,
		EntryZ:      pos.entryZ,
		ExitZ:       z,
		EntryPrice1: pos.entryPrice1,
		EntryPrice2: pos.entryPrice2,
		ExitPrice1:  price1,
		ExitPrice2:  price2,
		HedgeRatio:  pos.hedgeRatio,
		GrossPnL:    gross,
		NetPnL:      gross - roundTrip,
		HoldingBars: bar - pos.entryBar,
		ExitReason:  reason,
	}
}

// lastZScore recomputes the final bar's Z-score for force-closed positions.
func lastZScore(spreads []float64, window int) float64 {
	if len(spreads) < window {
		return 0
	}
	recent := spreads[len(spreads)-window:]
	sd := stat.StdDev(recent)
	if sd == 0 {
		return 0
	}
	return (spreads[len(spreads)-1] - stat.Mean(recent)) / sd
}
