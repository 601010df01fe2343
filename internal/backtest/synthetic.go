package backtest

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/meanrev/pairscan/internal/core"
)

// Generator produces synthetic price pairs for validating the engine. All
// randomness flows through an explicitly seeded source so validation runs
// are reproducible.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator with the given seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// syntheticSeries wraps raw prices into a PriceSeries with evenly spaced
// timestamps.
func syntheticSeries(symbol string, iv core.Interval, prices []float64) core.PriceSeries {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]core.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = core.PricePoint{Time: start.Add(time.Duration(i) * iv.Duration()), Price: p}
	}
	return core.PriceSeries{Symbol: symbol, Interval: iv, Points: points}
}

// MeanRevertingPair returns a perfectly sinusoidal spread: asset1 oscillates
// +-10 around 100 with the given period in bars, asset2 holds at 100. With a
// hedge ratio of 1 the spread is the pure sinusoid.
func (g *Generator) MeanRevertingPair(n, period int, iv core.Interval) (core.PriceSeries, core.PriceSeries) {
	p1 := make([]float64, n)
	p2 := make([]float64, n)
	for i := 0; i < n; i++ {
		p1[i] = 100 + 10*math.Sin(2*math.Pi*float64(i)/float64(period))
		p2[i] = 100
	}
	return syntheticSeries("SINE1", iv, p1), syntheticSeries("SINE2", iv, p2)
}

// DivergingPair returns two series drifting apart: asset1 trends up ten
// times faster than asset2, with small noise.
func (g *Generator) DivergingPair(n int, iv core.Interval) (core.PriceSeries, core.PriceSeries) {
	p1 := make([]float64, n)
	p2 := make([]float64, n)
	for i := 0; i < n; i++ {
		p1[i] = 100 + float64(i)*1.0 + g.rng.NormFloat64()*0.1
		p2[i] = 100 + float64(i)*0.1 + g.rng.NormFloat64()*0.1
	}
	return syntheticSeries("TREND1", iv, p1), syntheticSeries("TREND2", iv, p2)
}

// RandomWalkPair returns two independent random walks with no true
// relationship.
func (g *Generator) RandomWalkPair(n int, iv core.Interval) (core.PriceSeries, core.PriceSeries) {
	p1 := make([]float64, n)
	p2 := make([]float64, n)
	w1, w2 := 100.0, 100.0
	for i := 0; i < n; i++ {
		w1 += g.rng.NormFloat64() * 0.5
		w2 += g.rng.NormFloat64() * 0.5
		p1[i] = w1
		p2[i] = w2
	}
	return syntheticSeries("WALK1", iv, p1), syntheticSeries("WALK2", iv, p2)
}

// ValidationCase is one synthetic scenario run through the engine.
type ValidationCase struct {
	Name        string  `json:"name"`
	Expectation string  `json:"expectation"`
	Result      *Result `json:"result,omitempty"`
	Passed      bool    `json:"passed"`
	Err         string  `json:"error,omitempty"`
}

// validationConfig isolates engine logic from estimation noise: zero costs,
// forced hedge ratio 1 and intercept 0, and an entry threshold low enough
// that a pure sinusoid (whose rolling Z-score peaks near sqrt(2)) still
// triggers entries.
func validationConfig(iv core.Interval) Config {
	one := 1.0
	zero := 0.0
	cfg := DefaultConfig()
	cfg.Interval = iv
	cfg.Lookback = 24 * time.Hour
	cfg.EntryThreshold = 1.2
	cfg.ExitThreshold = 0.0
	cfg.StopLoss = 4.0
	cfg.CommissionPct = 0
	cfg.SlippageBps = 0
	cfg.ForcedHedgeRatio = &one
	cfg.ForcedIntercept = &zero
	return cfg
}

// RunValidation exercises the engine against the three canonical synthetic
// shapes: a sinusoidal spread (expected profitable), a diverging pair
// (expected unprofitable) and a random-walk pair (expected to run without
// error, no profitability requirement).
func RunValidation(ctx context.Context, seed int64, iv core.Interval) []ValidationCase {
	gen := NewGenerator(seed)
	cfg := validationConfig(iv)
	engine := New(cfg, nil)

	n := 1500
	period := cfg.LookbackBars()

	cases := make([]ValidationCase, 0, 3)

	s1, s2 := gen.MeanRevertingPair(n, period, iv)
	cases = append(cases, runCase(ctx, engine, "mean_reversion", "profitable", s1, s2,
		func(r *Result) bool {
			return r.Metrics.TotalReturn > 0 && r.Metrics.ProfitFactor > 1
		}))

	d1, d2 := gen.DivergingPair(n, iv)
	cases = append(cases, runCase(ctx, engine, "diverging", "unprofitable", d1, d2,
		func(r *Result) bool {
			return r.Metrics.TotalReturn <= 0 || r.Metrics.ProfitFactor < 1
		}))

	w1, w2 := gen.RandomWalkPair(n, iv)
	cases = append(cases, runCase(ctx, engine, "random_walk", "completes", w1, w2,
		func(r *Result) bool {
			return !math.IsNaN(r.Metrics.TotalReturn) && !math.IsInf(r.Metrics.TotalReturn, 0)
		}))

	return cases
}

func runCase(ctx context.Context, engine *Engine, name, expectation string, s1, s2 core.PriceSeries, check func(*Result) bool) ValidationCase {
	vc := ValidationCase{Name: name, Expectation: expectation}
	res, err := engine.Run(ctx, s1, s2)
	if err != nil {
		vc.Err = err.Error()
		return vc
	}
	vc.Result = res
	vc.Passed = check(res)
	return vc
}
