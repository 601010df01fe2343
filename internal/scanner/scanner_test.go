package scanner

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/meanrev/pairscan/internal/core"
	"github.com/meanrev/pairscan/internal/signal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProvider struct {
	series  map[string]core.PriceSeries
	funding map[string][]core.FundingPoint
	errs    map[string]error
}

func (f *fakeProvider) PriceSeries(_ context.Context, symbol string, _ time.Duration, _ core.Interval) (core.PriceSeries, error) {
	if err, ok := f.errs[symbol]; ok {
		return core.PriceSeries{}, err
	}
	s, ok := f.series[symbol]
	if !ok {
		return core.PriceSeries{}, core.ErrSymbolNotFound
	}
	return s, nil
}

func (f *fakeProvider) FundingSeries(_ context.Context, symbol string, _ time.Duration) ([]core.FundingPoint, error) {
	fp, ok := f.funding[symbol]
	if !ok {
		return nil, core.ErrNoData
	}
	return fp, nil
}

func makeSeries(symbol string, iv core.Interval, prices []float64) core.PriceSeries {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]core.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = core.PricePoint{Time: base.Add(time.Duration(i) * iv.Duration()), Price: p}
	}
	return core.PriceSeries{Symbol: symbol, Interval: iv, Points: points}
}

// testUniverse builds three symbols: AAA and BBB share a stochastic trend
// and should survive the correlation gate; CCC oscillates bar to bar, so its
// correlation with any slow-moving series is negligible and both of its
// pairs are gated out.
func testUniverse(t *testing.T, n int) *fakeProvider {
	t.Helper()
	rng := rand.New(rand.NewSource(7))

	walk := make([]float64, n)
	walk[0] = 500
	for i := 1; i < n; i++ {
		walk[i] = walk[i-1] + rng.NormFloat64()
	}

	a := make([]float64, n)
	b := make([]float64, n)
	c := make([]float64, n)
	noise := 0.0
	for i := 0; i < n; i++ {
		a[i] = walk[i]
		noise = 0.3*noise + 0.5*rng.NormFloat64()
		b[i] = 100 + 0.5*walk[i] + noise
		c[i] = 100 + float64(1-2*(i%2))
	}

	iv := core.Interval1h
	return &fakeProvider{
		series: map[string]core.PriceSeries{
			"AAA": makeSeries("AAA", iv, a),
			"BBB": makeSeries("BBB", iv, b),
			"CCC": makeSeries("CCC", iv, c),
		},
		funding: map[string][]core.FundingPoint{},
	}
}

func TestScanRanksCointegatedPair(t *testing.T) {
	provider := testUniverse(t, 400)
	s := New(DefaultConfig(), provider, zap.NewNop())

	result, err := s.Scan(context.Background(), []string{"AAA", "BBB", "CCC"})
	require.NoError(t, err)

	assert.Equal(t, 3, result.PairsTotal)
	assert.Equal(t, 2, result.PairsSkipped)
	assert.Equal(t, 1, result.PairsEvaluated)
	require.Len(t, result.Results, 1)

	top := result.Results[0]
	assert.Equal(t, "AAA", top.Symbol1)
	assert.Equal(t, "BBB", top.Symbol2)
	assert.Greater(t, top.Correlation, 0.9)
	assert.Greater(t, top.Score, 0.0)
	// AAA = 2*(BBB - 100) up to stationary noise.
	assert.InDelta(t, 2.0, top.HedgeRatio, 0.3)
	assert.False(t, result.GeneratedAt.IsZero())
}

func TestScanResultsSortedByScore(t *testing.T) {
	provider := testUniverse(t, 400)
	cfg := DefaultConfig()
	cfg.MinCorrelation = 0 // evaluate every pair
	s := New(cfg, provider, zap.NewNop())

	result, err := s.Scan(context.Background(), []string{"AAA", "BBB", "CCC"})
	require.NoError(t, err)
	require.Equal(t, 3, result.PairsEvaluated)
	for i := 1; i < len(result.Results); i++ {
		assert.GreaterOrEqual(t, result.Results[i-1].Score, result.Results[i].Score)
	}
}

func TestScanCancelled(t *testing.T) {
	provider := testUniverse(t, 400)
	s := New(DefaultConfig(), provider, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.Scan(ctx, []string{"AAA", "BBB", "CCC"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrScanCancelled))
	assert.Nil(t, result)
}

func TestScanProgress(t *testing.T) {
	provider := testUniverse(t, 400)
	cfg := DefaultConfig()
	cfg.Concurrency = 2
	s := New(cfg, provider, zap.NewNop())

	var (
		mu    sync.Mutex
		calls []int
		total int
	)
	s.OnProgress(func(completed, t int) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, completed)
		total = t
	})

	_, err := s.Scan(context.Background(), []string{"AAA", "BBB", "CCC"})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, total)
	assert.Len(t, calls, 3)
	last := calls[len(calls)-1]
	assert.Equal(t, 3, last)
}

func TestScanSkipsFailingSymbol(t *testing.T) {
	provider := testUniverse(t, 400)
	provider.errs = map[string]error{"CCC": core.ErrProviderFailed}
	s := New(DefaultConfig(), provider, zap.NewNop())

	result, err := s.Scan(context.Background(), []string{"AAA", "BBB", "CCC"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.PairsTotal)
	assert.Equal(t, 1, result.PairsEvaluated)
}

func TestScanFundingSpread(t *testing.T) {
	provider := testUniverse(t, 400)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	provider.funding = map[string][]core.FundingPoint{
		"AAA": {{Time: base, Rate: 0.0010}, {Time: base.Add(8 * time.Hour), Rate: 0.0010}},
		"BBB": {{Time: base, Rate: 0.0002}, {Time: base.Add(8 * time.Hour), Rate: 0.0002}},
	}
	cfg := DefaultConfig()
	cfg.IncludeFunding = true
	s := New(cfg, provider, zap.NewNop())

	result, err := s.Scan(context.Background(), []string{"AAA", "BBB"})
	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	assert.InDelta(t, 0.0008, result.Results[0].FundingSpread, 1e-12)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"default", func(c *Config) {}, true},
		{"zero lookback", func(c *Config) { c.LookbackDays = 0 }, false},
		{"bad interval", func(c *Config) { c.Interval = "7m" }, false},
		{"negative entry", func(c *Config) { c.EntryThreshold = -1 }, false},
		{"correlation above one", func(c *Config) { c.MinCorrelation = 1.5 }, false},
		{"inverted half-life band", func(c *Config) { c.MinHalfLife = 50; c.MaxHalfLife = 10 }, false},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestScoreComponents(t *testing.T) {
	s := New(DefaultConfig(), &fakeProvider{}, zap.NewNop())

	weak := PairResult{PValue: 0.9, Correlation: 0.1, HalfLife: 500, Signal: signal.Neutral}
	strong := PairResult{
		IsCointegrated: true,
		PValue:         0.01,
		Correlation:    0.95,
		HalfLife:       12,
		Signal:         signal.ShortSpread,
		Strength:       signal.Strong,
	}
	assert.Greater(t, s.score(strong), s.score(weak))
	assert.Greater(t, s.score(strong), 70.0)
	assert.Less(t, s.score(weak), 10.0)
}

func TestScoreMaxPValueForfeitsBonus(t *testing.T) {
	r := PairResult{IsCointegrated: true, PValue: 0.02, Correlation: 0.9, HalfLife: 12}

	loose := DefaultConfig()
	loose.MaxPValue = 1.0
	strict := DefaultConfig()
	strict.MaxPValue = 0.0001

	with := New(loose, &fakeProvider{}, zap.NewNop()).score(r)
	without := New(strict, &fakeProvider{}, zap.NewNop()).score(r)

	// Only the p-value bonus differs: the pair is still scored and ranked.
	assert.InDelta(t, (1-r.PValue)*scorePValueMax, with-without, 1e-9)
	assert.Greater(t, without, 0.0)
}

func TestScanAppliesMaxPValue(t *testing.T) {
	provider := testUniverse(t, 400)

	strict := DefaultConfig()
	strict.MinCorrelation = 0
	strict.MaxPValue = 0.0001
	loose := strict
	loose.MaxPValue = 1.0

	strictRes, err := New(strict, provider, zap.NewNop()).Scan(context.Background(), []string{"AAA", "BBB"})
	require.NoError(t, err)
	looseRes, err := New(loose, provider, zap.NewNop()).Scan(context.Background(), []string{"AAA", "BBB"})
	require.NoError(t, err)

	// Threshold shapes the score, never membership.
	require.Len(t, strictRes.Results, 1)
	require.Len(t, looseRes.Results, 1)

	sr, lr := strictRes.Results[0], looseRes.Results[0]
	assert.LessOrEqual(t, sr.Score, lr.Score)
	if sr.PValue > strict.MaxPValue {
		assert.InDelta(t, (1-sr.PValue)*scorePValueMax, lr.Score-sr.Score, 1e-9)
	}
}
