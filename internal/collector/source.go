package collector

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/meanrev/pairscan/internal/cache"
	"github.com/meanrev/pairscan/internal/core"
	"go.uber.org/zap"
)

// Source adapts a Provider to lookback-oriented series access: callers ask
// for "the last N days" rather than explicit time ranges. A TTL cache in
// front keeps a pair scan from fetching the same symbol twice.
type Source struct {
	provider Provider
	cache    *cache.Memory
	logger   *zap.Logger
	now      func() time.Time
}

// NewSource wraps provider with caching. cache may be nil to disable it;
// a nil logger disables logging.
func NewSource(provider Provider, c *cache.Memory, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{
		provider: provider,
		cache:    c,
		logger:   logger,
		now:      time.Now,
	}
}

// PriceSeries returns the symbol's closing prices over the trailing lookback
// window, normalized to strictly ascending timestamps.
func (s *Source) PriceSeries(ctx context.Context, symbol string, lookback time.Duration, interval core.Interval) (core.PriceSeries, error) {
	key := fmt.Sprintf("prices:%s:%s:%s:%d", s.provider.Name(), symbol, interval, lookback)
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			return v.(core.PriceSeries), nil
		}
	}

	end := s.now().UTC()
	series, err := s.provider.FetchHistory(ctx, symbol, end.Add(-lookback), end, interval)
	if err != nil {
		return core.PriceSeries{}, core.WrapError(core.ErrProviderFailed, err)
	}

	series = normalize(series)
	if series.Len() == 0 {
		return core.PriceSeries{}, core.ErrNoData
	}
	if err := series.Validate(); err != nil {
		return core.PriceSeries{}, err
	}

	if s.cache != nil {
		s.cache.Set(key, series)
	}
	s.logger.Debug("price history fetched",
		zap.String("provider", s.provider.Name()),
		zap.String("symbol", symbol),
		zap.Int("bars", series.Len()),
	)
	return series, nil
}

// FundingSeries returns the symbol's funding-rate observations over the
// trailing lookback window.
func (s *Source) FundingSeries(ctx context.Context, symbol string, lookback time.Duration) ([]core.FundingPoint, error) {
	key := fmt.Sprintf("funding:%s:%s:%d", s.provider.Name(), symbol, lookback)
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			return v.([]core.FundingPoint), nil
		}
	}

	end := s.now().UTC()
	points, err := s.provider.FetchFundingHistory(ctx, symbol, end.Add(-lookback), end)
	if err != nil {
		return nil, core.WrapError(core.ErrProviderFailed, err)
	}
	if len(points) == 0 {
		return nil, core.ErrNoData
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })

	if s.cache != nil {
		s.cache.Set(key, points)
	}
	return points, nil
}

// normalize sorts points ascending and drops duplicate timestamps, keeping
// the later observation. Exchange kline endpoints occasionally repeat the
// in-progress bar across paginated requests.
func normalize(series core.PriceSeries) core.PriceSeries {
	points := series.Points
	sort.SliceStable(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })

	out := points[:0]
	for _, p := range points {
		if n := len(out); n > 0 && out[n-1].Time.Equal(p.Time) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	series.Points = out
	return series
}
