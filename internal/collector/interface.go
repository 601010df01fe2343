// Package collector fetches market data from exchanges and adapts it into
// the series types the statistics layer consumes.
package collector

import (
	"context"
	"time"

	"github.com/meanrev/pairscan/internal/core"
)

// Provider defines the interface for exchange data providers.
type Provider interface {
	// Name returns the provider identifier (e.g. "binance").
	Name() string

	// FetchHistory returns closing prices for [start, end] at the given bar
	// interval, in ascending time order.
	FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval core.Interval) (core.PriceSeries, error)

	// FetchFundingHistory returns perpetual funding-rate observations for
	// [start, end]. Providers without a funding market return core.ErrNoData.
	FetchFundingHistory(ctx context.Context, symbol string, start, end time.Time) ([]core.FundingPoint, error)
}
