// Package binance implements the collector Provider against the Binance
// spot klines and futures funding-rate endpoints.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/meanrev/pairscan/internal/core"
)

const (
	spotURL    = "https://api.binance.com"
	futuresURL = "https://fapi.binance.com"

	// Both endpoints cap a single response at 1000 rows.
	pageLimit = 1000
)

// Binance implements the collector Provider interface for Binance exchange
type Binance struct {
	client     *http.Client
	spotURL    string
	futuresURL string
}

// New creates a new Binance provider
func New() *Binance {
	return &Binance{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		spotURL:    spotURL,
		futuresURL: futuresURL,
	}
}

// NewWithBaseURL creates a Binance provider with custom base URLs (for testing)
func NewWithBaseURL(url string) *Binance {
	b := New()
	b.spotURL = url
	b.futuresURL = url
	return b
}

func (b *Binance) Name() string {
	return "binance"
}

// FetchHistory fetches closing prices from the spot klines endpoint, paging
// forward in pageLimit batches until the range is covered.
func (b *Binance) FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval core.Interval) (core.PriceSeries, error) {
	if !interval.IsValid() {
		return core.PriceSeries{}, fmt.Errorf("unknown bar interval %q", interval)
	}

	series := core.PriceSeries{Symbol: symbol, Interval: interval}
	cursor := start

	for cursor.Before(end) {
		url := fmt.Sprintf("%s/api/v3/klines?symbol=%s&interval=%s&startTime=%d&endTime=%d&limit=%d",
			b.spotURL, symbol, interval, cursor.UnixMilli(), end.UnixMilli(), pageLimit)

		var klines [][]any
		if err := b.getJSON(ctx, url, &klines); err != nil {
			return core.PriceSeries{}, fmt.Errorf("fetching klines: %w", err)
		}
		if len(klines) == 0 {
			break
		}

		var batchLast time.Time
		for _, k := range klines {
			if len(k) < 5 {
				continue
			}
			openTime, _ := k[0].(float64)
			closeStr, _ := k[4].(string)
			close, err := strconv.ParseFloat(closeStr, 64)
			if err != nil {
				continue
			}
			batchLast = time.UnixMilli(int64(openTime))
			series.Points = append(series.Points, core.PricePoint{
				Time:  batchLast,
				Price: close,
			})
		}

		if len(klines) < pageLimit {
			break
		}
		next := batchLast.Add(interval.Duration())
		if !next.After(cursor) {
			break
		}
		cursor = next
	}

	return series, nil
}

// FetchFundingHistory fetches perpetual funding rates from the futures
// endpoint. Binance publishes one observation per 8h funding period.
func (b *Binance) FetchFundingHistory(ctx context.Context, symbol string, start, end time.Time) ([]core.FundingPoint, error) {
	var points []core.FundingPoint
	cursor := start

	for cursor.Before(end) {
		url := fmt.Sprintf("%s/fapi/v1/fundingRate?symbol=%s&startTime=%d&endTime=%d&limit=%d",
			b.futuresURL, symbol, cursor.UnixMilli(), end.UnixMilli(), pageLimit)

		var rows []fundingRate
		if err := b.getJSON(ctx, url, &rows); err != nil {
			return nil, fmt.Errorf("fetching funding rates: %w", err)
		}
		if len(rows) == 0 {
			break
		}

		for _, row := range rows {
			rate, err := strconv.ParseFloat(row.FundingRate, 64)
			if err != nil {
				continue
			}
			points = append(points, core.FundingPoint{
				Time: time.UnixMilli(row.FundingTime),
				Rate: rate,
			})
		}

		if len(rows) < pageLimit {
			break
		}
		cursor = time.UnixMilli(rows[len(rows)-1].FundingTime).Add(time.Millisecond)
	}

	return points, nil
}

func (b *Binance) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Binance API response types
type fundingRate struct {
	Symbol      string `json:"symbol"`
	FundingTime int64  `json:"fundingTime"`
	FundingRate string `json:"fundingRate"`
}
