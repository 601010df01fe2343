package core

import "time"

// Interval identifies a bar interval token.
type Interval string

const (
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval1h  Interval = "1h"
	Interval4h  Interval = "4h"
	Interval1d  Interval = "1d"
)

// Minutes returns the bar duration in minutes, or 0 for an unknown token.
func (iv Interval) Minutes() int {
	switch iv {
	case Interval5m:
		return 5
	case Interval15m:
		return 15
	case Interval1h:
		return 60
	case Interval4h:
		return 240
	case Interval1d:
		return 1440
	}
	return 0
}

// IsValid reports whether the interval is a known token.
func (iv Interval) IsValid() bool {
	return iv.Minutes() > 0
}

// Duration returns the bar duration.
func (iv Interval) Duration() time.Duration {
	return time.Duration(iv.Minutes()) * time.Minute
}

// BarsPerDay returns the number of bars in a 24h day for this interval.
func (iv Interval) BarsPerDay() float64 {
	m := iv.Minutes()
	if m == 0 {
		return 0
	}
	return 1440.0 / float64(m)
}

// BarsPerYear returns the number of bars in a 365-day year for this interval.
func (iv Interval) BarsPerYear() float64 {
	return iv.BarsPerDay() * 365
}

// MinLookbackBars is the floor applied to any derived rolling window size.
const MinLookbackBars = 10

// LookbackBars converts a calendar lookback into a bar count for the given
// interval. The result is floored and never below MinLookbackBars. Window
// sizes must always be derived this way so that the same configuration stays
// correct across bar intervals.
func LookbackBars(lookback time.Duration, iv Interval) int {
	d := iv.Duration()
	if d <= 0 {
		return MinLookbackBars
	}
	bars := int(lookback / d)
	if bars < MinLookbackBars {
		return MinLookbackBars
	}
	return bars
}

// PricePoint is one observation of a price series.
type PricePoint struct {
	Time  time.Time
	Price float64
}

// FundingPoint is one observation of a futures funding-rate series.
type FundingPoint struct {
	Time time.Time
	Rate float64
}

// PriceSeries is an ordered sequence of price observations with strictly
// ascending timestamps. It is immutable once constructed; callers own it.
type PriceSeries struct {
	Symbol   string
	Interval Interval
	Points   []PricePoint
}

// Len returns the number of observations.
func (s PriceSeries) Len() int {
	return len(s.Points)
}

// Prices returns the price values in order.
func (s PriceSeries) Prices() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Price
	}
	return out
}

// Last returns the final observation and true, or a zero point and false when
// the series is empty.
func (s PriceSeries) Last() (PricePoint, bool) {
	if len(s.Points) == 0 {
		return PricePoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// Validate checks ordering and positivity of the series.
func (s PriceSeries) Validate() error {
	for i, p := range s.Points {
		if p.Price <= 0 {
			return ErrSeriesInvalid
		}
		if i > 0 && !p.Time.After(s.Points[i-1].Time) {
			return ErrSeriesInvalid
		}
	}
	return nil
}

// AlignedWith reports whether two series have equal length. Equal-length
// alignment is an invariant for every pairwise operation.
func (s PriceSeries) AlignedWith(other PriceSeries) bool {
	return len(s.Points) == len(other.Points)
}
