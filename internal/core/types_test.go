package core

import (
	"testing"
	"time"
)

func TestInterval_Minutes(t *testing.T) {
	tests := []struct {
		iv   Interval
		want int
	}{
		{Interval5m, 5},
		{Interval15m, 15},
		{Interval1h, 60},
		{Interval4h, 240},
		{Interval1d, 1440},
		{Interval("3w"), 0},
	}
	for _, tt := range tests {
		if got := tt.iv.Minutes(); got != tt.want {
			t.Errorf("Minutes(%s) = %d, want %d", tt.iv, got, tt.want)
		}
	}
}

func TestInterval_BarsPerDay(t *testing.T) {
	if got := Interval15m.BarsPerDay(); got != 96 {
		t.Errorf("BarsPerDay(15m) = %f, want 96", got)
	}
	if got := Interval1d.BarsPerDay(); got != 1 {
		t.Errorf("BarsPerDay(1d) = %f, want 1", got)
	}
}

func TestLookbackBars(t *testing.T) {
	tests := []struct {
		lookback time.Duration
		iv       Interval
		want     int
	}{
		{24 * time.Hour, Interval15m, 96},
		{24 * time.Hour, Interval5m, 288},
		{24 * time.Hour, Interval1h, 24},
		{24 * time.Hour, Interval1d, 10},   // floors to 1, clamped to minimum
		{90 * time.Minute, Interval1h, 10}, // floors to 1, clamped
		{0, Interval1h, 10},
	}
	for _, tt := range tests {
		if got := LookbackBars(tt.lookback, tt.iv); got != tt.want {
			t.Errorf("LookbackBars(%v, %s) = %d, want %d", tt.lookback, tt.iv, got, tt.want)
		}
	}
}

func TestPriceSeries_Validate(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	valid := PriceSeries{
		Symbol: "BTCUSDT",
		Points: []PricePoint{
			{Time: t0, Price: 100},
			{Time: t0.Add(time.Hour), Price: 101},
		},
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("expected valid series, got %v", err)
	}

	outOfOrder := PriceSeries{
		Points: []PricePoint{
			{Time: t0.Add(time.Hour), Price: 100},
			{Time: t0, Price: 101},
		},
	}
	if err := outOfOrder.Validate(); err == nil {
		t.Error("expected error for out-of-order timestamps")
	}

	nonPositive := PriceSeries{
		Points: []PricePoint{{Time: t0, Price: 0}},
	}
	if err := nonPositive.Validate(); err == nil {
		t.Error("expected error for non-positive price")
	}
}

func TestPriceSeries_AlignedWith(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	a := PriceSeries{Points: []PricePoint{{Time: t0, Price: 1}, {Time: t0.Add(time.Hour), Price: 2}}}
	b := PriceSeries{Points: []PricePoint{{Time: t0, Price: 3}, {Time: t0.Add(time.Hour), Price: 4}}}
	c := PriceSeries{Points: []PricePoint{{Time: t0, Price: 3}}}

	if !a.AlignedWith(b) {
		t.Error("equal-length series should be aligned")
	}
	if a.AlignedWith(c) {
		t.Error("unequal-length series should not be aligned")
	}
}

func TestPriceSeries_Last(t *testing.T) {
	var empty PriceSeries
	if _, ok := empty.Last(); ok {
		t.Error("empty series should report no last point")
	}

	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := PriceSeries{Points: []PricePoint{{Time: t0, Price: 1}, {Time: t0.Add(time.Hour), Price: 2}}}
	last, ok := s.Last()
	if !ok || last.Price != 2 {
		t.Errorf("Last() = %+v, %v; want price 2", last, ok)
	}
}
