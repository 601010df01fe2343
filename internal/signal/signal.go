// Package signal converts spread Z-scores into discrete trading signals.
package signal

import "math"

// Signal is the discrete trading direction derived from the spread Z-score.
type Signal string

const (
	LongSpread  Signal = "long_spread"  // spread unusually low, expect reversion up
	ShortSpread Signal = "short_spread" // spread unusually high, expect reversion down
	Neutral     Signal = "neutral"
)

// Strength labels how extreme the current Z-score is.
type Strength string

const (
	Weak     Strength = "weak"
	Moderate Strength = "moderate"
	Strong   Strength = "strong"
)

// Generate maps a Z-score to a signal. Z above +entryThreshold shorts the
// spread; Z below -entryThreshold goes long. Anything inside the band is
// neutral.
func Generate(z, entryThreshold float64) Signal {
	switch {
	case z >= entryThreshold:
		return ShortSpread
	case z <= -entryThreshold:
		return LongSpread
	}
	return Neutral
}

// StrengthOf buckets |Z|: below 1.5 weak, below 2.5 moderate, else strong.
func StrengthOf(z float64) Strength {
	abs := math.Abs(z)
	switch {
	case abs < 1.5:
		return Weak
	case abs < 2.5:
		return Moderate
	}
	return Strong
}
