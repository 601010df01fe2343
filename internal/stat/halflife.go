package stat

import "math"

// minHalfLifeObservations is the shortest spread series the estimator
// accepts before returning its non-tradeable default.
const minHalfLifeObservations = 10

// Tradeable half-life bounds, in bar units of the input series.
const (
	minTradeableHalfLife = 1.0
	maxTradeableHalfLife = 100.0
)

// HalfLifeResult describes the mean-reversion speed of a spread series.
// HalfLife is +Inf when the spread shows no contraction.
type HalfLifeResult struct {
	HalfLife    float64
	Theta       float64
	R2          float64
	IsTradeable bool
}

// HalfLife fits the AR(1) relation dS[t] = alpha + beta*S[t-1] + e by OLS on
// first differences against the lagged level and converts the coefficient
// into a mean-reversion half-life. beta >= 0 means no contraction: the
// result reports an infinite half-life and is never tradeable. The result is
// tradeable only when the half-life falls strictly between 1 and 100 bars.
func HalfLife(spread []float64) HalfLifeResult {
	notTradeable := HalfLifeResult{HalfLife: math.Inf(1), Theta: 0, IsTradeable: false}

	n := len(spread)
	if n < minHalfLifeObservations {
		return notTradeable
	}

	lagged := make([]float64, n-1)
	diffs := make([]float64, n-1)
	for i := 1; i < n; i++ {
		lagged[i-1] = spread[i-1]
		diffs[i-1] = spread[i] - spread[i-1]
	}

	ols, err := OLS(lagged, diffs)
	if err != nil {
		// Zero variance in the lagged spread.
		return notTradeable
	}

	beta := ols.Beta
	phi := 1 + beta
	if beta >= 0 || phi <= 0 || phi >= 1 {
		notTradeable.R2 = ols.R2
		return notTradeable
	}

	hl := -math.Ln2 / math.Log(phi)
	if math.IsNaN(hl) || hl <= 0 {
		notTradeable.R2 = ols.R2
		return notTradeable
	}

	return HalfLifeResult{
		HalfLife:    hl,
		Theta:       -math.Log(phi),
		R2:          ols.R2,
		IsTradeable: hl > minTradeableHalfLife && hl < maxTradeableHalfLife,
	}
}
