package stat

import "math"

// Regression selects the deterministic terms included in the ADF regression.
type Regression string

const (
	RegressionNone     Regression = "none"
	RegressionConstant Regression = "constant"
	RegressionTrend    Regression = "trend"
)

// AutoLags requests AIC-based automatic lag selection.
const AutoLags = -1

// minADFObservations is the shortest series the test will accept before
// returning its neutral default.
const minADFObservations = 20

// CriticalValues holds tabulated test critical values at the three
// conventional significance levels.
type CriticalValues struct {
	OnePct  float64
	FivePct float64
	TenPct  float64
}

// ADFResult is the outcome of an augmented Dickey-Fuller test.
type ADFResult struct {
	Statistic      float64
	PValue         float64
	Lags           int
	IsStationary   bool
	CriticalValues CriticalValues
}

// Large-sample Dickey-Fuller critical values per regression type.
var adfCriticalValues = map[Regression]CriticalValues{
	RegressionNone:     {OnePct: -2.58, FivePct: -1.95, TenPct: -1.62},
	RegressionConstant: {OnePct: -3.43, FivePct: -2.86, TenPct: -2.57},
	RegressionTrend:    {OnePct: -3.96, FivePct: -3.41, TenPct: -3.12},
}

// ADF runs the augmented Dickey-Fuller unit-root test. The null hypothesis is
// that the series has a unit root (is non-stationary). lags fixes the number
// of lagged-difference terms; pass AutoLags to select it by minimizing AIC.
//
// Series shorter than the minimum observation count return a neutral result
// (p-value 1, not stationary) instead of an error so that batch scans degrade
// gracefully.
func ADF(series []float64, reg Regression, lags int) ADFResult {
	cv, ok := adfCriticalValues[reg]
	if !ok {
		cv = adfCriticalValues[RegressionConstant]
	}
	neutral := ADFResult{Statistic: 0, PValue: 1, IsStationary: false, CriticalValues: cv}

	n := len(series)
	if n < minADFObservations {
		return neutral
	}

	maxLag := schwertMaxLag(n)
	if lags >= 0 {
		maxLag = lags
	} else {
		maxLag = selectLagAIC(series, reg, maxLag)
	}

	fit, ok := adfRegression(series, reg, maxLag, maxLag+1)
	if !ok || fit.stderrs[0] == 0 {
		return neutral
	}

	stat := fit.coefs[0] / fit.stderrs[0]
	p := interpolatePValue(stat, cv)

	return ADFResult{
		Statistic:      stat,
		PValue:         p,
		Lags:           maxLag,
		IsStationary:   stat < cv.FivePct,
		CriticalValues: cv,
	}
}

// schwertMaxLag is the common rule-of-thumb upper bound for lag selection.
func schwertMaxLag(n int) int {
	lag := int(math.Floor(12 * math.Pow(float64(n)/100, 0.25)))
	// Leave enough observations for the regression itself.
	if limit := (n - minADFObservations) / 2; lag > limit {
		lag = limit
	}
	if lag < 0 {
		lag = 0
	}
	return lag
}

// selectLagAIC picks the lag count in [0, maxLag] minimizing AIC. All
// candidates are fit on the common sample implied by maxLag so the
// likelihoods are comparable.
func selectLagAIC(series []float64, reg Regression, maxLag int) int {
	best, bestAIC := 0, math.Inf(1)
	for p := 0; p <= maxLag; p++ {
		fit, ok := adfRegression(series, reg, p, maxLag+1)
		if !ok || fit.rss <= 0 {
			continue
		}
		nobs := float64(fit.nobs)
		k := float64(len(fit.coefs))
		aic := nobs*math.Log(fit.rss/nobs) + 2*k
		if aic < bestAIC {
			bestAIC = aic
			best = p
		}
	}
	return best
}

// adfRegression builds and fits the ADF regression
//
//	dy[t] = rho*y[t-1] + sum_i delta_i*dy[t-i] (+ const) (+ trend)
//
// with observations starting at index start (start > lags). The lagged-level
// coefficient is always column 0.
func adfRegression(series []float64, reg Regression, lags, start int) (lmFit, bool) {
	n := len(series)
	if start <= lags || start >= n {
		return lmFit{}, false
	}

	ncols := 1 + lags
	switch reg {
	case RegressionConstant:
		ncols++
	case RegressionTrend:
		ncols += 2
	}

	rows := n - start
	if rows <= ncols {
		return lmFit{}, false
	}

	X := make([][]float64, 0, rows)
	y := make([]float64, 0, rows)
	for t := start; t < n; t++ {
		row := make([]float64, 0, ncols)
		row = append(row, series[t-1])
		for i := 1; i <= lags; i++ {
			row = append(row, series[t-i]-series[t-i-1])
		}
		switch reg {
		case RegressionConstant:
			row = append(row, 1)
		case RegressionTrend:
			row = append(row, 1, float64(t))
		}
		X = append(X, row)
		y = append(y, series[t]-series[t-1])
	}

	return fitLinear(X, y)
}

// interpolatePValue maps a test statistic to an approximate p-value by
// piecewise-linear interpolation across the tabulated critical values,
// extrapolating beyond the endpoints and clamping to [0, 1]. This is the
// table-interpolation approximation, not an exact asymptotic CDF.
func interpolatePValue(stat float64, cv CriticalValues) float64 {
	type point struct{ x, p float64 }
	pts := []point{
		{cv.OnePct, 0.01},
		{cv.FivePct, 0.05},
		{cv.TenPct, 0.10},
	}

	var p float64
	switch {
	case stat <= pts[0].x:
		slope := (pts[1].p - pts[0].p) / (pts[1].x - pts[0].x)
		p = pts[0].p + slope*(stat-pts[0].x)
	case stat <= pts[1].x:
		slope := (pts[1].p - pts[0].p) / (pts[1].x - pts[0].x)
		p = pts[0].p + slope*(stat-pts[0].x)
	case stat <= pts[2].x:
		slope := (pts[2].p - pts[1].p) / (pts[2].x - pts[1].x)
		p = pts[1].p + slope*(stat-pts[1].x)
	default:
		slope := (pts[2].p - pts[1].p) / (pts[2].x - pts[1].x)
		p = pts[2].p + slope*(stat-pts[2].x)
	}

	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
