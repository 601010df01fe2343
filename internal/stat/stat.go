// Package stat implements the time-series statistics behind pair selection:
// descriptive primitives, least-squares regression, the augmented
// Dickey-Fuller stationarity test, the Engle-Granger cointegration test and
// the AR(1) half-life estimator.
//
// Statistical degeneracy (flat series, short history, non-reverting spreads)
// is common during batch scans, so functions here prefer conservative flagged
// defaults over errors. Hard errors are reserved for caller bugs such as
// mismatched series lengths.
package stat

import (
	"math"

	"github.com/meanrev/pairscan/internal/core"
)

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Variance returns the sample variance (n-1 denominator), or 0 when fewer
// than two observations are available.
func Variance(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := Mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return ss / float64(len(xs)-1)
}

// StdDev returns the sample standard deviation.
func StdDev(xs []float64) float64 {
	return math.Sqrt(Variance(xs))
}

// Correlation returns the Pearson correlation of two equal-length slices.
// Degenerate input (mismatched lengths, fewer than two points, zero variance
// on either side) yields 0.
func Correlation(xs, ys []float64) float64 {
	if len(xs) != len(ys) || len(xs) < 2 {
		return 0
	}
	mx, my := Mean(xs), Mean(ys)
	var sxy, sxx, syy float64
	for i := range xs {
		dx := xs[i] - mx
		dy := ys[i] - my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0
	}
	return sxy / math.Sqrt(sxx*syy)
}

// OLSResult holds the output of a simple linear regression y = alpha + beta*x.
type OLSResult struct {
	Alpha     float64
	Beta      float64
	R2        float64
	Residuals []float64
}

// OLS fits y = alpha + beta*x by ordinary least squares. It returns
// core.ErrSeriesMismatch for unequal lengths and core.ErrInsufficientData
// when fewer than two points or a zero-variance regressor make the fit
// undefined.
func OLS(x, y []float64) (OLSResult, error) {
	if len(x) != len(y) {
		return OLSResult{}, core.ErrSeriesMismatch
	}
	n := len(x)
	if n < 2 {
		return OLSResult{}, core.ErrInsufficientData
	}

	mx, my := Mean(x), Mean(y)
	var sxx, sxy float64
	for i := 0; i < n; i++ {
		dx := x[i] - mx
		sxx += dx * dx
		sxy += dx * (y[i] - my)
	}
	if sxx == 0 {
		return OLSResult{}, core.ErrInsufficientData
	}

	beta := sxy / sxx
	alpha := my - beta*mx

	residuals := make([]float64, n)
	var rss, tss float64
	for i := 0; i < n; i++ {
		residuals[i] = y[i] - alpha - beta*x[i]
		rss += residuals[i] * residuals[i]
		dy := y[i] - my
		tss += dy * dy
	}

	r2 := 0.0
	if tss > 0 {
		r2 = 1 - rss/tss
	}

	return OLSResult{Alpha: alpha, Beta: beta, R2: r2, Residuals: residuals}, nil
}
