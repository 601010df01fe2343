package stat

import "github.com/meanrev/pairscan/internal/core"

// minCointObservations is the shortest pair of series the test accepts
// before returning its neutral default.
const minCointObservations = 20

// Engle-Granger critical values for two variables. These are more
// conservative than the plain Dickey-Fuller table because the residuals come
// from an estimated regression.
var cointCriticalValues = CriticalValues{OnePct: -3.90, FivePct: -3.34, TenPct: -3.04}

// CointegrationResult is the outcome of an Engle-Granger cointegration test.
// Residuals is the spread series Y - Intercept - HedgeRatio*X, zero-mean in
// sample by construction.
type CointegrationResult struct {
	HedgeRatio     float64
	Intercept      float64
	Statistic      float64
	PValue         float64
	IsCointegrated bool
	Residuals      []float64
	CriticalValues CriticalValues
}

// EngleGranger tests whether seriesY and seriesX are cointegrated. Step one
// regresses Y on X by OLS to obtain the hedge ratio and the residual spread;
// step two applies the ADF test to the residuals with no constant term (the
// residuals are already zero-mean). The decision uses the 5% cointegration
// critical value.
//
// Unequal-length input is a hard error. Fewer than the minimum observations
// returns a neutral non-cointegrated result with p-value 1.
func EngleGranger(seriesY, seriesX []float64) (CointegrationResult, error) {
	if len(seriesY) != len(seriesX) {
		return CointegrationResult{}, core.ErrSeriesMismatch
	}

	neutral := CointegrationResult{
		PValue:         1,
		IsCointegrated: false,
		CriticalValues: cointCriticalValues,
	}

	if len(seriesY) < minCointObservations {
		return neutral, nil
	}

	ols, err := OLS(seriesX, seriesY)
	if err != nil {
		// Degenerate regressor (flat series): not cointegrated, not fatal.
		return neutral, nil
	}

	adf := ADF(ols.Residuals, RegressionNone, AutoLags)

	stat := adf.Statistic
	p := interpolatePValue(stat, cointCriticalValues)

	return CointegrationResult{
		HedgeRatio:     ols.Beta,
		Intercept:      ols.Alpha,
		Statistic:      stat,
		PValue:         p,
		IsCointegrated: stat < cointCriticalValues.FivePct,
		Residuals:      ols.Residuals,
		CriticalValues: cointCriticalValues,
	}, nil
}
