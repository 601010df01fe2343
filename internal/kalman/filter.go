// Package kalman implements a two-state Kalman filter that re-estimates the
// regression y = alpha + beta*x bar by bar. The coefficients follow a random
// walk: each update inflates the state covariance by a process-noise scale,
// then corrects against the observed (x, y) pair. Using the filtered beta as
// a time-varying hedge ratio avoids the look-ahead bias of a single static
// regression.
//
// A Filter holds single-owner mutable state: one filter belongs to exactly
// one backtest run and must not be shared across goroutines.
package kalman

// Default noise parameters. Delta controls how quickly the coefficients are
// allowed to drift; R is the measurement-noise variance.
const (
	DefaultDelta = 1e-4
	DefaultR     = 1e-3
)

// Filter tracks the evolving regression coefficients (alpha, beta) and their
// 2x2 covariance.
type Filter struct {
	alpha float64
	beta  float64

	// Covariance of the state estimate.
	p [2][2]float64

	// Process-noise inflation applied before each update.
	vw float64
	// Measurement-noise variance.
	r float64
}

// New creates a filter seeded with initial coefficients, typically the
// Engle-Granger estimates. delta in (0,1) scales process noise; r is the
// measurement-noise variance. Non-positive parameters fall back to defaults.
func New(alpha, beta, delta, r float64) *Filter {
	if delta <= 0 || delta >= 1 {
		delta = DefaultDelta
	}
	if r <= 0 {
		r = DefaultR
	}
	f := &Filter{
		alpha: alpha,
		beta:  beta,
		vw:    delta / (1 - delta),
		r:     r,
	}
	// Start uncertain enough that early observations move the state.
	f.p[0][0] = 1
	f.p[1][1] = 1
	return f
}

// Alpha returns the current intercept estimate.
func (f *Filter) Alpha() float64 { return f.alpha }

// Beta returns the current hedge-ratio estimate.
func (f *Filter) Beta() float64 { return f.beta }

// Update advances the filter with one observation pair and returns the
// corrected (alpha, beta). The step is deterministic: predict by inflating
// the covariance, then correct using the innovation y - (alpha + beta*x) and
// the Kalman gain.
func (f *Filter) Update(x, y float64) (alpha, beta float64) {
	// Predict: coefficients follow a random walk with no drift, so only the
	// covariance changes.
	f.p[0][0] += f.vw
	f.p[1][1] += f.vw

	// Observation vector h = [1, x].
	// Innovation variance s = h*P*h' + R.
	ph0 := f.p[0][0] + f.p[0][1]*x
	ph1 := f.p[1][0] + f.p[1][1]*x
	s := ph0 + ph1*x + f.r

	innovation := y - (f.alpha + f.beta*x)

	// Gain k = P*h' / s.
	k0 := ph0 / s
	k1 := ph1 / s

	f.alpha += k0 * innovation
	f.beta += k1 * innovation

	// Covariance shrink: P = (I - k*h) * P.
	p00 := f.p[0][0] - k0*ph0
	p01 := f.p[0][1] - k0*ph1
	p10 := f.p[1][0] - k1*ph0
	p11 := f.p[1][1] - k1*ph1
	f.p[0][0], f.p[0][1] = p00, p01
	f.p[1][0], f.p[1][1] = p10, p11

	return f.alpha, f.beta
}
