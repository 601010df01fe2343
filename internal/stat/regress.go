package stat

import "math"

// lmFit holds a multiple-regression fit used internally by the ADF test.
type lmFit struct {
	coefs   []float64
	stderrs []float64
	rss     float64
	nobs    int
}

// fitLinear solves y = X*b by ordinary least squares via the normal
// equations. X is row-major with one row per observation. Returns false when
// the system is singular (collinear or degenerate regressors).
//
// The design matrices here are tiny (at most a dozen columns), so plain
// Gaussian elimination with partial pivoting is sufficient.
func fitLinear(X [][]float64, y []float64) (lmFit, bool) {
	n := len(X)
	if n == 0 || n != len(y) {
		return lmFit{}, false
	}
	k := len(X[0])
	if k == 0 || n <= k {
		return lmFit{}, false
	}

	// Normal equations: (X'X) b = X'y.
	xtx := make([][]float64, k)
	xty := make([]float64, k)
	for i := 0; i < k; i++ {
		xtx[i] = make([]float64, k)
	}
	for r := 0; r < n; r++ {
		row := X[r]
		for i := 0; i < k; i++ {
			xty[i] += row[i] * y[r]
			for j := i; j < k; j++ {
				xtx[i][j] += row[i] * row[j]
			}
		}
	}
	for i := 0; i < k; i++ {
		for j := 0; j < i; j++ {
			xtx[i][j] = xtx[j][i]
		}
	}

	inv, ok := invertMatrix(xtx)
	if !ok {
		return lmFit{}, false
	}

	coefs := make([]float64, k)
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			coefs[i] += inv[i][j] * xty[j]
		}
	}

	var rss float64
	for r := 0; r < n; r++ {
		pred := 0.0
		for i := 0; i < k; i++ {
			pred += X[r][i] * coefs[i]
		}
		e := y[r] - pred
		rss += e * e
	}

	sigma2 := rss / float64(n-k)
	stderrs := make([]float64, k)
	for i := 0; i < k; i++ {
		v := sigma2 * inv[i][i]
		if v < 0 {
			v = 0
		}
		stderrs[i] = math.Sqrt(v)
	}

	return lmFit{coefs: coefs, stderrs: stderrs, rss: rss, nobs: n}, true
}

// invertMatrix inverts a square matrix by Gauss-Jordan elimination with
// partial pivoting. Returns false for singular input.
func invertMatrix(m [][]float64) ([][]float64, bool) {
	k := len(m)
	a := make([][]float64, k)
	inv := make([][]float64, k)
	for i := 0; i < k; i++ {
		a[i] = make([]float64, k)
		copy(a[i], m[i])
		inv[i] = make([]float64, k)
		inv[i][i] = 1
	}

	for col := 0; col < k; col++ {
		pivot := col
		for r := col + 1; r < k; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, false
		}
		a[col], a[pivot] = a[pivot], a[col]
		inv[col], inv[pivot] = inv[pivot], inv[col]

		p := a[col][col]
		for j := 0; j < k; j++ {
			a[col][j] /= p
			inv[col][j] /= p
		}
		for r := 0; r < k; r++ {
			if r == col {
				continue
			}
			f := a[r][col]
			if f == 0 {
				continue
			}
			for j := 0; j < k; j++ {
				a[r][j] -= f * a[col][j]
				inv[r][j] -= f * inv[col][j]
			}
		}
	}

	return inv, true
}
