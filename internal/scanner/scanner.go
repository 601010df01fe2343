// Package scanner orchestrates the full statistics pipeline over every
// unordered pair of a symbol universe: correlation gate, Engle-Granger
// cointegration, half-life, current Z-score, signal and composite score.
// Pair evaluations share no mutable state, so they fan out across a bounded
// worker pool; a failed or degenerate pair is excluded from the results, it
// never aborts the scan.
package scanner

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/meanrev/pairscan/internal/core"
	"github.com/meanrev/pairscan/internal/signal"
	"github.com/meanrev/pairscan/internal/stat"
	"go.uber.org/zap"
)

// Scanner runs pair scans against a series provider.
type Scanner struct {
	cfg      Config
	provider SeriesProvider
	logger   *zap.Logger
	progress Progress
}

// New creates a scanner. A nil logger disables logging.
func New(cfg Config, provider SeriesProvider, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{cfg: cfg, provider: provider, logger: logger}
}

// OnProgress registers a callback invoked after every completed pair
// evaluation. Must be set before Scan.
func (s *Scanner) OnProgress(fn Progress) {
	s.progress = fn
}

type symbolData struct {
	symbol  string
	prices  []float64
	funding float64
}

type pairJob struct {
	a, b int
}

// Scan evaluates all unordered pairs of the symbol universe and returns a
// ranked snapshot. Cancellation is cooperative: workers check the context
// between pair evaluations and partial results are discarded.
func (s *Scanner) Scan(ctx context.Context, symbols []string) (*ScanResult, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	started := time.Now()

	data := s.loadSymbols(ctx, symbols)
	if err := ctx.Err(); err != nil {
		return nil, core.WrapError(core.ErrScanCancelled, err)
	}

	jobs := make([]pairJob, 0, len(data)*(len(data)-1)/2)
	for i := 0; i < len(data); i++ {
		for j := i + 1; j < len(data); j++ {
			jobs = append(jobs, pairJob{a: i, b: j})
		}
	}
	total := len(jobs)

	workers := s.cfg.Concurrency
	if workers > total && total > 0 {
		workers = total
	}

	jobCh := make(chan pairJob)
	type outcome struct {
		result  PairResult
		ok      bool
		skipped bool
	}
	outCh := make(chan outcome, total)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				select {
				case <-ctx.Done():
					return
				default:
				}
				res, ok, skipped := s.evaluatePair(data[job.a], data[job.b])
				outCh <- outcome{result: res, ok: ok, skipped: skipped}
			}
		}()
	}

	go func() {
		defer close(jobCh)
		for _, job := range jobs {
			select {
			case <-ctx.Done():
				return
			case jobCh <- job:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outCh)
	}()

	var (
		results   []PairResult
		evaluated int
		skipped   int
		completed int
	)
	for out := range outCh {
		completed++
		if s.progress != nil {
			s.progress(completed, total)
		}
		switch {
		case out.skipped:
			skipped++
		case out.ok:
			evaluated++
			results = append(results, out.result)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, core.WrapError(core.ErrScanCancelled, err)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	s.logger.Info("scan complete",
		zap.Int("symbols", len(symbols)),
		zap.Int("pairs_total", total),
		zap.Int("pairs_evaluated", evaluated),
		zap.Int("pairs_skipped", skipped),
		zap.Duration("elapsed", time.Since(started)),
	)

	return &ScanResult{
		Results:        results,
		PairsTotal:     total,
		PairsEvaluated: evaluated,
		PairsSkipped:   skipped,
		Elapsed:        time.Since(started),
		GeneratedAt:    time.Now().UTC(),
	}, nil
}

// loadSymbols fetches price (and optional funding) history per symbol.
// Symbols that fail to load are logged and dropped; the scan continues with
// the rest.
func (s *Scanner) loadSymbols(ctx context.Context, symbols []string) []symbolData {
	lookback := s.cfg.Lookback()
	out := make([]symbolData, 0, len(symbols))
	for _, sym := range symbols {
		if ctx.Err() != nil {
			return out
		}
		series, err := s.provider.PriceSeries(ctx, sym, lookback, s.cfg.Interval)
		if err == nil {
			err = series.Validate()
		}
		if err != nil {
			s.logger.Warn("symbol excluded from scan",
				zap.String("symbol", sym),
				zap.Error(err),
			)
			continue
		}
		sd := symbolData{symbol: sym, prices: series.Prices()}
		if s.cfg.IncludeFunding {
			funding, err := s.provider.FundingSeries(ctx, sym, lookback)
			if err != nil {
				s.logger.Warn("funding history unavailable",
					zap.String("symbol", sym),
					zap.Error(err),
				)
			} else {
				sd.funding = meanFunding(funding)
			}
		}
		out = append(out, sd)
	}
	return out
}

// evaluatePair runs the statistics pipeline on one pair. Returns
// skipped=true when the correlation gate excludes the pair before the
// cointegration test.
func (s *Scanner) evaluatePair(a, b symbolData) (PairResult, bool, bool) {
	p1, p2 := alignTails(a.prices, b.prices)

	corr := stat.Correlation(p1, p2)
	if math.Abs(corr) < s.cfg.MinCorrelation {
		return PairResult{}, false, true
	}

	coint, err := stat.EngleGranger(p1, p2)
	if err != nil {
		s.logger.Warn("pair excluded from scan",
			zap.String("symbol1", a.symbol),
			zap.String("symbol2", b.symbol),
			zap.Error(err),
		)
		return PairResult{}, false, false
	}

	hl := stat.HalfLife(coint.Residuals)

	z := 0.0
	if len(coint.Residuals) > 0 {
		if sd := stat.StdDev(coint.Residuals); sd > 0 {
			z = (coint.Residuals[len(coint.Residuals)-1] - stat.Mean(coint.Residuals)) / sd
		}
	}

	res := PairResult{
		Symbol1:        a.symbol,
		Symbol2:        b.symbol,
		Correlation:    corr,
		IsCointegrated: coint.IsCointegrated,
		PValue:         coint.PValue,
		HedgeRatio:     coint.HedgeRatio,
		Intercept:      coint.Intercept,
		HalfLife:       hl.HalfLife,
		ZScore:         z,
		Signal:         signal.Generate(z, s.cfg.EntryThreshold),
		Strength:       signal.StrengthOf(z),
		FundingSpread:  a.funding - b.funding,
	}
	res.Score = s.score(res)
	return res, true, false
}

// alignTails trims two price slices to their common length, keeping the
// most recent observations.
func alignTails(a, b []float64) ([]float64, []float64) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	return a[len(a)-n:], b[len(b)-n:]
}

func meanFunding(points []core.FundingPoint) float64 {
	if len(points) == 0 {
		return 0
	}
	var sum float64
	for _, p := range points {
		sum += p.Rate
	}
	return sum / float64(len(points))
}
