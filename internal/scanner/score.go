package scanner

import (
	"math"

	"github.com/meanrev/pairscan/internal/signal"
)

// Component weights for the composite pair score. The score is a ranking
// device, not a probability: cointegration dominates, correlation and
// half-life refine, and an actionable signal breaks ties toward pairs
// tradeable right now.
const (
	scoreCointegrated   = 30.0
	scorePValueMax      = 20.0
	scoreCorrelationMax = 15.0
	scoreHalfLifeBand   = 15.0
	scoreActiveSignal   = 10.0
	scoreStrongSignal   = 5.0
	scoreFundingMax     = 10.0

	// One basis point of mean funding-rate divergence is worth one point,
	// capped at scoreFundingMax.
	fundingPointsPerBps = 1.0
)

func (s *Scanner) score(r PairResult) float64 {
	var score float64

	if r.IsCointegrated {
		score += scoreCointegrated
	}
	// Pairs above MaxPValue stay in the ranked output but forfeit the
	// p-value bonus entirely.
	if r.PValue <= s.cfg.MaxPValue {
		score += (1 - clamp01(r.PValue)) * scorePValueMax
	}
	score += math.Abs(r.Correlation) * scoreCorrelationMax

	if r.HalfLife > s.cfg.MinHalfLife && r.HalfLife < s.cfg.MaxHalfLife {
		score += scoreHalfLifeBand
	}

	if r.Signal != signal.Neutral {
		score += scoreActiveSignal
		if r.Strength == signal.Strong {
			score += scoreStrongSignal
		}
	}

	if s.cfg.IncludeFunding {
		bps := math.Abs(r.FundingSpread) * 10000
		bonus := bps * fundingPointsPerBps
		if bonus > scoreFundingMax {
			bonus = scoreFundingMax
		}
		score += bonus
	}

	return score
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
