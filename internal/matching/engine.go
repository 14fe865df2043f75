// Package matching scores a candidate biometric template against a worker's
// stored templates. The engine is pure and deterministic: no I/O, no retries,
// no randomness. The arithmetic is a heuristic stand-in for a real biometric
// matcher; the contract is a deterministic score in [0,1], a fixed threshold
// and a stable tie-break.
package matching

import (
	"math"

	"github.com/crewforge/checkpoint/internal/domain"
)

const (
	// DefaultThreshold is the minimum score declared a match. It is an
	// arbitrary default, not a tuned biometric-security threshold.
	DefaultThreshold = 0.85

	vectorWeight  = 0.8
	qualityWeight = 0.2

	// Feature-vector components are normalized to [0,1], so the per-component
	// value range is 1.
	componentRange = 1.0
)

// Result is the outcome of matching one candidate against a pool.
type Result struct {
	Matched bool                      `json:"matched"`
	Score   float64                   `json:"score"`
	Best    *domain.BiometricTemplate `json:"best,omitempty"`
}

type Engine struct {
	threshold float64
}

func NewEngine() *Engine {
	return &Engine{threshold: DefaultThreshold}
}

// WithThreshold overrides the match threshold, clamped to [0,1].
func (e *Engine) WithThreshold(threshold float64) *Engine {
	e.threshold = clamp01(threshold)
	return e
}

// Match scores candidate against every comparable template in pool and keeps
// the best. Pool entries of another type or with a mismatched vector length
// are skipped as non-comparable rather than treated as errors. Ties are broken
// by earliest-created template so results are stable across runs.
func (e *Engine) Match(candidate *domain.BiometricTemplate, pool []domain.BiometricTemplate) Result {
	result := Result{}

	for i := range pool {
		t := &pool[i]
		if t.Type != candidate.Type {
			continue
		}
		if len(t.Vector) != len(candidate.Vector) {
			continue
		}

		score := vectorWeight*vectorSimilarity(candidate.Vector, t.Vector) +
			qualityWeight*qualityCloseness(candidate.Quality, t.Quality)

		if result.Best == nil || score > result.Score ||
			(score == result.Score && t.CreatedAt.Before(result.Best.CreatedAt)) {
			result.Score = score
			result.Best = t
		}
	}

	if result.Best == nil {
		return Result{}
	}

	result.Matched = result.Score >= e.threshold
	return result
}

// vectorSimilarity is 1 minus the mean absolute per-component difference
// relative to the component value range, clamped to [0,1].
func vectorSimilarity(a, b []float64) float64 {
	if len(a) == 0 {
		return 0
	}

	var sum float64
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	mean := sum / float64(len(a))

	return clamp01(1 - mean/componentRange)
}

func qualityCloseness(qa, qb float64) float64 {
	return clamp01(1 - math.Abs(qa-qb)/100)
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
