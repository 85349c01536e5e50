package recommend

import (
	"fmt"
	"math"
)

// Params are the tunable constants of the engine.
type Params struct {
	// WindowSize caps the per-learner metric window.
	WindowSize int
	// SimilarThreshold: below this many similar problems, candidates are supplemented
	// from the difficulty buckets of weak topics.
	SimilarThreshold int
	// MaxResults caps the recommendation list.
	MaxResults int
	// ScoreScale is the upper bound of every metric.
	ScoreScale float64
	// MasteryScale is the upper bound of raw mastery values.
	MasteryScale float64
	// DecayBase is the per-day decay applied to past attempts in the interest metric.
	DecayBase float64
	// Rho is the compromise coefficient of the ideal-point weighting.
	Rho float64
	// Concurrency bounds the per-candidate lookup fan-out.
	Concurrency int
	// DefaultWeights apply while the window is empty or unusable.
	DefaultWeights WeightVector
}

// DefaultParams returns the production defaults.
func DefaultParams() Params {
	return Params{
		WindowSize:       5,
		SimilarThreshold: 5,
		MaxResults:       2,
		ScoreScale:       100,
		MasteryScale:     100,
		DecayBase:        0.9,
		Rho:              0.5,
		Concurrency:      8,
		DefaultWeights:   DefaultWeights,
	}
}

// Validate checks that every parameter is usable.
func (p Params) Validate() error {
	if p.WindowSize < 1 {
		return fmt.Errorf("window size must be positive, got %d", p.WindowSize)
	}
	if p.SimilarThreshold < 0 {
		return fmt.Errorf("similar threshold must not be negative, got %d", p.SimilarThreshold)
	}
	if p.MaxResults < 1 || p.MaxResults > 2 {
		return fmt.Errorf("max results must be 1 or 2, got %d", p.MaxResults)
	}
	if p.ScoreScale <= 0 {
		return fmt.Errorf("score scale must be positive, got %v", p.ScoreScale)
	}
	if p.MasteryScale <= 0 {
		return fmt.Errorf("mastery scale must be positive, got %v", p.MasteryScale)
	}
	if p.DecayBase <= 0 || p.DecayBase > 1 {
		return fmt.Errorf("decay base must be in (0, 1], got %v", p.DecayBase)
	}
	if p.Rho <= 0 {
		return fmt.Errorf("rho must be positive, got %v", p.Rho)
	}
	if p.Concurrency < 1 {
		return fmt.Errorf("concurrency must be positive, got %d", p.Concurrency)
	}
	for i, w := range p.DefaultWeights {
		if w < 0 || math.IsNaN(w) {
			return fmt.Errorf("default weight %s must be non-negative", MetricNames[i])
		}
	}
	if math.Abs(p.DefaultWeights.Sum()-1) > 1e-6 {
		return fmt.Errorf("default weights must sum to 1, got %v", p.DefaultWeights.Sum())
	}
	return nil
}
