// Package scoring blends sub-scores into the composite score
package scoring

import (
	"fmt"
	"math"

	"github.com/wonny/swingscan/internal/contracts"
)

// weightTolerance allows for float error when checking that weights sum to 1
const weightTolerance = 1e-6

// Weights is one (technical, fundamental, catalyst) vector
type Weights struct {
	Technical   float64 `yaml:"technical" json:"technical"`
	Fundamental float64 `yaml:"fundamental" json:"fundamental"`
	Catalyst    float64 `yaml:"catalyst" json:"catalyst"`
}

// Sum returns the total weight
func (w Weights) Sum() float64 {
	return w.Technical + w.Fundamental + w.Catalyst
}

// Validate checks weights are non-negative and sum to 1.0
func (w Weights) Validate() error {
	if w.Technical < 0 || w.Fundamental < 0 || w.Catalyst < 0 {
		return fmt.Errorf("weights must be non-negative: %+v", w)
	}
	if math.Abs(w.Sum()-1.0) > weightTolerance {
		return fmt.Errorf("weights must sum to 1.0, got %.6f", w.Sum())
	}
	return nil
}

// WeightSet holds one vector per risk profile
// ⭐ SSOT: 리스크 성향별 가중치
type WeightSet struct {
	Conservative Weights `yaml:"conservative" json:"conservative"`
	Moderate     Weights `yaml:"moderate" json:"moderate"`
	Aggressive   Weights `yaml:"aggressive" json:"aggressive"`
}

// DefaultWeightSet returns the built-in weight vectors
func DefaultWeightSet() WeightSet {
	return WeightSet{
		Conservative: Weights{Technical: 0.3, Fundamental: 0.5, Catalyst: 0.2},
		Moderate:     Weights{Technical: 0.4, Fundamental: 0.3, Catalyst: 0.3},
		Aggressive:   Weights{Technical: 0.5, Fundamental: 0.2, Catalyst: 0.3},
	}
}

// For returns the vector for profile; unknown profiles use moderate
func (s WeightSet) For(profile contracts.RiskProfile) Weights {
	switch profile {
	case contracts.RiskConservative:
		return s.Conservative
	case contracts.RiskAggressive:
		return s.Aggressive
	default:
		return s.Moderate
	}
}

// Validate checks every vector
func (s WeightSet) Validate() error {
	for _, p := range contracts.AllRiskProfiles() {
		if err := s.For(p).Validate(); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}
