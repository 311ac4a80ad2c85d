package scoring

import (
	"math"

	"github.com/wonny/swingscan/internal/contracts"
	"github.com/wonny/swingscan/internal/signals"
)

// Composite returns the weighted sum of sub, rounded to one decimal
func Composite(sub contracts.SubScores, w Weights) float64 {
	raw := sub.Technical*w.Technical +
		sub.Fundamental*w.Fundamental +
		sub.Catalyst*w.Catalyst

	return Round(raw, 1)
}

// Score computes sub-scores for a and blends them with the profile's vector
func (s WeightSet) Score(a contracts.StockAttributes, profile contracts.RiskProfile) (float64, contracts.SubScores) {
	sub := signals.Calculate(a)
	return Composite(sub, s.For(profile)), sub
}

// Score uses the built-in weights
func Score(a contracts.StockAttributes, profile contracts.RiskProfile) (float64, contracts.SubScores) {
	return DefaultWeightSet().Score(a, profile)
}

// Round rounds v half away from zero to the given decimals
func Round(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}
