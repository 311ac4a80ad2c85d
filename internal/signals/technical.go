// Package signals computes the technical, fundamental and catalyst
// sub-scores of a stock. Every function is pure; all scores lie in [0, 10].
package signals

import "github.com/wonny/swingscan/internal/contracts"

// Technical blend weights
const (
	rsiWeight  = 0.40
	macdWeight = 0.35
	emaWeight  = 0.25
)

// RSIScore is a coarse step function. 40-45 and 55-70 fall through to 5.
func RSIScore(rsi float64) float64 {
	switch {
	case rsi < 30:
		return 9
	case rsi < 40:
		return 8
	case rsi >= 45 && rsi <= 55:
		return 7
	case rsi > 70:
		return 3
	default:
		return 5
	}
}

// MACDScore scores the crossover state; unrecognized values score neutral
func MACDScore(signal contracts.MacdSignal) float64 {
	switch signal {
	case contracts.MacdBullishCrossover:
		return 9
	case contracts.MacdNeutral:
		return 5
	case contracts.MacdBearishCrossover:
		return 2
	default:
		return 5
	}
}

// EMAScore averages the 20-day and 50-day distance steps
func EMAScore(distance20, distance50 float64) float64 {
	var score20, score50 float64

	switch {
	case distance20 <= 2:
		score20 = 8
	case distance20 <= 5:
		score20 = 6
	default:
		score20 = 4
	}

	switch {
	case distance50 <= 3:
		score50 = 7
	case distance50 <= 8:
		score50 = 5
	default:
		score50 = 3
	}

	return (score20 + score50) / 2
}

// TechnicalScore blends RSI, MACD and EMA scores
func TechnicalScore(a contracts.StockAttributes) float64 {
	return RSIScore(a.RSI)*rsiWeight +
		MACDScore(a.MacdSignal)*macdWeight +
		EMAScore(a.EMADistance20, a.EMADistance50)*emaWeight
}

// Calculate returns all three sub-scores for a
func Calculate(a contracts.StockAttributes) contracts.SubScores {
	return contracts.SubScores{
		Technical:   TechnicalScore(a),
		Fundamental: FundamentalScore(a),
		Catalyst:    CatalystScore(a),
	}
}
