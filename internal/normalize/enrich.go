package normalize

import (
	"math"

	"github.com/wonny/swingscan/internal/contracts"
)

// Helpers turning indicator and news data into Overrides values.
// Each reports false when its inputs cannot produce a value.

// QuotePrice returns the quote price when present and positive
func QuotePrice(quote map[string]string) (float64, bool) {
	price, ok, _ := parseFloatField(quote, QuotePriceKey)
	return price, ok && price > 0
}

// MacdCrossover compares the MACD line with its signal line over the two
// latest points (series are newest first).
func MacdCrossover(macd, signal []float64) (contracts.MacdSignal, bool) {
	if len(macd) < 2 || len(signal) < 2 {
		return DefaultMacdSignal, false
	}

	prev := macd[1] - signal[1]
	curr := macd[0] - signal[0]

	switch {
	case prev <= 0 && curr > 0:
		return contracts.MacdBullishCrossover, true
	case prev >= 0 && curr < 0:
		return contracts.MacdBearishCrossover, true
	default:
		return contracts.MacdNeutral, true
	}
}

// EMADistance is the signed percent distance of price from ema
func EMADistance(price, ema float64) (float64, bool) {
	if price <= 0 || ema <= 0 || !finite(price) || !finite(ema) {
		return 0, false
	}
	return math.Round((price-ema)/ema*10000) / 100, true
}

// SentimentPoint is one article's sentiment towards a ticker
type SentimentPoint struct {
	Relevance float64 // 0-1
	Score     float64 // -1 (bearish) to 1 (bullish)
}

// NewsScoreFromSentiment maps the relevance-weighted mean sentiment onto
// 0-10 with 5 as neutral.
func NewsScoreFromSentiment(points []SentimentPoint) (float64, bool) {
	var weighted, total float64
	for _, p := range points {
		if p.Relevance <= 0 || !finite(p.Score) {
			continue
		}
		weighted += p.Relevance * p.Score
		total += p.Relevance
	}

	if total == 0 {
		return DefaultNewsScore, false
	}

	score := clamp(5+(weighted/total)*10, 0, 10)
	return math.Round(score*10) / 10, true
}
