package signals

import "github.com/wonny/swingscan/internal/contracts"

// EarningsPoints returns the first matching earnings-proximity tier
func EarningsPoints(daysToEarnings int) float64 {
	switch {
	case daysToEarnings <= 7:
		return 3
	case daysToEarnings <= 14:
		return 2
	case daysToEarnings <= 21:
		return 1
	default:
		return 0
	}
}

// CatalystScore combines earnings proximity, news and sector momentum.
// Capped at 10.
func CatalystScore(a contracts.StockAttributes) float64 {
	score := EarningsPoints(a.NextEarnings)
	score += a.NewsScore / 10 * 4
	score += a.SectorMomentum / 10 * 3

	if score > maxScore {
		return maxScore
	}
	if score < 0 {
		return 0
	}
	return score
}
