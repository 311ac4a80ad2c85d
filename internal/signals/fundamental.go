package signals

import "github.com/wonny/swingscan/internal/contracts"

const maxScore = 10.0

// FundamentalScore is additive: each criterion and its stricter tier add
// points independently. Capped at 10.
func FundamentalScore(a contracts.StockAttributes) float64 {
	score := 0.0

	// market cap (millions)
	if a.MarketCap > 100 {
		score += 2
	}
	if a.MarketCap > 500 {
		score += 1
	}

	// liquidity
	if a.AvgVolume > 1_000_000 {
		score += 2
	}
	if a.AvgVolume > 10_000_000 {
		score += 1
	}

	// growth
	if a.EPSGrowthNext > 10 {
		score += 2
	}
	if a.EPSGrowthNext > 20 {
		score += 1
	}
	if a.SalesGrowthQ > 10 {
		score += 2
	}
	if a.SalesGrowthQ > 15 {
		score += 1
	}

	// leverage
	if a.DebtToEquity < 0.5 {
		score += 2
	}
	if a.DebtToEquity < 0.2 {
		score += 1
	}

	if score > maxScore {
		return maxScore
	}
	return score
}
