package risk

import "github.com/wonny/swingscan/internal/contracts"

// VolatilityOf returns the assumed volatility of a: the sector base,
// amplified when RSI is overbought or oversold.
func (p Params) VolatilityOf(a contracts.StockAttributes) float64 {
	vol, ok := p.Volatility.Sectors[a.Sector]
	if !ok {
		vol = p.Volatility.Default
	}

	if a.RSI > p.Volatility.Overbought || a.RSI < p.Volatility.Oversold {
		vol *= p.Volatility.ExtremeMultiplier
	}

	return vol
}

// EstimateVolatility uses the built-in tables
func EstimateVolatility(a contracts.StockAttributes) float64 {
	return DefaultParams().VolatilityOf(a)
}
