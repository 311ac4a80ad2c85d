package risk

import (
	"math"

	"github.com/wonny/swingscan/internal/contracts"
)

// Targets derives entry, stop and target prices from the current price.
// Stop and target are rounded to cents.
func (p Params) Targets(a contracts.StockAttributes) contracts.Targets {
	price := a.Price
	vol := p.VolatilityOf(a)

	return contracts.Targets{
		Entry:    price,
		StopLoss: roundCents(price * (1 - vol*p.StopMultiple)),
		Target:   roundCents(price * (1 + vol*p.TargetMultiple)),
	}
}

// CalculateTargets uses the built-in tables
func CalculateTargets(a contracts.StockAttributes) contracts.Targets {
	return DefaultParams().Targets(a)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
