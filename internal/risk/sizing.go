package risk

import (
	"fmt"
	"math"

	"github.com/wonny/swingscan/internal/contracts"
)

// SizePosition converts the profile's risk budget into a share count.
//
//	stopFrac = (entry − stop) / entry
//	shares   = floor(capital·riskPct / (entry·stopFrac))
//
// Returns ErrInvalidRiskParameters when entry or capital is not positive,
// or when the stop is not below entry.
func (p Params) SizePosition(t contracts.Targets, capital float64, profile contracts.RiskProfile) (contracts.Position, error) {
	if t.Entry <= 0 || math.IsNaN(t.Entry) {
		return contracts.Position{}, fmt.Errorf("%w: entry price %.2f", contracts.ErrInvalidRiskParameters, t.Entry)
	}
	if capital <= 0 {
		return contracts.Position{}, fmt.Errorf("%w: capital %.2f", contracts.ErrInvalidRiskParameters, capital)
	}

	riskPerShare := t.Entry - t.StopLoss
	stopFrac := riskPerShare / t.Entry
	if stopFrac <= 0 || math.IsNaN(stopFrac) {
		return contracts.Position{}, fmt.Errorf("%w: stop distance %.4f", contracts.ErrInvalidRiskParameters, stopFrac)
	}

	maxRisk := capital * p.RiskPercent.For(profile)
	shares := int64(math.Floor(maxRisk / (t.Entry * stopFrac)))

	return contracts.Position{
		Shares:        shares,
		PositionValue: roundCents(float64(shares) * t.Entry),
		RiskAmount:    roundCents(float64(shares) * riskPerShare),
	}, nil
}

// Evaluate computes targets and sizing for one stock.
// An unknown price yields zero levels and ErrPriceUnavailable.
func (p Params) Evaluate(a contracts.StockAttributes, capital float64, profile contracts.RiskProfile) (contracts.Targets, contracts.Position, error) {
	if !a.HasPrice() {
		return contracts.Targets{}, contracts.Position{}, fmt.Errorf("%s: %w", a.Ticker, contracts.ErrPriceUnavailable)
	}

	targets := p.Targets(a)

	position, err := p.SizePosition(targets, capital, profile)
	return targets, position, err
}

// CalculatePosition uses the built-in tables
func CalculatePosition(t contracts.Targets, capital float64, profile contracts.RiskProfile) (contracts.Position, error) {
	return DefaultParams().SizePosition(t, capital, profile)
}
