// Package risk derives volatility, trade levels and position size.
package risk

import (
	"fmt"

	"github.com/wonny/swingscan/internal/contracts"
)

// =============================================================================
// Parameters
// =============================================================================

// VolatilityTable is the assumed per-sector volatility
type VolatilityTable struct {
	Sectors           map[contracts.Sector]float64 `yaml:"sectors" json:"sectors"`
	Default           float64                      `yaml:"default" json:"default"`                       // unmatched sector
	ExtremeMultiplier float64                      `yaml:"extreme_multiplier" json:"extreme_multiplier"` // applied when overbought/oversold
	Overbought        float64                      `yaml:"overbought" json:"overbought"`                 // rsi > this
	Oversold          float64                      `yaml:"oversold" json:"oversold"`                     // rsi < this
}

// RiskPercent is the share of capital risked per trade, by profile
type RiskPercent struct {
	Conservative float64 `yaml:"conservative" json:"conservative"`
	Moderate     float64 `yaml:"moderate" json:"moderate"`
	Aggressive   float64 `yaml:"aggressive" json:"aggressive"`
}

// For returns the percentage for profile; unknown profiles use moderate
func (r RiskPercent) For(profile contracts.RiskProfile) float64 {
	switch profile {
	case contracts.RiskConservative:
		return r.Conservative
	case contracts.RiskAggressive:
		return r.Aggressive
	default:
		return r.Moderate
	}
}

// Params bundles every tunable of the risk calculator
// ⭐ SSOT: 변동성/손절/목표가/리스크 비율
type Params struct {
	Volatility     VolatilityTable `yaml:"volatility" json:"volatility"`
	StopMultiple   float64         `yaml:"stop_multiple" json:"stop_multiple"`     // stop = p·(1 − v·m)
	TargetMultiple float64         `yaml:"target_multiple" json:"target_multiple"` // target = p·(1 + v·m)
	RiskPercent    RiskPercent     `yaml:"risk_percent" json:"risk_percent"`
}

// DefaultParams returns the built-in tables
func DefaultParams() Params {
	return Params{
		Volatility: VolatilityTable{
			Sectors: map[contracts.Sector]float64{
				contracts.SectorTechnology:  0.08,
				contracts.SectorHealthcare:  0.06,
				contracts.SectorFinancials:  0.07,
				contracts.SectorConsumer:    0.09,
				contracts.SectorIndustrials: 0.06,
				contracts.SectorEnergy:      0.12,
			},
			Default:           0.07,
			ExtremeMultiplier: 1.2,
			Overbought:        70,
			Oversold:          30,
		},
		StopMultiple:   0.6,
		TargetMultiple: 1.5,
		RiskPercent: RiskPercent{
			Conservative: 0.01,
			Moderate:     0.02,
			Aggressive:   0.03,
		},
	}
}

// Validate checks the tables are usable
func (p Params) Validate() error {
	if p.Volatility.Default <= 0 {
		return fmt.Errorf("volatility.default must be > 0")
	}
	for sector, v := range p.Volatility.Sectors {
		if v <= 0 {
			return fmt.Errorf("volatility.sectors.%s must be > 0", sector)
		}
	}
	if p.Volatility.ExtremeMultiplier < 1 {
		return fmt.Errorf("volatility.extreme_multiplier must be >= 1")
	}
	if p.Volatility.Oversold >= p.Volatility.Overbought {
		return fmt.Errorf("volatility.oversold must be < overbought")
	}
	if p.StopMultiple <= 0 || p.TargetMultiple <= 0 {
		return fmt.Errorf("stop_multiple and target_multiple must be > 0")
	}
	for _, profile := range contracts.AllRiskProfiles() {
		if pct := p.RiskPercent.For(profile); pct <= 0 || pct > 1 {
			return fmt.Errorf("risk_percent.%s must be in (0, 1]", profile)
		}
	}
	return nil
}
