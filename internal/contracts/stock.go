package contracts

import (
	"fmt"
	"strings"
)

// Sector is the normalized industry bucket of a stock
type Sector string

const (
	SectorTechnology  Sector = "technology"
	SectorHealthcare  Sector = "healthcare"
	SectorFinancials  Sector = "financials"
	SectorConsumer    Sector = "consumer"
	SectorIndustrials Sector = "industrials"
	SectorEnergy      Sector = "energy"
)

// AllSectors lists every known sector in display order
func AllSectors() []Sector {
	return []Sector{
		SectorTechnology,
		SectorHealthcare,
		SectorFinancials,
		SectorConsumer,
		SectorIndustrials,
		SectorEnergy,
	}
}

// ParseSector maps a canonical sector name to a Sector.
// Unknown names fall back to technology and report ErrUnknownSector.
func ParseSector(s string) (Sector, error) {
	v := Sector(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllSectors() {
		if v == known {
			return v, nil
		}
	}
	return SectorTechnology, fmt.Errorf("%w: %q", ErrUnknownSector, s)
}

// MacdSignal is the categorical MACD crossover state
type MacdSignal string

const (
	MacdBullishCrossover MacdSignal = "bullish_crossover"
	MacdNeutral          MacdSignal = "neutral"
	MacdBearishCrossover MacdSignal = "bearish_crossover"
)

// ParseMacdSignal falls back to neutral for unrecognized values
func ParseMacdSignal(s string) (MacdSignal, error) {
	switch v := MacdSignal(strings.ToLower(strings.TrimSpace(s))); v {
	case MacdBullishCrossover, MacdNeutral, MacdBearishCrossover:
		return v, nil
	default:
		return MacdNeutral, fmt.Errorf("%w: %q", ErrUnknownMacdSignal, s)
	}
}

// RiskProfile selects scoring weights and per-trade risk
type RiskProfile string

const (
	RiskConservative RiskProfile = "conservative"
	RiskModerate     RiskProfile = "moderate"
	RiskAggressive   RiskProfile = "aggressive"
)

// AllRiskProfiles lists every known profile
func AllRiskProfiles() []RiskProfile {
	return []RiskProfile{RiskConservative, RiskModerate, RiskAggressive}
}

// ParseRiskProfile falls back to moderate for unrecognized values
func ParseRiskProfile(s string) (RiskProfile, error) {
	switch v := RiskProfile(strings.ToLower(strings.TrimSpace(s))); v {
	case RiskConservative, RiskModerate, RiskAggressive:
		return v, nil
	default:
		return RiskModerate, fmt.Errorf("%w: %q", ErrUnknownRiskProfile, s)
	}
}

// Attribute field names used in StockAttributes.Synthetic
const (
	FieldPrice          = "price"
	FieldMarketCap      = "marketCap"
	FieldAvgVolume      = "avgVolume"
	FieldEPSGrowthNext  = "epsGrowthNext"
	FieldSalesGrowthQ   = "salesGrowthQ"
	FieldDebtToEquity   = "debtToEquity"
	FieldRSI            = "rsi"
	FieldMacdSignal     = "macdSignal"
	FieldEMADistance20  = "emaDistance20"
	FieldEMADistance50  = "emaDistance50"
	FieldSector         = "sector"
	FieldNextEarnings   = "nextEarnings"
	FieldNewsScore      = "newsScore"
	FieldSectorMomentum = "sectorMomentum"
)

// StockAttributes is the normalized per-symbol input to scoring
// ⭐ SSOT: normalize → signals / risk 전달 레코드
type StockAttributes struct {
	Ticker         string     `json:"ticker"`
	Price          float64    `json:"price"`     // 0 = unknown ("N/A")
	MarketCap      float64    `json:"marketCap"` // millions
	AvgVolume      int64      `json:"avgVolume"`
	EPSGrowthNext  float64    `json:"epsGrowthNext"` // %
	SalesGrowthQ   float64    `json:"salesGrowthQ"`  // %
	DebtToEquity   float64    `json:"debtToEquity"`
	RSI            float64    `json:"rsi"`
	MacdSignal     MacdSignal `json:"macdSignal"`
	EMADistance20  float64    `json:"emaDistance20"` // signed %
	EMADistance50  float64    `json:"emaDistance50"` // signed %
	Sector         Sector     `json:"sector"`
	NextEarnings   int        `json:"nextEarnings"` // days
	NewsScore      float64    `json:"newsScore"`
	SectorMomentum float64    `json:"sectorMomentum"`

	// Fields filled by a documented default instead of upstream data
	Synthetic []string `json:"synthetic,omitempty"`
}

// IsSynthetic reports whether field was defaulted rather than sourced
func (a StockAttributes) IsSynthetic(field string) bool {
	for _, f := range a.Synthetic {
		if f == field {
			return true
		}
	}
	return false
}

// HasPrice reports whether a usable quote price is known
func (a StockAttributes) HasPrice() bool {
	return a.Price > 0
}
