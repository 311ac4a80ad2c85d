// Package quality measures how much of a batch came from upstream data
// rather than documented defaults.
package quality

import (
	"fmt"
	"sort"

	"github.com/wonny/swingscan/internal/contracts"
)

// Coverage groups
const (
	GroupPrice        = "price"
	GroupVolume       = "volume"
	GroupMarketCap    = "market_cap"
	GroupFundamentals = "fundamentals"
	GroupTechnicals   = "technicals"
	GroupCatalyst     = "catalyst"
)

// groupFields lists the attribute fields each group depends on
var groupFields = map[string][]string{
	GroupPrice:        {contracts.FieldPrice},
	GroupVolume:       {contracts.FieldAvgVolume},
	GroupMarketCap:    {contracts.FieldMarketCap},
	GroupFundamentals: {contracts.FieldEPSGrowthNext, contracts.FieldSalesGrowthQ, contracts.FieldDebtToEquity},
	GroupTechnicals:   {contracts.FieldRSI, contracts.FieldMacdSignal, contracts.FieldEMADistance20, contracts.FieldEMADistance50},
	GroupCatalyst:     {contracts.FieldNextEarnings, contracts.FieldNewsScore, contracts.FieldSectorMomentum},
}

// groupWeights sum to 1.0
var groupWeights = map[string]float64{
	GroupPrice:        0.30, // 가격 데이터 필수
	GroupVolume:       0.20,
	GroupMarketCap:    0.10,
	GroupFundamentals: 0.15,
	GroupTechnicals:   0.15,
	GroupCatalyst:     0.10,
}

// Config holds minimum coverage per group (0 = no minimum)
type Config struct {
	MinPriceCoverage     float64 `yaml:"min_price_coverage" json:"min_price_coverage"`
	MinVolumeCoverage    float64 `yaml:"min_volume_coverage" json:"min_volume_coverage"`
	MinMarketCapCoverage float64 `yaml:"min_market_cap_coverage" json:"min_market_cap_coverage"`
}

// DefaultConfig requires a price for every stock. Fundamentals, technicals
// and catalyst inputs have no minimum.
func DefaultConfig() Config {
	return Config{
		MinPriceCoverage:     1.0,
		MinVolumeCoverage:    0.8,
		MinMarketCapCoverage: 0.5,
	}
}

// Snapshot is the coverage report for one batch
type Snapshot struct {
	TotalStocks  int                `json:"totalStocks"`
	Coverage     map[string]float64 `json:"coverage"`
	QualityScore float64            `json:"qualityScore"` // 0-1
	Passed       bool               `json:"passed"`
	Violations   []string           `json:"violations,omitempty"`
}

// QualityGate validates batch coverage against thresholds
// ⭐ SSOT: 수집 데이터 품질 검증은 여기서만
type QualityGate struct {
	config Config
}

// NewQualityGate creates a new QualityGate instance
func NewQualityGate(config Config) *QualityGate {
	return &QualityGate{config: config}
}

// Check computes coverage per group. An empty batch passes with score 0.
func (g *QualityGate) Check(attrs []contracts.StockAttributes) Snapshot {
	snapshot := Snapshot{
		TotalStocks: len(attrs),
		Coverage:    make(map[string]float64, len(groupFields)),
	}

	if len(attrs) == 0 {
		snapshot.Passed = true
		return snapshot
	}

	for group, fields := range groupFields {
		covered := 0
		for _, a := range attrs {
			if isCovered(a, group, fields) {
				covered++
			}
		}
		snapshot.Coverage[group] = float64(covered) / float64(len(attrs))
	}

	snapshot.QualityScore = calculateScore(snapshot.Coverage)
	snapshot.Violations = g.violations(snapshot.Coverage)
	snapshot.Passed = len(snapshot.Violations) == 0

	return snapshot
}

func isCovered(a contracts.StockAttributes, group string, fields []string) bool {
	switch group {
	case GroupPrice:
		if !a.HasPrice() {
			return false
		}
	case GroupVolume:
		if a.AvgVolume <= 0 {
			return false
		}
	}

	for _, f := range fields {
		if a.IsSynthetic(f) {
			return false
		}
	}
	return true
}

func (g *QualityGate) violations(coverage map[string]float64) []string {
	mins := map[string]float64{
		GroupPrice:     g.config.MinPriceCoverage,
		GroupVolume:    g.config.MinVolumeCoverage,
		GroupMarketCap: g.config.MinMarketCapCoverage,
	}

	var out []string
	for group, min := range mins {
		if min > 0 && coverage[group] < min {
			out = append(out, fmt.Sprintf("%s coverage %.0f%% < %.0f%%", group, coverage[group]*100, min*100))
		}
	}
	sort.Strings(out)
	return out
}

func calculateScore(coverage map[string]float64) float64 {
	score := 0.0
	for group, weight := range groupWeights {
		score += coverage[group] * weight
	}
	return score
}
