package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/swingscan/internal/contracts"
	"github.com/wonny/swingscan/internal/normalize"
)

func TestQualityGate_Check_FullCoverage(t *testing.T) {
	gate := NewQualityGate(DefaultConfig())

	snapshot := gate.Check(normalize.DemoAttributes())
	assert.Equal(t, 3, snapshot.TotalStocks)
	assert.True(t, snapshot.Passed)
	assert.Empty(t, snapshot.Violations)
	assert.InDelta(t, 1.0, snapshot.QualityScore, 1e-9)
	for group := range groupFields {
		assert.Equal(t, 1.0, snapshot.Coverage[group], group)
	}
}

func TestQualityGate_Check_SyntheticFields(t *testing.T) {
	gate := NewQualityGate(DefaultConfig())

	attrs := []contracts.StockAttributes{
		{Ticker: "AAA", Price: 10, AvgVolume: 1000},
		{
			Ticker:    "BBB",
			Price:     0,
			AvgVolume: 1000,
			Synthetic: []string{contracts.FieldPrice, contracts.FieldRSI, contracts.FieldMarketCap},
		},
	}

	snapshot := gate.Check(attrs)
	assert.Equal(t, 0.5, snapshot.Coverage[GroupPrice])
	assert.Equal(t, 1.0, snapshot.Coverage[GroupVolume])
	assert.Equal(t, 0.5, snapshot.Coverage[GroupTechnicals])
	assert.Equal(t, 0.5, snapshot.Coverage[GroupMarketCap])
	assert.Equal(t, 1.0, snapshot.Coverage[GroupCatalyst])

	assert.False(t, snapshot.Passed)
	require.Len(t, snapshot.Violations, 1)
	assert.Contains(t, snapshot.Violations[0], "price")

	// 0.5*0.30 + 1*0.20 + 0.5*0.10 + 1*0.15 + 0.5*0.15 + 1*0.10
	assert.InDelta(t, 0.725, snapshot.QualityScore, 1e-9)
}

func TestQualityGate_Check_Empty(t *testing.T) {
	snapshot := NewQualityGate(DefaultConfig()).Check(nil)
	assert.True(t, snapshot.Passed)
	assert.Zero(t, snapshot.QualityScore)
}

func TestCalculateScore_WeightsSumToOne(t *testing.T) {
	full := make(map[string]float64)
	for group := range groupWeights {
		full[group] = 1
	}
	assert.InDelta(t, 1.0, calculateScore(full), 1e-9)
}
