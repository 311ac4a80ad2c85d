package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/swingscan/internal/contracts"
	"github.com/wonny/swingscan/internal/normalize"
)

func TestDefaultWeightsSumToOne(t *testing.T) {
	set := DefaultWeightSet()
	require.NoError(t, set.Validate())

	for _, p := range contracts.AllRiskProfiles() {
		assert.InDelta(t, 1.0, set.For(p).Sum(), 1e-12, string(p))
	}
}

func TestWeightSet_For(t *testing.T) {
	set := DefaultWeightSet()

	assert.Equal(t, Weights{0.3, 0.5, 0.2}, set.For(contracts.RiskConservative))
	assert.Equal(t, Weights{0.5, 0.2, 0.3}, set.For(contracts.RiskAggressive))
	assert.Equal(t, Weights{0.4, 0.3, 0.3}, set.For(contracts.RiskModerate))
	assert.Equal(t, set.Moderate, set.For("reckless"))
}

func TestWeights_Validate(t *testing.T) {
	assert.Error(t, Weights{0.5, 0.5, 0.5}.Validate())
	assert.Error(t, Weights{1.2, -0.1, -0.1}.Validate())
	assert.NoError(t, Weights{1, 0, 0}.Validate())

	set := DefaultWeightSet()
	set.Aggressive.Catalyst = 0.4
	assert.ErrorContains(t, set.Validate(), "aggressive")
}

func TestComposite(t *testing.T) {
	sub := contracts.SubScores{Technical: 8.625, Fundamental: 10, Catalyst: 9.11}

	// 3.45 + 3 + 2.733 = 9.183
	assert.Equal(t, 9.2, Composite(sub, DefaultWeightSet().Moderate))
	// 2.5875 + 5 + 1.822 = 9.4095
	assert.Equal(t, 9.4, Composite(sub, DefaultWeightSet().Conservative))
}

func TestCompositeIsMonotonic(t *testing.T) {
	set := DefaultWeightSet()
	steps := []float64{0, 1.5, 3, 4.5, 6, 7.5, 9, 10}

	for _, p := range contracts.AllRiskProfiles() {
		w := set.For(p)
		for _, other := range []float64{0, 5, 10} {
			var prevT, prevF, prevC float64 = -1, -1, -1
			for _, v := range steps {
				gotT := Composite(contracts.SubScores{Technical: v, Fundamental: other, Catalyst: other}, w)
				gotF := Composite(contracts.SubScores{Technical: other, Fundamental: v, Catalyst: other}, w)
				gotC := Composite(contracts.SubScores{Technical: other, Fundamental: other, Catalyst: v}, w)

				assert.GreaterOrEqual(t, gotT, prevT)
				assert.GreaterOrEqual(t, gotF, prevF)
				assert.GreaterOrEqual(t, gotC, prevC)
				prevT, prevF, prevC = gotT, gotF, gotC
			}
		}
	}
}

func TestScore_DemoFixture(t *testing.T) {
	nvda := normalize.DemoAttributes()[2]

	final, sub := Score(nvda, contracts.RiskModerate)

	// rsi 38.2 → 8, bullish → 9, ema (-1.2, 3.8) → (8+5)/2
	assert.InDelta(t, 8*0.4+9*0.35+6.5*0.25, sub.Technical, 1e-9)
	assert.Equal(t, 10.0, sub.Fundamental)
	assert.InDelta(t, 9.11, sub.Catalyst, 1e-9)
	assert.GreaterOrEqual(t, final, 0.0)
	assert.LessOrEqual(t, final, 10.0)
	assert.Equal(t, Round(final, 1), final)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 94.0, Round(93.999999, 2))
	assert.Equal(t, 7.3, Round(7.25, 1))
	assert.Equal(t, 0.07, Round(0.0749, 2))
}
