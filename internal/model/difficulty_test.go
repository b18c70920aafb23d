package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fantasyedge/truevalue/internal/config"
	"github.com/fantasyedge/truevalue/internal/domain"
)

func difficultyConfig() config.DifficultyParams {
	return config.DifficultyParams{
		Base: 1.05,
		PositionWeights: map[string]float64{
			string(domain.PositionMidfielder): 1.0,
			string(domain.PositionDefender):   1.1,
		},
		Min: 0.5,
		Max: 1.8,
	}
}

func score(v float64) *float64 { return &v }

func TestDifficultyMultiplier_SignConvention(t *testing.T) {
	m := NewDifficultyModel(difficultyConfig())

	neutral, _ := m.Multiplier(score(0), domain.PositionMidfielder)
	assert.Equal(t, 1.0, neutral)

	easy, _ := m.Multiplier(score(-5), domain.PositionMidfielder)
	assert.InDelta(t, 1.0247, easy, 0.0001) // 1.05^0.5

	hard, _ := m.Multiplier(score(5), domain.PositionMidfielder)
	assert.InDelta(t, 0.9759, hard, 0.0001) // 1.05^-0.5
}

func TestDifficultyMultiplier_StrictlyDecreasingInScore(t *testing.T) {
	m := NewDifficultyModel(difficultyConfig())

	prev := 2.0
	for s := -8.0; s <= 8.0; s += 0.5 {
		mult, _ := m.Multiplier(score(s), domain.PositionMidfielder)
		assert.Less(t, mult, prev, "multiplier not decreasing at score %g", s)
		prev = mult
	}
}

func TestDifficultyMultiplier_PositionWeightScalesEffect(t *testing.T) {
	m := NewDifficultyModel(difficultyConfig())

	mid, _ := m.Multiplier(score(-5), domain.PositionMidfielder)
	def, _ := m.Multiplier(score(-5), domain.PositionDefender)
	assert.Greater(t, def, mid)

	// Positions without a configured weight fall back to 1.0.
	fwd, _ := m.Multiplier(score(-5), domain.PositionForward)
	assert.Equal(t, mid, fwd)
}

func TestDifficultyMultiplier_MissingScoreIsNeutral(t *testing.T) {
	m := NewDifficultyModel(difficultyConfig())
	mult, capped := m.Multiplier(nil, domain.PositionMidfielder)
	assert.Equal(t, 1.0, mult)
	assert.False(t, capped)
}

func TestDifficultyMultiplier_Caps(t *testing.T) {
	cfg := difficultyConfig()
	cfg.Base = 1.4
	m := NewDifficultyModel(cfg)

	// 1.4^3 = 2.744 clips to the max cap.
	high, capped := m.Multiplier(score(-30), domain.PositionMidfielder)
	assert.Equal(t, cfg.Max, high)
	assert.True(t, capped)

	// 1.4^-3 = 0.364 clips to the min cap.
	low, capped := m.Multiplier(score(30), domain.PositionMidfielder)
	assert.Equal(t, cfg.Min, low)
	assert.True(t, capped)
}
