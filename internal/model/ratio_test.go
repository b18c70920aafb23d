package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fantasyedge/truevalue/internal/config"
	"github.com/fantasyedge/truevalue/internal/domain"
)

func ratioConfig() config.RatioParams {
	return config.RatioParams{
		MinBaselineRate: 0.1,
		Dampening: map[string]float64{
			string(domain.PositionGoalkeeper): 0.3,
			string(domain.PositionDefender):   0.5,
			string(domain.PositionMidfielder): 1.0,
			string(domain.PositionForward):    1.0,
		},
		Min: 0.5,
		Max: 2.5,
	}
}

func rate(v float64) *float64 { return &v }

func TestRatioMultiplier_MissingRatesAreNeutral(t *testing.T) {
	cfg := ratioConfig()

	m, capped := RatioMultiplier(nil, rate(0.5), domain.PositionForward, cfg)
	assert.Equal(t, 1.0, m)
	assert.False(t, capped)

	m, _ = RatioMultiplier(rate(0.5), nil, domain.PositionForward, cfg)
	assert.Equal(t, 1.0, m)
}

func TestRatioMultiplier_TinyBaselineIsNeutral(t *testing.T) {
	// A goalkeeper's 0.02 attacking rate never becomes a denominator.
	m, _ := RatioMultiplier(rate(0.4), rate(0.02), domain.PositionGoalkeeper, ratioConfig())
	assert.Equal(t, 1.0, m)
}

func TestRatioMultiplier_DampeningShrinksSwing(t *testing.T) {
	cfg := ratioConfig()

	// Raw ratio 1.5 over baseline.
	fwd, _ := RatioMultiplier(rate(0.6), rate(0.4), domain.PositionForward, cfg)
	def, _ := RatioMultiplier(rate(0.6), rate(0.4), domain.PositionDefender, cfg)

	assert.InDelta(t, 1.5, fwd, 1e-12)
	assert.InDelta(t, 1.25, def, 1e-12)
}

func TestRatioMultiplier_UnconfiguredPositionGetsFullEffect(t *testing.T) {
	cfg := ratioConfig()
	delete(cfg.Dampening, string(domain.PositionForward))

	m, _ := RatioMultiplier(rate(0.6), rate(0.4), domain.PositionForward, cfg)
	assert.InDelta(t, 1.5, m, 1e-12)
}

func TestRatioMultiplier_Caps(t *testing.T) {
	cfg := ratioConfig()

	high, capped := RatioMultiplier(rate(2.0), rate(0.4), domain.PositionForward, cfg)
	assert.Equal(t, cfg.Max, high)
	assert.True(t, capped)

	low, capped := RatioMultiplier(rate(0.05), rate(0.4), domain.PositionForward, cfg)
	assert.Equal(t, cfg.Min, low)
	assert.True(t, capped)
}
