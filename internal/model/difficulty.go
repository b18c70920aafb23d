package model

import (
	"math"

	"github.com/fantasyedge/truevalue/internal/config"
	"github.com/fantasyedge/truevalue/internal/domain"
)

// DifficultyTransform maps a signed fixture-difficulty score and a position
// sensitivity weight to a raw multiplier. A single exponential transform
// exists today; new transforms plug in without touching the engine.
type DifficultyTransform interface {
	Multiplier(score, positionWeight float64) float64
}

// difficultyNormalization matches the natural range of the difficulty
// score, roughly [-10, 10].
const difficultyNormalization = 10.0

// ExponentialTransform computes base^((-score*weight)/10). With base > 1
// the sign convention holds: negative scores (easier fixtures) push the
// multiplier above 1, positive scores below 1, zero lands exactly on 1.
type ExponentialTransform struct {
	Base float64
}

func (t ExponentialTransform) Multiplier(score, positionWeight float64) float64 {
	return math.Pow(t.Base, (-score*positionWeight)/difficultyNormalization)
}

// DifficultyModel applies a DifficultyTransform with per-position
// sensitivity weighting and cap containment.
type DifficultyModel struct {
	transform DifficultyTransform
	cfg       config.DifficultyParams
}

// NewDifficultyModel builds the model with the exponential transform.
// Config validation guarantees Base > 1 before this is reached.
func NewDifficultyModel(cfg config.DifficultyParams) DifficultyModel {
	return DifficultyModel{
		transform: ExponentialTransform{Base: cfg.Base},
		cfg:       cfg,
	}
}

// Multiplier returns the capped fixture multiplier for a position. A nil
// score (no fixture data) is neutral. The bool reports cap clipping.
func (m DifficultyModel) Multiplier(score *float64, position domain.Position) (float64, bool) {
	if score == nil {
		return 1.0, false
	}
	weight, ok := m.cfg.PositionWeights[string(position)]
	if !ok {
		weight = 1.0
	}
	return capped(m.transform.Multiplier(*score, weight), m.cfg.Min, m.cfg.Max)
}
