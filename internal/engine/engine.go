// Package engine composes the blend baseline and the four component
// multipliers into a single True Value prediction per player per gameweek.
package engine

import (
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fantasyedge/truevalue/internal/config"
	"github.com/fantasyedge/truevalue/internal/domain"
	"github.com/fantasyedge/truevalue/internal/model"
	"github.com/fantasyedge/truevalue/internal/telemetry"
)

// Input is a player's view-as-of one gameweek: identity plus whatever
// signals were visible before that gameweek's results were known. Optional
// signals are pointers; a nil resolves to a neutral multiplier, it never
// raises.
type Input struct {
	Player   domain.Player
	Gameweek int

	// Baseline is the prior-season reference; nil for a new player.
	Baseline *domain.SeasonBaseline

	// CurrentAvg and CurrentSamples summarize the running current-season
	// points average over played gameweeks before this one.
	CurrentAvg     float64
	CurrentSamples int

	// RecentPoints is ordered newest first.
	RecentPoints []float64

	// RecentAttackingRate is the recent underlying-performance rate; nil
	// when the stats provider has no data for the player.
	RecentAttackingRate *float64

	// FixtureDifficulty is the signed difficulty of the upcoming fixture,
	// negative meaning easier. Nil when no fixture is scheduled.
	FixtureDifficulty *float64

	Status domain.StartStatus
}

// Engine turns Inputs into Predictions under one immutable parameter set.
// Parameter changes mean constructing a new Engine, never mutating one in
// flight.
type Engine struct {
	params     config.Params
	difficulty model.DifficultyModel
}

// New validates params and builds an engine.
func New(params config.Params) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		params:     params,
		difficulty: model.NewDifficultyModel(params.Difficulty),
	}, nil
}

// Params returns the engine's parameter set.
func (e *Engine) Params() config.Params {
	return e.params
}

// Predict computes the True Value and cost efficiency for one input.
// Missing identity or a negative price is a validation error the caller
// must surface; a zero price yields zero efficiency, not an error.
func (e *Engine) Predict(in Input) (domain.Prediction, error) {
	if in.Player.ID == "" {
		return domain.Prediction{}, domain.NewValidationError("player_id", "must not be empty")
	}
	if in.Gameweek < 1 {
		return domain.Prediction{}, domain.NewValidationError("gameweek", "must be >= 1, got %d", in.Gameweek)
	}
	if in.Player.Price < 0 {
		return domain.Prediction{}, domain.NewValidationError("price", "must be >= 0, got %g", in.Player.Price)
	}

	var baseline *float64
	var baselineRate *float64
	if in.Baseline != nil {
		baseline = &in.Baseline.PointsPerGame
		baselineRate = &in.Baseline.AttackingRate
	} else {
		e.dataGap(in, "season_baseline")
	}

	blend := model.Blend(in.Gameweek, baseline, in.CurrentAvg, in.CurrentSamples, e.params.Blend)

	var caps []string
	form, clipped := model.FormMultiplier(in.RecentPoints, blend.BlendedBaseline, e.params.Form)
	caps = e.recordCap(caps, "form", clipped)
	if len(in.RecentPoints) == 0 {
		e.dataGap(in, "recent_points")
	}

	difficulty, clipped := e.difficulty.Multiplier(in.FixtureDifficulty, in.Player.Position)
	caps = e.recordCap(caps, "difficulty", clipped)
	if in.FixtureDifficulty == nil {
		e.dataGap(in, "fixture_difficulty")
	}

	status := model.StatusMultiplier(in.Status, e.params.Status)

	ratio, clipped := model.RatioMultiplier(in.RecentAttackingRate, baselineRate, in.Player.Position, e.params.Ratio)
	caps = e.recordCap(caps, "ratio", clipped)
	if in.RecentAttackingRate == nil {
		e.dataGap(in, "attacking_rate")
	}

	trueValue := blend.BlendedBaseline * form * difficulty * status * ratio
	if globalCap := blend.BlendedBaseline * e.params.GlobalCap; trueValue > globalCap {
		trueValue = globalCap
		caps = e.recordCap(caps, "global", true)
	}

	costEfficiency := 0.0
	if in.Player.Price > 0 {
		costEfficiency = trueValue / in.Player.Price
	}

	telemetry.PredictionsComputed.Inc()

	return domain.Prediction{
		PlayerID:        in.Player.ID,
		Gameweek:        in.Gameweek,
		ModelVersion:    e.params.ModelVersion,
		TrueValue:       round3(trueValue),
		CostEfficiency:  round3(costEfficiency),
		BlendedBaseline: round3(blend.BlendedBaseline),
		CurrentWeight:   round3(blend.CurrentWeight),
		Multipliers: domain.Multipliers{
			Form:       round3(form),
			Difficulty: round3(difficulty),
			Status:     round3(status),
			Ratio:      round3(ratio),
		},
		CapsTriggered: caps,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

func (e *Engine) recordCap(caps []string, name string, clipped bool) []string {
	if !clipped {
		return caps
	}
	telemetry.CapsTriggered.WithLabelValues(name).Inc()
	return append(caps, name)
}

func (e *Engine) dataGap(in Input, signal string) {
	telemetry.DataGaps.WithLabelValues(signal).Inc()
	log.Debug().
		Str("player", in.Player.ID).
		Int("gameweek", in.Gameweek).
		Str("signal", signal).
		Msg("missing optional signal, using neutral default")
}

// round3 keeps stored floats stable for display: three decimal places.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
