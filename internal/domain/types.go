package domain

import "time"

// Position is the scoring category a player belongs to.
type Position string

const (
	PositionGoalkeeper Position = "GKP"
	PositionDefender   Position = "DEF"
	PositionMidfielder Position = "MID"
	PositionForward    Position = "FWD"
)

// Player is a scored individual. Players are created when first observed in
// the store and deactivated rather than deleted; price and position may
// change between gameweeks.
type Player struct {
	ID       string   `json:"id" db:"id"`
	Name     string   `json:"name" db:"name"`
	Position Position `json:"position" db:"position"`
	Price    float64  `json:"price" db:"price"`
	Active   bool     `json:"active" db:"active"`
}

// GameweekSignal is the immutable fact bundle for one (player, gameweek).
// Rows are written at import time and never mutated after the gameweek
// closes; amendments create a new row for a later gameweek.
//
// Points, Minutes and AttackingRate are realized outcomes of the gameweek.
// FixtureDifficulty and Status are pre-gameweek facts (the fixture list and
// the lineup signal are published before kickoff) and are the only fields a
// prediction for this gameweek may consume.
type GameweekSignal struct {
	PlayerID          string      `json:"player_id" db:"player_id"`
	Gameweek          int         `json:"gameweek" db:"gameweek"`
	Points            float64     `json:"points" db:"points"`
	Minutes           int         `json:"minutes" db:"minutes"`
	AttackingRate     *float64    `json:"attacking_rate,omitempty" db:"attacking_rate"`
	FixtureDifficulty *float64    `json:"fixture_difficulty,omitempty" db:"fixture_difficulty"`
	Status            StartStatus `json:"status" db:"status"`
	StatusOverridden  bool        `json:"status_overridden" db:"status_overridden"`
}

// FixtureContext is the outcome-free slice of a GameweekSignal: the fields
// that are known before the gameweek is played. The backtest runner feeds
// the engine FixtureContext for the target gameweek and full signals only
// for earlier gameweeks.
type FixtureContext struct {
	PlayerID   string
	Gameweek   int
	Difficulty *float64
	Status     StartStatus
}

// Fixture extracts the pre-gameweek fields from a signal row.
func (s GameweekSignal) Fixture() FixtureContext {
	return FixtureContext{
		PlayerID:   s.PlayerID,
		Gameweek:   s.Gameweek,
		Difficulty: s.FixtureDifficulty,
		Status:     s.Status,
	}
}

// SeasonBaseline holds per-player reference rates computed once from the
// prior closed season. Read-only to the engine.
type SeasonBaseline struct {
	PlayerID      string  `json:"player_id" db:"player_id"`
	Season        string  `json:"season" db:"season"`
	PointsPerGame float64 `json:"points_per_game" db:"points_per_game"`
	AttackingRate float64 `json:"attacking_rate" db:"attacking_rate"`
}

// BlendState is the per-player per-gameweek blend output. CurrentWeight
// depends only on elapsed gameweeks and the configured transition length,
// never on outcomes.
type BlendState struct {
	BlendedBaseline float64 `json:"blended_baseline"`
	CurrentWeight   float64 `json:"current_weight"`
}

// Multipliers holds the four component multipliers that compose a prediction.
type Multipliers struct {
	Form       float64 `json:"form"`
	Difficulty float64 `json:"difficulty"`
	Status     float64 `json:"status"`
	Ratio      float64 `json:"ratio"`
}

// Prediction is the engine output for one (player, gameweek, model version).
// Predictions are superseded by a new model version, never edited in place.
type Prediction struct {
	PlayerID        string      `json:"player_id" db:"player_id"`
	Gameweek        int         `json:"gameweek" db:"gameweek"`
	ModelVersion    string      `json:"model_version" db:"model_version"`
	TrueValue       float64     `json:"true_value" db:"true_value"`
	CostEfficiency  float64     `json:"cost_efficiency" db:"cost_efficiency"`
	BlendedBaseline float64     `json:"blended_baseline" db:"blended_baseline"`
	CurrentWeight   float64     `json:"current_weight" db:"current_weight"`
	Multipliers     Multipliers `json:"multipliers" db:"-"`
	CapsTriggered   []string    `json:"caps_triggered,omitempty" db:"-"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
}

// ValidationRun is one backtest or optimizer trial. The log is append-only:
// runs are never deleted, so parameter history stays analyzable.
type ValidationRun struct {
	ID           string             `json:"id" db:"id"`
	ModelVersion string             `json:"model_version" db:"model_version"`
	Trial        int                `json:"trial" db:"trial"`
	Label        string             `json:"label" db:"label"`
	Params       map[string]float64 `json:"params" db:"-"`
	FirstGW      int                `json:"first_gw" db:"first_gw"`
	LastGW       int                `json:"last_gw" db:"last_gw"`
	RMSE         float64            `json:"rmse" db:"rmse"`
	MAE          float64            `json:"mae" db:"mae"`
	Spearman     float64            `json:"spearman" db:"spearman"`
	SpearmanP    float64            `json:"spearman_p" db:"spearman_p"`
	RSquared     float64            `json:"r_squared" db:"r_squared"`
	PrecisionAtK float64            `json:"precision_at_k" db:"precision_at_k"`
	Samples      int                `json:"samples" db:"samples"`
	Insufficient bool               `json:"insufficient" db:"insufficient"`
	CreatedAt    time.Time          `json:"created_at" db:"created_at"`
}
