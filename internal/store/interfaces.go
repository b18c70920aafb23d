// Package store defines the SignalStore boundary the engine reads from and
// writes derived fields back to. Ingestion, name reconciliation and schema
// ownership live outside this module; the store only serves already
// reconciled rows.
package store

import (
	"context"

	"github.com/fantasyedge/truevalue/internal/domain"
)

// PlayerRepo serves player identity, position and price.
type PlayerRepo interface {
	// ListPlayers returns all active players.
	ListPlayers(ctx context.Context) ([]domain.Player, error)

	// GetPlayer returns one player, nil when absent.
	GetPlayer(ctx context.Context, id string) (*domain.Player, error)
}

// SignalRepo serves per-(player, gameweek) fact rows and season baselines.
type SignalRepo interface {
	// SignalsBefore returns every signal row with gameweek strictly below
	// the given gameweek, ordered by gameweek ascending. This is the only
	// query the backtest reconstruction is allowed to use.
	SignalsBefore(ctx context.Context, gameweek int) ([]domain.GameweekSignal, error)

	// SignalsAt returns the signal rows for exactly one gameweek.
	SignalsAt(ctx context.Context, gameweek int) ([]domain.GameweekSignal, error)

	// FixturesAt returns the outcome-free pre-gameweek facts (fixture
	// difficulty, lineup status) for one gameweek.
	FixturesAt(ctx context.Context, gameweek int) ([]domain.FixtureContext, error)

	// Baselines returns prior-season baselines keyed by player ID.
	Baselines(ctx context.Context) (map[string]domain.SeasonBaseline, error)
}

// PredictionRepo persists engine output. Predictions are unique per
// (player, gameweek, model version); recomputation upserts.
type PredictionRepo interface {
	UpsertPrediction(ctx context.Context, p domain.Prediction) error
	PredictionsAt(ctx context.Context, gameweek int, modelVersion string) ([]domain.Prediction, error)
}

// ValidationRepo is the append-only trial log. Runs are never deleted.
type ValidationRepo interface {
	AppendValidationRun(ctx context.Context, run domain.ValidationRun) error
	ValidationRuns(ctx context.Context, limit int) ([]domain.ValidationRun, error)
}

// Store aggregates the full SignalStore surface.
type Store interface {
	PlayerRepo
	SignalRepo
	PredictionRepo
	ValidationRepo
}
