package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fantasyedge/truevalue/internal/domain"
)

// ListPlayers returns all active players ordered by ID.
func (s *Store) ListPlayers(ctx context.Context) ([]domain.Player, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, name, position, price, active
		FROM players
		WHERE active
		ORDER BY id`

	var players []domain.Player
	if err := s.db.SelectContext(ctx, &players, query); err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return players, nil
}

// GetPlayer returns one player, nil when absent.
func (s *Store) GetPlayer(ctx context.Context, id string) (*domain.Player, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, name, position, price, active
		FROM players
		WHERE id = $1`

	var player domain.Player
	if err := s.db.GetContext(ctx, &player, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get player %s: %w", id, err)
	}
	return &player, nil
}

const signalColumns = `player_id, gameweek, points, minutes, attacking_rate,
	       fixture_difficulty, status, status_overridden`

// SignalsBefore returns signal rows strictly below the gameweek, ordered by
// gameweek ascending. The strict inequality lives in the query itself so a
// reconstruction can never see the target gameweek's outcomes.
func (s *Store) SignalsBefore(ctx context.Context, gameweek int) ([]domain.GameweekSignal, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT ` + signalColumns + `
		FROM gameweek_signals
		WHERE gameweek < $1
		ORDER BY gameweek ASC, player_id ASC`

	rows, err := s.db.QueryxContext(ctx, query, gameweek)
	if err != nil {
		return nil, fmt.Errorf("signals before gameweek %d: %w", gameweek, err)
	}
	defer rows.Close()

	return scanSignals(rows)
}

// SignalsAt returns the rows for exactly one gameweek.
func (s *Store) SignalsAt(ctx context.Context, gameweek int) ([]domain.GameweekSignal, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT ` + signalColumns + `
		FROM gameweek_signals
		WHERE gameweek = $1
		ORDER BY player_id ASC`

	rows, err := s.db.QueryxContext(ctx, query, gameweek)
	if err != nil {
		return nil, fmt.Errorf("signals at gameweek %d: %w", gameweek, err)
	}
	defer rows.Close()

	return scanSignals(rows)
}

// FixturesAt returns the outcome-free pre-gameweek columns for one
// gameweek. Points, minutes and rates are not selected here.
func (s *Store) FixturesAt(ctx context.Context, gameweek int) ([]domain.FixtureContext, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT player_id, gameweek, fixture_difficulty, status
		FROM gameweek_signals
		WHERE gameweek = $1
		ORDER BY player_id ASC`

	rows, err := s.db.QueryxContext(ctx, query, gameweek)
	if err != nil {
		return nil, fmt.Errorf("fixtures at gameweek %d: %w", gameweek, err)
	}
	defer rows.Close()

	var fixtures []domain.FixtureContext
	for rows.Next() {
		var f domain.FixtureContext
		var status string
		if err := rows.Scan(&f.PlayerID, &f.Gameweek, &f.Difficulty, &status); err != nil {
			return nil, fmt.Errorf("scan fixture: %w", err)
		}
		parsed, err := domain.ParseStartStatus(status)
		if err != nil {
			return nil, fmt.Errorf("fixture %s gw%d: %w", f.PlayerID, f.Gameweek, err)
		}
		f.Status = parsed
		fixtures = append(fixtures, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fixtures: %w", err)
	}
	return fixtures, nil
}

// Baselines returns prior-season baselines keyed by player ID.
func (s *Store) Baselines(ctx context.Context) (map[string]domain.SeasonBaseline, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT player_id, season, points_per_game, attacking_rate
		FROM season_baselines`

	var baselines []domain.SeasonBaseline
	if err := s.db.SelectContext(ctx, &baselines, query); err != nil {
		return nil, fmt.Errorf("load baselines: %w", err)
	}

	out := make(map[string]domain.SeasonBaseline, len(baselines))
	for _, b := range baselines {
		out[b.PlayerID] = b
	}
	return out, nil
}

func scanSignals(rows *sqlx.Rows) ([]domain.GameweekSignal, error) {
	var signals []domain.GameweekSignal
	for rows.Next() {
		var sig domain.GameweekSignal
		var status string
		if err := rows.Scan(
			&sig.PlayerID, &sig.Gameweek, &sig.Points, &sig.Minutes,
			&sig.AttackingRate, &sig.FixtureDifficulty, &status,
			&sig.StatusOverridden); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		parsed, err := domain.ParseStartStatus(status)
		if err != nil {
			return nil, fmt.Errorf("signal %s gw%d: %w", sig.PlayerID, sig.Gameweek, err)
		}
		sig.Status = parsed
		signals = append(signals, sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signals: %w", err)
	}
	return signals, nil
}
