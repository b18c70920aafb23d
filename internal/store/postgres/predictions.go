package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/fantasyedge/truevalue/internal/domain"
)

// UpsertPrediction writes or replaces the prediction for one
// (player, gameweek, model version). Re-running with the same version
// overwrites; a new version supersedes without touching the old rows.
func (s *Store) UpsertPrediction(ctx context.Context, p domain.Prediction) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	multipliers, err := json.Marshal(p.Multipliers)
	if err != nil {
		return fmt.Errorf("marshal multipliers: %w", err)
	}

	query := `
		INSERT INTO predictions
		(player_id, gameweek, model_version, true_value, cost_efficiency,
		 blended_baseline, current_weight, multipliers, caps_triggered, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (player_id, gameweek, model_version) DO UPDATE SET
			true_value = EXCLUDED.true_value,
			cost_efficiency = EXCLUDED.cost_efficiency,
			blended_baseline = EXCLUDED.blended_baseline,
			current_weight = EXCLUDED.current_weight,
			multipliers = EXCLUDED.multipliers,
			caps_triggered = EXCLUDED.caps_triggered,
			created_at = EXCLUDED.created_at`

	_, err = s.db.ExecContext(ctx, query,
		p.PlayerID, p.Gameweek, p.ModelVersion, p.TrueValue, p.CostEfficiency,
		p.BlendedBaseline, p.CurrentWeight, multipliers,
		pq.Array(p.CapsTriggered), p.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert prediction %s gw%d: %w", p.PlayerID, p.Gameweek, err)
	}
	return nil
}

// PredictionsAt returns all predictions for one gameweek and model version.
func (s *Store) PredictionsAt(ctx context.Context, gameweek int, modelVersion string) ([]domain.Prediction, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT player_id, gameweek, model_version, true_value, cost_efficiency,
		       blended_baseline, current_weight, multipliers, caps_triggered, created_at
		FROM predictions
		WHERE gameweek = $1 AND model_version = $2
		ORDER BY player_id ASC`

	rows, err := s.db.QueryxContext(ctx, query, gameweek, modelVersion)
	if err != nil {
		return nil, fmt.Errorf("predictions at gameweek %d: %w", gameweek, err)
	}
	defer rows.Close()

	var predictions []domain.Prediction
	for rows.Next() {
		var p domain.Prediction
		var multipliers []byte
		var caps pq.StringArray
		if err := rows.Scan(
			&p.PlayerID, &p.Gameweek, &p.ModelVersion, &p.TrueValue,
			&p.CostEfficiency, &p.BlendedBaseline, &p.CurrentWeight,
			&multipliers, &caps, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		if err := json.Unmarshal(multipliers, &p.Multipliers); err != nil {
			return nil, fmt.Errorf("unmarshal multipliers: %w", err)
		}
		p.CapsTriggered = caps
		predictions = append(predictions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate predictions: %w", err)
	}
	return predictions, nil
}
