package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fantasyedge/truevalue/internal/domain"
)

// AppendValidationRun inserts one trial record. The table is append-only:
// no update or delete path exists, so concurrent trial writers only ever
// add rows.
func (s *Store) AppendValidationRun(ctx context.Context, run domain.ValidationRun) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	params, err := json.Marshal(run.Params)
	if err != nil {
		return fmt.Errorf("marshal trial params: %w", err)
	}

	query := `
		INSERT INTO validation_runs
		(id, model_version, trial, label, params, first_gw, last_gw,
		 rmse, mae, spearman, spearman_p, r_squared, precision_at_k,
		 samples, insufficient, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err = s.db.ExecContext(ctx, query,
		run.ID, run.ModelVersion, run.Trial, run.Label, params,
		run.FirstGW, run.LastGW, run.RMSE, run.MAE, run.Spearman,
		run.SpearmanP, run.RSquared, run.PrecisionAtK,
		run.Samples, run.Insufficient, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("append validation run %s: %w", run.ID, err)
	}
	return nil
}

// ValidationRuns returns the most recent runs, newest first.
func (s *Store) ValidationRuns(ctx context.Context, limit int) ([]domain.ValidationRun, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, model_version, trial, label, params, first_gw, last_gw,
		       rmse, mae, spearman, spearman_p, r_squared, precision_at_k,
		       samples, insufficient, created_at
		FROM validation_runs
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := s.db.QueryxContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list validation runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.ValidationRun
	for rows.Next() {
		var run domain.ValidationRun
		var params []byte
		if err := rows.Scan(
			&run.ID, &run.ModelVersion, &run.Trial, &run.Label, &params,
			&run.FirstGW, &run.LastGW, &run.RMSE, &run.MAE, &run.Spearman,
			&run.SpearmanP, &run.RSquared, &run.PrecisionAtK,
			&run.Samples, &run.Insufficient, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan validation run: %w", err)
		}
		if len(params) > 0 {
			if err := json.Unmarshal(params, &run.Params); err != nil {
				return nil, fmt.Errorf("unmarshal trial params: %w", err)
			}
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate validation runs: %w", err)
	}
	return runs, nil
}
