// Package backtest replays historical gameweeks against the prediction
// engine, reconstructing for each gameweek only the data that was visible
// before that gameweek's results were known.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fantasyedge/truevalue/internal/bench"
	"github.com/fantasyedge/truevalue/internal/config"
	"github.com/fantasyedge/truevalue/internal/domain"
	"github.com/fantasyedge/truevalue/internal/engine"
	"github.com/fantasyedge/truevalue/internal/store"
	"github.com/fantasyedge/truevalue/internal/telemetry"
)

// ErrLeakage flags a reconstruction that referenced current-or-future
// gameweek outcomes. This is a programming error, not a data problem: it
// silently corrupts every downstream metric, so the run aborts instead of
// degrading.
var ErrLeakage = errors.New("backtest: reconstruction read outcome data for the target gameweek or later")

// Opts tunes a run beyond the engine parameters.
type Opts struct {
	// Persist writes the per-gameweek predictions through the store,
	// tagged with the run's model version.
	Persist bool
}

// Pair is one prediction matched with the realized outcome of the same
// (player, gameweek).
type Pair struct {
	PlayerID  string
	Gameweek  int
	Predicted float64
	Actual    float64
}

// PeriodResult is the per-gameweek breakdown.
type PeriodResult struct {
	Gameweek int
	Pairs    []Pair
	// Predicted counts players the engine scored; Skipped counts players
	// predicted but absent from the realized rows, or vice versa. Such
	// players are skipped, never zero-filled.
	Predicted int
	Skipped   int
	// Excluded marks a gameweek below the minimum paired-sample guard; it
	// stays in the breakdown but not in aggregate metrics.
	Excluded bool
}

// Results is the full output of one run.
type Results struct {
	RunID   string
	First   int
	Last    int
	Pairs   []Pair // pooled pairs from included gameweeks only
	Periods []PeriodResult
}

// BenchPairs converts the pooled pairs for the metrics calculator. IDs
// combine player and gameweek so pooled top-K precision ranks
// player-gameweek performances, not players.
func (r *Results) BenchPairs() []bench.Pair {
	out := make([]bench.Pair, len(r.Pairs))
	for i, p := range r.Pairs {
		out[i] = bench.Pair{
			ID:        fmt.Sprintf("%s:gw%d", p.PlayerID, p.Gameweek),
			Predicted: p.Predicted,
			Actual:    p.Actual,
		}
	}
	return out
}

// Runner replays a gameweek range. Each Runner owns its engine and holds no
// shared mutable state, so optimizer trials can run runners concurrently.
type Runner struct {
	store  store.Store
	engine *engine.Engine
	params config.Params
	opts   Opts
}

// NewRunner validates params and builds a runner over the given store.
func NewRunner(st store.Store, params config.Params, opts Opts) (*Runner, error) {
	eng, err := engine.New(params)
	if err != nil {
		return nil, err
	}
	return &Runner{store: st, engine: eng, params: params, opts: opts}, nil
}

// Run replays gameweeks first..last inclusive. Gameweeks advance strictly
// serially: gameweek P+1's reconstruction never starts before gameweek P is
// fully observed.
func (r *Runner) Run(ctx context.Context, first, last int) (*Results, error) {
	if first < 1 || last < first {
		return nil, domain.NewValidationError("gameweek_range", "need 1 <= first <= last, got [%d,%d]", first, last)
	}

	started := time.Now()
	results := &Results{
		RunID: uuid.NewString(),
		First: first,
		Last:  last,
	}

	baselines, err := r.store.Baselines(ctx)
	if err != nil {
		return nil, fmt.Errorf("load baselines: %w", err)
	}
	players, err := r.store.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}

	for gw := first; gw <= last; gw++ {
		period, err := r.runPeriod(ctx, gw, players, baselines)
		if err != nil {
			return nil, err
		}
		if !period.Excluded {
			results.Pairs = append(results.Pairs, period.Pairs...)
		}
		results.Periods = append(results.Periods, *period)
		telemetry.BacktestGameweeks.Inc()
	}

	telemetry.BacktestDuration.Observe(time.Since(started).Seconds())
	log.Info().
		Str("run_id", results.RunID).
		Int("first", first).
		Int("last", last).
		Int("pairs", len(results.Pairs)).
		Dur("elapsed", time.Since(started)).
		Msg("backtest complete")

	return results, nil
}

// PredictGameweek reconstructs the pre-gameweek view and scores every
// player for one gameweek. This is the live-prediction entry point for an
// upcoming gameweek; the backtest replays it per period.
func (r *Runner) PredictGameweek(ctx context.Context, gw int) ([]domain.Prediction, error) {
	baselines, err := r.store.Baselines(ctx)
	if err != nil {
		return nil, fmt.Errorf("load baselines: %w", err)
	}
	players, err := r.store.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}
	return r.predictPeriod(ctx, gw, players, baselines)
}

func (r *Runner) predictPeriod(ctx context.Context, gw int, players []domain.Player, baselines map[string]domain.SeasonBaseline) ([]domain.Prediction, error) {
	// Reconstruct: strictly pre-gameweek history plus the outcome-free
	// fixture context for the target gameweek.
	history, err := r.store.SignalsBefore(ctx, gw)
	if err != nil {
		return nil, fmt.Errorf("gameweek %d: load history: %w", gw, err)
	}
	for _, row := range history {
		if row.Gameweek >= gw {
			return nil, fmt.Errorf("gameweek %d: store returned gameweek %d row: %w", gw, row.Gameweek, ErrLeakage)
		}
	}

	fixtures, err := r.store.FixturesAt(ctx, gw)
	if err != nil {
		return nil, fmt.Errorf("gameweek %d: load fixtures: %w", gw, err)
	}
	fixtureByPlayer := make(map[string]domain.FixtureContext, len(fixtures))
	for _, f := range fixtures {
		fixtureByPlayer[f.PlayerID] = f
	}

	views := buildViews(history, r.params.Form.Window)

	// Predict every player with any visible data or a scheduled fixture.
	var predictions []domain.Prediction
	for _, player := range players {
		view := views[player.ID]
		fixture, hasFixture := fixtureByPlayer[player.ID]
		_, hasBaseline := baselines[player.ID]
		if view == nil && !hasFixture && !hasBaseline {
			continue
		}

		in := engine.Input{
			Player:   player,
			Gameweek: gw,
			Status:   domain.StatusUnknown,
		}
		if b, ok := baselines[player.ID]; ok {
			baseline := b
			in.Baseline = &baseline
		}
		if view != nil {
			in.CurrentAvg = view.currentAvg()
			in.CurrentSamples = view.played
			in.RecentPoints = view.recentPoints()
			in.RecentAttackingRate = view.recentRate()
		}
		if hasFixture {
			in.FixtureDifficulty = fixture.Difficulty
			in.Status = fixture.Status
		}

		prediction, err := r.engine.Predict(in)
		if err != nil {
			return nil, fmt.Errorf("gameweek %d: predict %s: %w", gw, player.ID, err)
		}
		predictions = append(predictions, prediction)

		if r.opts.Persist {
			if err := r.store.UpsertPrediction(ctx, prediction); err != nil {
				return nil, fmt.Errorf("gameweek %d: persist prediction %s: %w", gw, player.ID, err)
			}
		}
	}

	return predictions, nil
}

func (r *Runner) runPeriod(ctx context.Context, gw int, players []domain.Player, baselines map[string]domain.SeasonBaseline) (*PeriodResult, error) {
	predictions, err := r.predictPeriod(ctx, gw, players, baselines)
	if err != nil {
		return nil, err
	}
	predicted := make(map[string]float64, len(predictions))
	for _, p := range predictions {
		predicted[p.PlayerID] = p.TrueValue
	}

	// Observe: the realized rows for gameweek P are now allowed reads.
	actuals, err := r.store.SignalsAt(ctx, gw)
	if err != nil {
		return nil, fmt.Errorf("gameweek %d: load actuals: %w", gw, err)
	}

	period := &PeriodResult{Gameweek: gw, Predicted: len(predicted)}
	seen := make(map[string]bool, len(actuals))
	for _, actual := range actuals {
		seen[actual.PlayerID] = true
		value, ok := predicted[actual.PlayerID]
		if !ok {
			period.Skipped++
			continue
		}
		period.Pairs = append(period.Pairs, Pair{
			PlayerID:  actual.PlayerID,
			Gameweek:  gw,
			Predicted: value,
			Actual:    actual.Points,
		})
	}
	for id := range predicted {
		if !seen[id] {
			period.Skipped++
		}
	}

	if len(period.Pairs) < r.params.Backtest.MinPairs {
		period.Excluded = true
		log.Warn().
			Int("gameweek", gw).
			Int("pairs", len(period.Pairs)).
			Int("min_pairs", r.params.Backtest.MinPairs).
			Msg("gameweek below minimum paired sample, excluded from aggregate metrics")
	}

	return period, nil
}
