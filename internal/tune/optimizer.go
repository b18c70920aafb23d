// Package tune searches a bounded parameter space for configurations that
// lower backtest error, recording every trial to the append-only
// validation-run log.
package tune

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fantasyedge/truevalue/internal/backtest"
	"github.com/fantasyedge/truevalue/internal/bench"
	"github.com/fantasyedge/truevalue/internal/config"
	"github.com/fantasyedge/truevalue/internal/domain"
	"github.com/fantasyedge/truevalue/internal/store"
	"github.com/fantasyedge/truevalue/internal/telemetry"
)

// Trial is one evaluated candidate.
type Trial struct {
	Index  int
	Label  string
	Params config.Params
	Result bench.Result
}

// Outcome is the full search result. Trials is ordered by evaluation order
// and identical across runs with the same seed and budget.
type Outcome struct {
	BestParams config.Params
	BestRMSE   float64
	BestTrial  int
	Trials     []Trial
}

// Optimizer evaluates candidate parameter sets with fresh backtest runners.
type Optimizer struct {
	store store.Store
	base  config.Params
}

// NewOptimizer builds an optimizer around the current baseline parameters.
// The baseline is always trial 0, so a search can never silently lose to
// the configuration already in production.
func NewOptimizer(st store.Store, base config.Params) (*Optimizer, error) {
	if err := base.Validate(); err != nil {
		return nil, err
	}
	return &Optimizer{store: st, base: base}, nil
}

// Optimize evaluates candidates over the gameweek range until the trial
// budget is exhausted. Candidate generation is deterministic given the
// configured seed: the baseline first, then one-at-a-time perturbations of
// each tunable axis in declared order, then seeded random combinations to
// fill the remaining budget. RMSE ties keep the earlier trial.
func (o *Optimizer) Optimize(ctx context.Context, first, last int) (*Outcome, error) {
	candidates := o.generateCandidates()

	outcome := &Outcome{BestTrial: -1}
	for i, cand := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		runner, err := backtest.NewRunner(o.store, cand.params, backtest.Opts{})
		if err != nil {
			return nil, fmt.Errorf("trial %d (%s): %w", i, cand.label, err)
		}
		results, err := runner.Run(ctx, first, last)
		if err != nil {
			return nil, fmt.Errorf("trial %d (%s): %w", i, cand.label, err)
		}
		metrics := bench.Compute(results.BenchPairs(), cand.params.Metrics.TopK)
		telemetry.OptimizerTrials.Inc()

		trial := Trial{Index: i, Label: cand.label, Params: cand.params, Result: metrics}
		outcome.Trials = append(outcome.Trials, trial)

		if err := o.record(ctx, trial, first, last); err != nil {
			return nil, err
		}

		if metrics.Insufficient {
			log.Warn().Int("trial", i).Str("label", cand.label).Msg("trial sample insufficient, excluded from best tracking")
			continue
		}
		if outcome.BestTrial < 0 || metrics.RMSE < outcome.BestRMSE {
			outcome.BestTrial = i
			outcome.BestRMSE = metrics.RMSE
			outcome.BestParams = cand.params
		}

		log.Debug().
			Int("trial", i).
			Str("label", cand.label).
			Float64("rmse", metrics.RMSE).
			Float64("spearman", metrics.Spearman).
			Msg("trial evaluated")
	}

	if outcome.BestTrial < 0 {
		return outcome, fmt.Errorf("no trial produced a sufficient sample over gameweeks [%d,%d]", first, last)
	}
	return outcome, nil
}

func (o *Optimizer) record(ctx context.Context, trial Trial, first, last int) error {
	run := domain.ValidationRun{
		ID:           uuid.NewString(),
		ModelVersion: trial.Params.ModelVersion,
		Trial:        trial.Index,
		Label:        trial.Label,
		Params:       trial.Params.TunableMap(),
		FirstGW:      first,
		LastGW:       last,
		RMSE:         trial.Result.RMSE,
		MAE:          trial.Result.MAE,
		Spearman:     trial.Result.Spearman,
		SpearmanP:    trial.Result.SpearmanP,
		RSquared:     trial.Result.RSquared,
		PrecisionAtK: trial.Result.PrecisionAtK,
		Samples:      trial.Result.N,
		Insufficient: trial.Result.Insufficient,
		CreatedAt:    time.Now().UTC(),
	}
	if err := o.store.AppendValidationRun(ctx, run); err != nil {
		return fmt.Errorf("trial %d: append validation run: %w", trial.Index, err)
	}
	return nil
}

type candidate struct {
	label  string
	params config.Params
}

// generateCandidates builds the deterministic trial list. Perturbed
// candidates that leave documented bounds are skipped, not clamped, so the
// search never evaluates a configuration the validator would reject.
func (o *Optimizer) generateCandidates() []candidate {
	budget := o.base.Optimizer.MaxTrials
	candidates := []candidate{{label: "baseline", params: o.base}}

	for _, p := range o.perturbations() {
		if len(candidates) >= budget {
			return candidates[:budget]
		}
		if p.params.Validate() != nil {
			continue
		}
		candidates = append(candidates, p)
	}

	rng := rand.New(rand.NewSource(o.base.Optimizer.Seed))
	for attempts := 0; len(candidates) < budget && attempts < budget*10; attempts++ {
		p := o.base
		p.Form.Alpha = 0.50 + rng.Float64()*0.45
		p.Difficulty.Base = 1.01 + rng.Float64()*0.11
		p.Blend.FullAdaptation = 4 + rng.Intn(27)
		p.GlobalCap = 1.5 + rng.Float64()*2.5
		if p.Validate() != nil {
			continue
		}
		candidates = append(candidates, candidate{
			label:  fmt.Sprintf("random-%d", len(candidates)),
			params: p,
		})
	}

	return candidates
}

// perturbations yields the systematic one-at-a-time steps, axis by axis.
func (o *Optimizer) perturbations() []candidate {
	var out []candidate
	add := func(label string, mutate func(*config.Params)) {
		p := o.base
		mutate(&p)
		out = append(out, candidate{label: label, params: p})
	}

	for _, step := range []float64{0.05, 0.10} {
		step := step
		add(fmt.Sprintf("alpha+%.2f", step), func(p *config.Params) { p.Form.Alpha += step })
		add(fmt.Sprintf("alpha-%.2f", step), func(p *config.Params) { p.Form.Alpha -= step })
	}
	for _, step := range []float64{0.01, 0.02} {
		step := step
		add(fmt.Sprintf("base+%.2f", step), func(p *config.Params) { p.Difficulty.Base += step })
		add(fmt.Sprintf("base-%.2f", step), func(p *config.Params) { p.Difficulty.Base -= step })
	}
	for _, step := range []int{2, 4} {
		step := step
		add(fmt.Sprintf("adaptation+%d", step), func(p *config.Params) { p.Blend.FullAdaptation += step })
		add(fmt.Sprintf("adaptation-%d", step), func(p *config.Params) { p.Blend.FullAdaptation -= step })
	}
	for _, step := range []float64{0.1, 0.2} {
		step := step
		add(fmt.Sprintf("formmax+%.2f", step), func(p *config.Params) { p.Form.Max += step })
		add(fmt.Sprintf("formmax-%.2f", step), func(p *config.Params) { p.Form.Max -= step })
	}
	for _, step := range []float64{0.25, 0.5} {
		step := step
		add(fmt.Sprintf("globalcap+%.2f", step), func(p *config.Params) { p.GlobalCap += step })
		add(fmt.Sprintf("globalcap-%.2f", step), func(p *config.Params) { p.GlobalCap -= step })
	}

	return out
}
