package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fantasyedge/truevalue/internal/domain"
)

// Params is the full parameter document for the prediction engine. A loaded
// Params value is immutable by convention: "live updates" are expressed by
// constructing a new engine with a new Params value, never by mutating one
// that a running computation holds.
type Params struct {
	ModelVersion string           `yaml:"model_version"`
	Blend        BlendParams      `yaml:"blend"`
	Form         FormParams       `yaml:"form"`
	Difficulty   DifficultyParams `yaml:"difficulty"`
	Ratio        RatioParams      `yaml:"ratio"`
	Status       StatusParams     `yaml:"status"`
	GlobalCap    float64          `yaml:"global_cap"`
	Metrics      MetricParams     `yaml:"metrics"`
	Backtest     BacktestParams   `yaml:"backtest"`
	Optimizer    OptimizerParams  `yaml:"optimizer"`
}

// BlendParams controls interpolation between the prior-season baseline and
// the running current-season average.
type BlendParams struct {
	// FullAdaptation is the gameweek count K after which the current-season
	// average carries full weight. Must be >= 2.
	FullAdaptation int `yaml:"full_adaptation_gameweeks"`
	// MinCurrentSamples forces the current weight to zero until this many
	// played gameweeks exist, so a one-game sample is never trusted.
	MinCurrentSamples int `yaml:"min_current_samples"`
	// Epsilon floors the blended baseline to keep downstream ratio
	// multipliers away from division blowups.
	Epsilon float64 `yaml:"epsilon"`
}

// FormParams controls the exponentially decayed recent-form multiplier.
type FormParams struct {
	Alpha  float64 `yaml:"alpha"`  // decay rate, in (0,1)
	Window int     `yaml:"window"` // max recent gameweeks considered
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`
}

// HalfLife reports the number of gameweeks after which an observation's
// decay weight halves: half_life = ln(0.5)/ln(alpha). Exposed for operator
// tooling so alpha can be reasoned about in gameweeks.
func (f FormParams) HalfLife() float64 {
	return math.Log(0.5) / math.Log(f.Alpha)
}

// DifficultyParams controls the fixture-difficulty multiplier. Base must be
// strictly greater than 1 or the sign convention (negative difficulty =>
// multiplier above 1) inverts; validation rejects Base <= 1.
type DifficultyParams struct {
	Base            float64            `yaml:"base"`
	PositionWeights map[string]float64 `yaml:"position_weights"`
	Min             float64            `yaml:"min"`
	Max             float64            `yaml:"max"`
}

// RatioParams controls the underlying-rate normalization multiplier.
type RatioParams struct {
	// MinBaselineRate marks the rate below which the underlying metric is
	// not meaningful for a player (a goalkeeper's attacking involvement)
	// and the multiplier stays neutral.
	MinBaselineRate float64            `yaml:"min_baseline_rate"`
	Dampening       map[string]float64 `yaml:"dampening"` // per position, in (0,1]
	Min             float64            `yaml:"min"`
	Max             float64            `yaml:"max"`
}

// StatusParams maps lineup statuses to multipliers. Unlisted statuses
// (including "unknown") resolve to 1.0.
type StatusParams struct {
	Multipliers map[string]float64 `yaml:"multipliers"`
}

// MetricParams controls accuracy metrics.
type MetricParams struct {
	TopK int `yaml:"top_k"`
}

// BacktestParams controls replay behavior.
type BacktestParams struct {
	// MinPairs is the minimum paired observations a gameweek must
	// contribute before it enters aggregate metrics.
	MinPairs int `yaml:"min_pairs"`
}

// OptimizerParams controls the parameter search.
type OptimizerParams struct {
	MaxTrials int   `yaml:"max_trials"`
	Seed      int64 `yaml:"seed"`
}

// Default returns the shipped parameter document.
func Default() Params {
	return Params{
		ModelVersion: "v1",
		Blend: BlendParams{
			FullAdaptation:    16,
			MinCurrentSamples: 3,
			Epsilon:           0.01,
		},
		Form: FormParams{
			Alpha:  0.75,
			Window: 6,
			Min:    0.5,
			Max:    2.0,
		},
		Difficulty: DifficultyParams{
			Base: 1.05,
			PositionWeights: map[string]float64{
				string(domain.PositionGoalkeeper): 1.1,
				string(domain.PositionDefender):   1.1,
				string(domain.PositionMidfielder): 1.0,
				string(domain.PositionForward):    1.0,
			},
			Min: 0.5,
			Max: 1.8,
		},
		Ratio: RatioParams{
			MinBaselineRate: 0.1,
			Dampening: map[string]float64{
				string(domain.PositionGoalkeeper): 0.3,
				string(domain.PositionDefender):   0.5,
				string(domain.PositionMidfielder): 1.0,
				string(domain.PositionForward):    1.0,
			},
			Min: 0.5,
			Max: 2.5,
		},
		Status: StatusParams{
			Multipliers: map[string]float64{
				domain.StatusGuaranteed.String(): 1.0,
				domain.StatusLikely.String():     0.85,
				domain.StatusUnlikely.String():   0.4,
				domain.StatusExcluded.String():   0.0,
			},
		},
		GlobalCap: 3.0,
		Metrics:   MetricParams{TopK: 20},
		Backtest:  BacktestParams{MinPairs: 10},
		Optimizer: OptimizerParams{MaxTrials: 50, Seed: 1},
	}
}

// Load reads a parameter document from a YAML file and validates it.
func Load(path string) (Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("read params file %s: %w", path, err)
	}
	params := Default()
	if err := yaml.Unmarshal(data, &params); err != nil {
		return Params{}, fmt.Errorf("parse params file %s: %w", path, err)
	}
	if err := params.Validate(); err != nil {
		return Params{}, err
	}
	return params, nil
}

// Validate checks every value against its documented bounds. Out-of-range
// values are rejected with the offending field named, never clamped.
func (p Params) Validate() error {
	if p.ModelVersion == "" {
		return domain.NewValidationError("model_version", "must not be empty")
	}
	if p.Blend.FullAdaptation < 2 {
		return domain.NewValidationError("blend.full_adaptation_gameweeks", "must be >= 2, got %d", p.Blend.FullAdaptation)
	}
	if p.Blend.MinCurrentSamples < 1 {
		return domain.NewValidationError("blend.min_current_samples", "must be >= 1, got %d", p.Blend.MinCurrentSamples)
	}
	if p.Blend.Epsilon <= 0 || p.Blend.Epsilon > 1 {
		return domain.NewValidationError("blend.epsilon", "must be in (0,1], got %g", p.Blend.Epsilon)
	}
	if p.Form.Alpha <= 0 || p.Form.Alpha >= 1 {
		return domain.NewValidationError("form.alpha", "must be in (0,1), got %g", p.Form.Alpha)
	}
	if p.Form.Window < 1 {
		return domain.NewValidationError("form.window", "must be >= 1, got %d", p.Form.Window)
	}
	if err := validateCap("form", p.Form.Min, p.Form.Max); err != nil {
		return err
	}
	if p.Difficulty.Base <= 1 {
		return domain.NewValidationError("difficulty.base", "must be > 1 to preserve the sign convention, got %g", p.Difficulty.Base)
	}
	if p.Difficulty.Base > 1.5 {
		return domain.NewValidationError("difficulty.base", "must be <= 1.5, got %g", p.Difficulty.Base)
	}
	for pos, w := range p.Difficulty.PositionWeights {
		if w < 0 || w > 3 {
			return domain.NewValidationError("difficulty.position_weights."+pos, "must be in [0,3], got %g", w)
		}
	}
	if err := validateCap("difficulty", p.Difficulty.Min, p.Difficulty.Max); err != nil {
		return err
	}
	if p.Ratio.MinBaselineRate <= 0 {
		return domain.NewValidationError("ratio.min_baseline_rate", "must be > 0, got %g", p.Ratio.MinBaselineRate)
	}
	for pos, d := range p.Ratio.Dampening {
		if d <= 0 || d > 1 {
			return domain.NewValidationError("ratio.dampening."+pos, "must be in (0,1], got %g", d)
		}
	}
	if err := validateCap("ratio", p.Ratio.Min, p.Ratio.Max); err != nil {
		return err
	}
	for status, m := range p.Status.Multipliers {
		if _, err := domain.ParseStartStatus(status); err != nil {
			return domain.NewValidationError("status.multipliers."+status, "unknown status")
		}
		if m < 0 || m > 1.5 {
			return domain.NewValidationError("status.multipliers."+status, "must be in [0,1.5], got %g", m)
		}
	}
	if p.GlobalCap < 1 {
		return domain.NewValidationError("global_cap", "must be >= 1, got %g", p.GlobalCap)
	}
	if p.Metrics.TopK < 1 {
		return domain.NewValidationError("metrics.top_k", "must be >= 1, got %d", p.Metrics.TopK)
	}
	if p.Backtest.MinPairs < 1 {
		return domain.NewValidationError("backtest.min_pairs", "must be >= 1, got %d", p.Backtest.MinPairs)
	}
	if p.Optimizer.MaxTrials < 1 || p.Optimizer.MaxTrials > 500 {
		return domain.NewValidationError("optimizer.max_trials", "must be in [1,500], got %d", p.Optimizer.MaxTrials)
	}
	return nil
}

func validateCap(name string, min, max float64) error {
	if min <= 0 {
		return domain.NewValidationError(name+".min", "must be > 0, got %g", min)
	}
	if max <= min {
		return domain.NewValidationError(name+".max", "must be > %s.min (%g), got %g", name, min, max)
	}
	return nil
}

// TunableMap flattens the tunable axes into a stable map, the shape the
// validation-run log stores alongside each trial's metrics.
func (p Params) TunableMap() map[string]float64 {
	return map[string]float64{
		"form.alpha":            p.Form.Alpha,
		"difficulty.base":       p.Difficulty.Base,
		"blend.full_adaptation": float64(p.Blend.FullAdaptation),
		"form.min":              p.Form.Min,
		"form.max":              p.Form.Max,
		"global_cap":            p.GlobalCap,
	}
}
