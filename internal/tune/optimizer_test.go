package tune

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fantasyedge/truevalue/internal/config"
	"github.com/fantasyedge/truevalue/internal/domain"
	"github.com/fantasyedge/truevalue/internal/store"
)

func seededStore(t *testing.T) *store.Memory {
	t.Helper()
	m := store.NewMemory()
	rate := 0.5
	for i, id := range []string{"p1", "p2", "p3", "p4"} {
		m.AddPlayer(domain.Player{ID: id, Name: id, Position: domain.PositionMidfielder, Price: 7.5, Active: true})
		m.AddBaseline(domain.SeasonBaseline{PlayerID: id, Season: "2024-25", PointsPerGame: float64(3 + i), AttackingRate: 0.5})
		for gw := 1; gw <= 8; gw++ {
			diff := float64((gw % 5) - 2)
			m.AddSignal(domain.GameweekSignal{
				PlayerID:          id,
				Gameweek:          gw,
				Points:            float64((i*gw)%9) + 1,
				Minutes:           90,
				AttackingRate:     &rate,
				FixtureDifficulty: &diff,
				Status:            domain.StatusGuaranteed,
			})
		}
	}
	return m
}

func tuneParams() config.Params {
	params := config.Default()
	params.Backtest.MinPairs = 1
	params.Optimizer.MaxTrials = 20
	params.Optimizer.Seed = 7
	return params
}

func TestOptimize_BaselineIsTrialZero(t *testing.T) {
	opt, err := NewOptimizer(seededStore(t), tuneParams())
	require.NoError(t, err)

	outcome, err := opt.Optimize(context.Background(), 2, 8)
	require.NoError(t, err)

	require.NotEmpty(t, outcome.Trials)
	assert.Equal(t, 0, outcome.Trials[0].Index)
	assert.Equal(t, "baseline", outcome.Trials[0].Label)
	assert.Equal(t, tuneParams().Form.Alpha, outcome.Trials[0].Params.Form.Alpha)
}

func TestOptimize_RespectsTrialBudget(t *testing.T) {
	params := tuneParams()
	params.Optimizer.MaxTrials = 3

	opt, err := NewOptimizer(seededStore(t), params)
	require.NoError(t, err)

	outcome, err := opt.Optimize(context.Background(), 2, 8)
	require.NoError(t, err)

	assert.Len(t, outcome.Trials, 3)
}

func TestOptimize_DeterministicAcrossRuns(t *testing.T) {
	params := tuneParams()

	run := func() *Outcome {
		opt, err := NewOptimizer(seededStore(t), params)
		require.NoError(t, err)
		outcome, err := opt.Optimize(context.Background(), 2, 8)
		require.NoError(t, err)
		return outcome
	}

	first := run()
	second := run()

	require.Len(t, second.Trials, len(first.Trials))
	for i := range first.Trials {
		assert.Equal(t, first.Trials[i].Label, second.Trials[i].Label)
		assert.Equal(t, first.Trials[i].Result.RMSE, second.Trials[i].Result.RMSE)
	}
	assert.Equal(t, first.BestTrial, second.BestTrial)
	assert.Equal(t, first.BestRMSE, second.BestRMSE)
	assert.Equal(t, first.BestParams.Form.Alpha, second.BestParams.Form.Alpha)
}

func TestOptimize_BestNeverWorseThanBaseline(t *testing.T) {
	opt, err := NewOptimizer(seededStore(t), tuneParams())
	require.NoError(t, err)

	outcome, err := opt.Optimize(context.Background(), 2, 8)
	require.NoError(t, err)

	assert.LessOrEqual(t, outcome.BestRMSE, outcome.Trials[0].Result.RMSE)
	require.NoError(t, outcome.BestParams.Validate())
}

func TestOptimize_RecordsEveryTrial(t *testing.T) {
	m := seededStore(t)
	opt, err := NewOptimizer(m, tuneParams())
	require.NoError(t, err)

	outcome, err := opt.Optimize(context.Background(), 2, 8)
	require.NoError(t, err)

	runs, err := m.ValidationRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, len(outcome.Trials))

	assert.Equal(t, 0, runs[0].Trial)
	assert.Equal(t, "baseline", runs[0].Label)
	assert.Equal(t, 2, runs[0].FirstGW)
	assert.Equal(t, 8, runs[0].LastGW)
	assert.Contains(t, runs[0].Params, "form.alpha")
	assert.NotEmpty(t, runs[0].ID)
}

func TestOptimize_SkipsOutOfBoundsPerturbations(t *testing.T) {
	params := tuneParams()
	params.Form.Alpha = 0.92 // alpha+0.10 would leave (0,1)

	opt, err := NewOptimizer(seededStore(t), params)
	require.NoError(t, err)

	outcome, err := opt.Optimize(context.Background(), 2, 8)
	require.NoError(t, err)

	for _, trial := range outcome.Trials {
		assert.NotEqual(t, "alpha+0.10", trial.Label)
		require.NoError(t, trial.Params.Validate())
	}
}

func TestOptimize_EmptySampleFails(t *testing.T) {
	opt, err := NewOptimizer(store.NewMemory(), tuneParams())
	require.NoError(t, err)

	_, err = opt.Optimize(context.Background(), 2, 4)
	require.Error(t, err)
}

func TestNewOptimizer_RejectsInvalidBaseline(t *testing.T) {
	params := tuneParams()
	params.GlobalCap = 0.5

	_, err := NewOptimizer(store.NewMemory(), params)
	require.Error(t, err)
}
