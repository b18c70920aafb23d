package bench

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func perfectPairs() []Pair {
	return []Pair{
		{ID: "a", Predicted: 2, Actual: 2},
		{ID: "b", Predicted: 5, Actual: 5},
		{ID: "c", Predicted: 8, Actual: 8},
		{ID: "d", Predicted: 11, Actual: 11},
	}
}

func TestCompute_PerfectPredictions(t *testing.T) {
	res := Compute(perfectPairs(), 2)

	assert.False(t, res.Insufficient)
	assert.Equal(t, 4, res.N)
	assert.Equal(t, 0.0, res.RMSE)
	assert.Equal(t, 0.0, res.MAE)
	assert.Equal(t, 1.0, res.Spearman)
	assert.Equal(t, 0.0, res.SpearmanP)
	assert.Equal(t, 1.0, res.RSquared)
	assert.Equal(t, 1.0, res.PrecisionAtK)
}

func TestCompute_InsufficientSample(t *testing.T) {
	for _, pairs := range [][]Pair{nil, {{ID: "a", Predicted: 1, Actual: 2}}} {
		res := Compute(pairs, 5)
		assert.True(t, res.Insufficient)
		assert.Equal(t, 0.0, res.RMSE)
		assert.Equal(t, 0.0, res.Spearman)
	}
}

func TestCompute_ErrorMetrics(t *testing.T) {
	pairs := []Pair{
		{ID: "a", Predicted: 3, Actual: 1},
		{ID: "b", Predicted: 4, Actual: 6},
	}
	res := Compute(pairs, 1)

	assert.InDelta(t, 2.0, res.RMSE, 1e-12)
	assert.InDelta(t, 2.0, res.MAE, 1e-12)
}

func TestCompute_ReversedRanking(t *testing.T) {
	pairs := []Pair{
		{ID: "a", Predicted: 1, Actual: 9},
		{ID: "b", Predicted: 2, Actual: 6},
		{ID: "c", Predicted: 3, Actual: 3},
		{ID: "d", Predicted: 4, Actual: 1},
	}
	res := Compute(pairs, 2)

	assert.Equal(t, -1.0, res.Spearman)
	assert.Equal(t, 0.0, res.SpearmanP)
	assert.Equal(t, 0.0, res.PrecisionAtK)
}

func TestCompute_PValueShrinksWithSampleSize(t *testing.T) {
	small := []Pair{
		{ID: "a", Predicted: 1, Actual: 2},
		{ID: "b", Predicted: 2, Actual: 1},
		{ID: "c", Predicted: 3, Actual: 4},
		{ID: "d", Predicted: 4, Actual: 3},
		{ID: "e", Predicted: 5, Actual: 5},
	}
	large := make([]Pair, 0, len(small)*4)
	for rep := 0; rep < 4; rep++ {
		for i, p := range small {
			p.ID = p.ID + string(rune('0'+rep))
			p.Predicted += float64(rep*len(small) + i)
			p.Actual += float64(rep*len(small) + i)
			large = append(large, p)
		}
	}

	smallRes := Compute(small, 2)
	largeRes := Compute(large, 2)

	assert.Greater(t, smallRes.SpearmanP, 0.0)
	assert.Less(t, largeRes.SpearmanP, smallRes.SpearmanP)
}

func TestSpearman_AverageRankTies(t *testing.T) {
	// Tied predictions split rank mass; correlation stays below 1 even
	// though the ordering otherwise agrees.
	x := []float64{1, 2, 2, 4}
	y := []float64{1, 2, 3, 4}

	rho := spearman(x, y)
	assert.Greater(t, rho, 0.9)
	assert.Less(t, rho, 1.0)
}

func TestPrecisionAtK_TieBreakIsDeterministic(t *testing.T) {
	// Three-way predicted tie at the top; the K=2 cut keeps the lowest IDs.
	pairs := []Pair{
		{ID: "c", Predicted: 5, Actual: 1},
		{ID: "a", Predicted: 5, Actual: 9},
		{ID: "b", Predicted: 5, Actual: 8},
		{ID: "d", Predicted: 1, Actual: 2},
	}

	// Top predicted = {a, b}; top actual = {a, b}. Full overlap, every run.
	for i := 0; i < 10; i++ {
		assert.Equal(t, 1.0, PrecisionAtK(pairs, 2))
	}
}

func TestPrecisionAtK_KLargerThanSample(t *testing.T) {
	pairs := []Pair{
		{ID: "a", Predicted: 1, Actual: 1},
		{ID: "b", Predicted: 2, Actual: 2},
	}
	assert.Equal(t, 1.0, PrecisionAtK(pairs, 10))
}

func TestRSquared_ZeroVarianceActuals(t *testing.T) {
	assert.Equal(t, 0.0, rSquared([]float64{1, 2, 3}, []float64{5, 5, 5}))
}
