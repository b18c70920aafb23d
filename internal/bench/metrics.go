// Package bench scores paired (prediction, actual) sequences: error
// metrics, rank correlation and top-K precision.
package bench

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// Pair is one prediction matched with its realized outcome.
type Pair struct {
	ID        string  `json:"id"`
	Predicted float64 `json:"predicted"`
	Actual    float64 `json:"actual"`
}

// Result holds the accuracy metrics for one paired sample. When fewer than
// two pairs exist the Insufficient sentinel is set and every metric is
// zero-valued; correlation on one point would only produce NaNs.
type Result struct {
	RMSE         float64 `json:"rmse"`
	MAE          float64 `json:"mae"`
	Spearman     float64 `json:"spearman"`
	SpearmanP    float64 `json:"spearman_p"`
	RSquared     float64 `json:"r_squared"`
	PrecisionAtK float64 `json:"precision_at_k"`
	N            int     `json:"n"`
	K            int     `json:"k"`
	Insufficient bool    `json:"insufficient"`
}

// Compute calculates all metrics over the pooled pairs. k is the top-K
// size for the precision metric; it is reduced to n when the sample is
// smaller.
func Compute(pairs []Pair, k int) Result {
	n := len(pairs)
	if n < 2 {
		return Result{N: n, K: k, Insufficient: true}
	}

	var sumSq, sumAbs float64
	predicted := make([]float64, n)
	actual := make([]float64, n)
	for i, p := range pairs {
		diff := p.Predicted - p.Actual
		sumSq += diff * diff
		sumAbs += math.Abs(diff)
		predicted[i] = p.Predicted
		actual[i] = p.Actual
	}

	rho := spearman(predicted, actual)

	return Result{
		RMSE:         math.Sqrt(sumSq / float64(n)),
		MAE:          sumAbs / float64(n),
		Spearman:     rho,
		SpearmanP:    spearmanPValue(rho, n),
		RSquared:     rSquared(predicted, actual),
		PrecisionAtK: PrecisionAtK(pairs, k),
		N:            n,
		K:            k,
	}
}

// PrecisionAtK is the overlap fraction between the top-K IDs by prediction
// and the top-K IDs by actual outcome. Ties at the K-th boundary break
// deterministically: value descending, then ID ascending.
func PrecisionAtK(pairs []Pair, k int) float64 {
	if k < 1 || len(pairs) == 0 {
		return 0
	}
	if k > len(pairs) {
		k = len(pairs)
	}

	topPredicted := topIDs(pairs, k, func(p Pair) float64 { return p.Predicted })
	topActual := topIDs(pairs, k, func(p Pair) float64 { return p.Actual })

	overlap := 0
	for id := range topPredicted {
		if topActual[id] {
			overlap++
		}
	}
	return float64(overlap) / float64(k)
}

func topIDs(pairs []Pair, k int, value func(Pair) float64) map[string]bool {
	sorted := make([]Pair, len(pairs))
	copy(sorted, pairs)
	sort.SliceStable(sorted, func(i, j int) bool {
		vi, vj := value(sorted[i]), value(sorted[j])
		if vi != vj {
			return vi > vj
		}
		return sorted[i].ID < sorted[j].ID
	})

	top := make(map[string]bool, k)
	for _, p := range sorted[:k] {
		top[p.ID] = true
	}
	return top
}

// spearman computes rank correlation as the Pearson correlation of the two
// rank vectors, with tied values assigned their average rank.
func spearman(x, y []float64) float64 {
	return pearson(ranks(x), ranks(y))
}

// spearmanPValue is the two-sided p-value under the t-approximation with
// n-2 degrees of freedom.
func spearmanPValue(rho float64, n int) float64 {
	if n < 3 {
		return 1.0
	}
	if math.Abs(rho) >= 1 {
		return 0.0
	}
	t := rho * math.Sqrt(float64(n-2)/(1-rho*rho))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}
	return 2 * dist.Survival(math.Abs(t))
}

// ranks assigns 1-based ranks with average-rank tie handling.
func ranks(values []float64) []float64 {
	n := len(values)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return values[idx[a]] < values[idx[b]]
	})

	ranked := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && values[idx[j+1]] == values[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranked[idx[k]] = avg
		}
		i = j + 1
	}
	return ranked
}

func pearson(x, y []float64) float64 {
	n := float64(len(x))
	var sumX, sumY float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var num, varX, varY float64
	for i := range x {
		dx, dy := x[i]-meanX, y[i]-meanY
		num += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	denom := math.Sqrt(varX * varY)
	if denom == 0 {
		return 0
	}
	return num / denom
}

// rSquared measures how much of the actual outcome variance the
// predictions explain. A zero-variance actual sequence yields 0.
func rSquared(predicted, actual []float64) float64 {
	var mean float64
	for _, a := range actual {
		mean += a
	}
	mean /= float64(len(actual))

	var ssRes, ssTot float64
	for i := range actual {
		res := actual[i] - predicted[i]
		tot := actual[i] - mean
		ssRes += res * res
		ssTot += tot * tot
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}
