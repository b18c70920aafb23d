package model

import (
	"math"

	"github.com/fantasyedge/truevalue/internal/config"
)

// FormMultiplier weighs a player's recent scoring against their blended
// baseline using exponentially decaying recency weights. recentPoints is
// ordered newest first; the i-th most recent observation carries weight
// alpha^i, normalized over however many observations exist (up to the
// configured window). Operators tune alpha via its half-life:
// half_life = ln(0.5)/ln(alpha), see config.FormParams.HalfLife.
//
// No recent observations, or a degenerate baseline, yields exactly 1.0.
// The returned bool reports whether the configured cap clipped the result.
func FormMultiplier(recentPoints []float64, blendedBaseline float64, cfg config.FormParams) (float64, bool) {
	if len(recentPoints) == 0 {
		return 1.0, false
	}
	if blendedBaseline <= minMeaningfulBaseline {
		return 1.0, false
	}

	window := recentPoints
	if len(window) > cfg.Window {
		window = window[:cfg.Window]
	}

	var weighted, totalWeight float64
	for i, points := range window {
		w := math.Pow(cfg.Alpha, float64(i))
		weighted += w * points
		totalWeight += w
	}
	rawForm := weighted / totalWeight

	return capped(rawForm/blendedBaseline, cfg.Min, cfg.Max)
}

// minMeaningfulBaseline guards the division in the form and ratio models.
// It matches the default blend epsilon, which floors blended baselines at
// the same value.
const minMeaningfulBaseline = 0.01

func capped(v, min, max float64) (float64, bool) {
	if v < min {
		return min, true
	}
	if v > max {
		return max, true
	}
	return v, false
}
