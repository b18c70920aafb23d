package model

import (
	"github.com/fantasyedge/truevalue/internal/config"
	"github.com/fantasyedge/truevalue/internal/domain"
)

// Blend interpolates between the prior-season baseline and the running
// current-season average. The weight on the current season grows linearly
// with elapsed gameweeks and saturates at 1.0 once the configured full
// adaptation length is reached:
//
//	weight = clamp((gameweek-1)/(K-1), 0, 1)
//
// The weight depends only on elapsed gameweeks and configuration, never on
// outcomes. Two overrides apply before the formula:
//   - no prior-season baseline (a new player): weight is 1 and the blended
//     value is the current average outright;
//   - fewer than MinCurrentSamples played gameweeks: weight is 0, the
//     current average is not yet trusted.
//
// The blended value is floored at Epsilon so downstream ratio multipliers
// never divide by zero.
func Blend(gameweek int, baseline *float64, currentAvg float64, currentSamples int, cfg config.BlendParams) domain.BlendState {
	if baseline == nil {
		return domain.BlendState{
			BlendedBaseline: floor(currentAvg, cfg.Epsilon),
			CurrentWeight:   1.0,
		}
	}

	weight := 0.0
	if gameweek > 1 {
		weight = clamp(float64(gameweek-1)/float64(cfg.FullAdaptation-1), 0, 1)
	}
	if currentSamples < cfg.MinCurrentSamples {
		weight = 0.0
	}

	blended := weight*currentAvg + (1-weight)*(*baseline)
	return domain.BlendState{
		BlendedBaseline: floor(blended, cfg.Epsilon),
		CurrentWeight:   weight,
	}
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func floor(v, min float64) float64 {
	if v < min {
		return min
	}
	return v
}
