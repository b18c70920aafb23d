package model

import (
	"github.com/fantasyedge/truevalue/internal/config"
	"github.com/fantasyedge/truevalue/internal/domain"
)

// RatioMultiplier compares a player's recent underlying-performance rate
// (expected goal involvement per appearance) to their own prior-season
// baseline rate and converts the ratio into a dampened multiplier:
//
//	multiplier = 1 + (recent/baseline - 1) * dampening[position]
//
// Dampening in (0,1] shrinks the swing for positions where the underlying
// signal is weak; 1 means full effect. The multiplier stays exactly neutral
// when either rate is missing or when the baseline rate sits below
// MinBaselineRate: a goalkeeper's near-zero attacking involvement must not
// turn into a division blowup. The bool reports cap clipping.
func RatioMultiplier(recentRate, baselineRate *float64, position domain.Position, cfg config.RatioParams) (float64, bool) {
	if recentRate == nil || baselineRate == nil {
		return 1.0, false
	}
	if *baselineRate < cfg.MinBaselineRate {
		return 1.0, false
	}

	dampening, ok := cfg.Dampening[string(position)]
	if !ok {
		dampening = 1.0
	}

	rawRatio := *recentRate / *baselineRate
	return capped(1+(rawRatio-1)*dampening, cfg.Min, cfg.Max)
}
