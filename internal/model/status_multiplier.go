package model

import (
	"github.com/fantasyedge/truevalue/internal/config"
	"github.com/fantasyedge/truevalue/internal/domain"
)

// StatusMultiplier is a pure passthrough lookup from the lineup status to
// its configured multiplier. Statuses without a configured value, including
// StatusUnknown, resolve to 1.0. Manual overrides from the lineup
// collaborator are resolved before the status reaches the engine, so no
// precedence logic lives here.
func StatusMultiplier(status domain.StartStatus, cfg config.StatusParams) float64 {
	if m, ok := cfg.Multipliers[status.String()]; ok {
		return m
	}
	return 1.0
}
