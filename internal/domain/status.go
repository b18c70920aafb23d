package domain

import "fmt"

// StartStatus is the categorical lineup signal for a player in a gameweek.
// It is sourced from an external lineup-prediction collaborator; manual
// overrides are resolved upstream and arrive here as the final value.
type StartStatus int

const (
	StatusUnknown StartStatus = iota
	StatusGuaranteed
	StatusLikely
	StatusUnlikely
	StatusExcluded
)

var statusNames = map[StartStatus]string{
	StatusUnknown:    "unknown",
	StatusGuaranteed: "guaranteed",
	StatusLikely:     "likely",
	StatusUnlikely:   "unlikely",
	StatusExcluded:   "excluded",
}

func (s StartStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseStartStatus maps a stored status string back to its enum value.
func ParseStartStatus(s string) (StartStatus, error) {
	for status, name := range statusNames {
		if name == s {
			return status, nil
		}
	}
	return StatusUnknown, fmt.Errorf("unknown start status %q", s)
}
