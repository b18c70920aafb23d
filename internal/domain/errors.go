package domain

import "fmt"

// ValidationError reports a missing required field or an out-of-range
// configuration value. It is fatal to the call that produced it; callers
// must surface it, never default around it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for the named field.
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
