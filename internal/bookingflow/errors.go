package bookingflow

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoAvailability signals that the chosen staff/date/duration
	// combination yields zero bookable slots. Recoverable by picking a
	// different day or member.
	ErrNoAvailability = errors.New("no available slots")

	// ErrInvalidStep is returned when a step method is called from the
	// wrong state, or a backward move targets a step that was never
	// completed.
	ErrInvalidStep = errors.New("step not permitted from current state")
)

// FieldError names a single offending input field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError rejects malformed or incomplete input before any
// store access, one entry per offending field.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "bookingflow: validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Reason))
	}
	return "bookingflow: validation failed: " + strings.Join(parts, "; ")
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Reason: reason}}}
}

// AsValidation unwraps a *ValidationError if err carries one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
