package model

import (
    "errors"
    "fmt"
)

// ValidationError marks input that is malformed or violates a business
// policy (wrong email domain for a ticket tier, attendee count below the
// minimum, unknown enum value).  Handlers surface the reason verbatim to
// the caller and never retry.
type ValidationError struct {
    Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Invalidf builds a ValidationError with a formatted reason.
func Invalidf(format string, args ...interface{}) error {
    return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
    var ve *ValidationError
    return errors.As(err, &ve)
}
