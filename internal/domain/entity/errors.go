package entity

import (
	"errors"
	"fmt"
)

// ErrValidationFailed is matched by every *ValidationError.
var ErrValidationFailed = errors.New("validation failed")

// ValidationError names the sources-file field that was rejected.
type ValidationError struct {
	Field   string
	Message string
}

// Invalid builds a ValidationError with a formatted message.
func Invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid: " + e.Message
	}
	return "invalid " + e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }
