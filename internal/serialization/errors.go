package serialization

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrInvalidFormat = errors.New("invalid parameter file")
	ErrNonFinite     = errors.New("parameter value is NaN or infinite")
)

// ValidationError reports the position of an invalid parameter value.
type ValidationError struct {
	Index int     // Position in the parameter list
	Value float64 // Offending value
	Err   error   // Underlying sentinel
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("parameter %d (%v): %v", e.Index, e.Value, e.Err)
}

// Unwrap returns the underlying sentinel error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
