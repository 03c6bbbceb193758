package nn

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	// ErrUntrainedModel is returned when parameters are saved or loaded on a
	// network that has none.
	ErrUntrainedModel = errors.New("nn: network has no parameters")

	// ErrParameterCount is returned when a parameter list does not match the
	// network's parameter count.
	ErrParameterCount = errors.New("nn: parameter count mismatch")
)

// ShapeError reports operands whose dimensions do not agree.
//
// Composition operators panic with a *ShapeError when the graph is being
// built. Network constructors and Predict return it as an error.
type ShapeError struct {
	Op      string // Operation that rejected the shapes (e.g., "nn.MatMul")
	Details string // Human-readable description of the mismatch
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: shape mismatch: %s", e.Op, e.Details)
}

func shapePanic(op, format string, args ...any) {
	panic(&ShapeError{Op: op, Details: fmt.Sprintf(format, args...)})
}
