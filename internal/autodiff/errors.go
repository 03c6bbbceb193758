package autodiff

import "errors"

// Sentinel errors returned by graph evaluation.
var (
	// ErrUnsetInput is returned when an Input node is activated before Set.
	ErrUnsetInput = errors.New("autodiff: input node has no value")

	// ErrLeafDerivative is returned when a local derivative is requested
	// from a node without incoming nodes.
	ErrLeafDerivative = errors.New("autodiff: leaf node has no local derivative")

	// ErrNotIncoming is returned by Differentiate and Backprop when the
	// requested node does not feed the receiver.
	ErrNotIncoming = errors.New("autodiff: node is not an incoming node")
)
