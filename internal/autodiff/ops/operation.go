// Package ops defines the scalar functions evaluated by computation graph nodes.
//
// Each function maps an ordered list of inputs (the node's preactivation) to
// a single output and reports the partial derivative of that output with
// respect to every input:
//   - Add: a + b (∂/∂a = 1, ∂/∂b = 1)
//   - Multiply: a * b (∂/∂a = b, ∂/∂b = a)
//   - Sum: Σ x_i (∂/∂x_i = 1)
//   - Softmax: exp(x_0) / Σ exp(x_i), numerator first
//   - Normalize: (x_0 - mean) / sqrt(var + eps), main value first
//
// Elementwise activations (ReLU, Sigmoid, Tanh, ...) implement Activation and
// are lifted to single-input functions with Elementwise.
package ops

// Function is a differentiable scalar function of an ordered input list.
type Function interface {
	// Evaluate returns the function value at in.
	Evaluate(in []float64) float64

	// Differentiate returns ∂f/∂in[i] for every i, evaluated at in.
	// The returned slice has the same length as in.
	Differentiate(in []float64) []float64
}

// Activation is a differentiable function of one real variable.
type Activation interface {
	// Name returns the identifier used by ActivationByName.
	Name() string

	// Evaluate returns f(x).
	Evaluate(x float64) float64

	// Differentiate returns f'(x).
	Differentiate(x float64) float64
}

// Elementwise adapts an Activation to a single-input Function.
type Elementwise struct {
	Activation Activation
}

// Evaluate applies the activation to in[0].
func (e Elementwise) Evaluate(in []float64) float64 {
	return e.Activation.Evaluate(in[0])
}

// Differentiate returns the activation derivative at in[0].
func (e Elementwise) Differentiate(in []float64) []float64 {
	return []float64{e.Activation.Differentiate(in[0])}
}
