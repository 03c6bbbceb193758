package ops

// Multiply returns the product of two inputs.
//
// Derivative:
//   - ∂(a*b)/∂a = b
//   - ∂(a*b)/∂b = a
type Multiply struct{}

// Evaluate returns in[0] * in[1].
func (Multiply) Evaluate(in []float64) float64 {
	return in[0] * in[1]
}

// Differentiate returns [in[1], in[0]].
func (Multiply) Differentiate(in []float64) []float64 {
	return []float64{in[1], in[0]}
}
