package ops

// Add returns the sum of two inputs.
//
// Derivative:
//   - ∂(a+b)/∂a = 1
//   - ∂(a+b)/∂b = 1
type Add struct{}

// Evaluate returns in[0] + in[1].
func (Add) Evaluate(in []float64) float64 {
	return in[0] + in[1]
}

// Differentiate returns [1, 1].
func (Add) Differentiate([]float64) []float64 {
	return []float64{1, 1}
}
