package ops

import "gonum.org/v1/gonum/floats"

// Sum returns the sum of any number of inputs. An empty input sums to zero.
//
// Derivative:
//   - ∂(Σ x)/∂x_i = 1
type Sum struct{}

// Evaluate returns Σ in[i].
func (Sum) Evaluate(in []float64) float64 {
	return floats.Sum(in)
}

// Differentiate returns a slice of ones.
func (Sum) Differentiate(in []float64) []float64 {
	d := make([]float64, len(in))
	for i := range d {
		d[i] = 1
	}
	return d
}
