package ops

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Softmax returns the softmax probability of the first input among all inputs.
//
// Forward:
//
//	softmax(x)_0 = exp(x_0 - max(x)) / Σ_j exp(x_j - max(x))
//
// Derivative (o = softmax(x)_0, p_j = softmax(x)_j):
//   - ∂o/∂x_0 = o * (1 - o)
//   - ∂o/∂x_j = -p_j * o, j > 0
//
// Inputs equal to -Inf receive zero probability, which is how causal masks
// are expressed.
type Softmax struct{}

// Evaluate returns the probability of in[0].
func (Softmax) Evaluate(in []float64) float64 {
	return probabilities(in)[0]
}

// Differentiate returns the partials of the in[0] probability.
func (Softmax) Differentiate(in []float64) []float64 {
	p := probabilities(in)
	o := p[0]
	d := make([]float64, len(in))
	d[0] = o * (1 - o)
	for j := 1; j < len(in); j++ {
		d[j] = -p[j] * o
	}
	return d
}

// probabilities returns the max-shifted softmax of in.
func probabilities(in []float64) []float64 {
	shift := floats.Max(in)
	p := make([]float64, len(in))
	for i, x := range in {
		p[i] = math.Exp(x - shift)
	}
	floats.Scale(1/floats.Sum(p), p)
	return p
}
