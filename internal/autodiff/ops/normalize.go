package ops

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Normalize standardizes the first input against the population statistics
// of all inputs.
//
// Forward (n inputs, x_0 is the main value):
//
//	mean = Σ x / n
//	sd   = sqrt(Σ (x - mean)² / n + eps)
//	out  = (x_0 - mean) / sd
//
// Derivative:
//   - ∂out/∂x_0 = (n-1)/(n·sd) - (x_0-mean)² / (n·sd³)
//   - ∂out/∂x_k = -1/(n·sd) - (x_0-mean)(x_k-mean) / (n·sd³), k > 0
type Normalize struct {
	Epsilon float64
}

// Evaluate returns the standardized main value.
func (f Normalize) Evaluate(in []float64) float64 {
	mean, sd := f.moments(in)
	return (in[0] - mean) / sd
}

// Differentiate returns the partials of the standardized main value.
func (f Normalize) Differentiate(in []float64) []float64 {
	mean, sd := f.moments(in)
	n := float64(len(in))
	main := in[0] - mean
	cube := n * sd * sd * sd

	d := make([]float64, len(in))
	d[0] = (n-1)/(n*sd) - main*main/cube
	for k := 1; k < len(in); k++ {
		d[k] = -1/(n*sd) - main*(in[k]-mean)/cube
	}
	return d
}

func (f Normalize) moments(in []float64) (mean, sd float64) {
	mean, variance := stat.PopMeanVariance(in, nil)
	return mean, math.Sqrt(variance + f.Epsilon)
}
