package ops

import "math"

// GELU is the Gaussian Error Linear Unit in its tanh approximation.
//
// Forward:
//
//	u       = sqrt(2/π) * (x + 0.044715 x³)
//	GELU(x) = 0.5 * x * (1 + tanh(u))
//
// Derivative:
//
//	0.5 * (1 + tanh(u)) + 0.5 * x * (1 - tanh²(u)) * sqrt(2/π) * (1 + 3·0.044715 x²)
type GELU struct{}

const (
	geluCoeff = 0.044715
)

var geluScale = math.Sqrt(2 / math.Pi)

// Name returns "gelu".
func (GELU) Name() string { return "gelu" }

// Evaluate returns the tanh-approximated GELU of x.
func (GELU) Evaluate(x float64) float64 {
	u := geluScale * (x + geluCoeff*x*x*x)
	return 0.5 * x * (1 + math.Tanh(u))
}

// Differentiate returns the exact derivative of the tanh approximation.
func (GELU) Differentiate(x float64) float64 {
	u := geluScale * (x + geluCoeff*x*x*x)
	t := math.Tanh(u)
	du := geluScale * (1 + 3*geluCoeff*x*x)
	return 0.5*(1+t) + 0.5*x*(1-t*t)*du
}
