package ops

import (
	"fmt"
	"math"
	"strings"
)

// Identity returns its input unchanged.
type Identity struct{}

// Name returns "identity".
func (Identity) Name() string { return "identity" }

// Evaluate returns x.
func (Identity) Evaluate(x float64) float64 { return x }

// Differentiate returns 1.
func (Identity) Differentiate(float64) float64 { return 1 }

// ReLU is the rectified linear unit max(0, x).
//
// Derivative: 1 if x > 0, else 0.
type ReLU struct{}

// Name returns "relu".
func (ReLU) Name() string { return "relu" }

// Evaluate returns max(0, x).
func (ReLU) Evaluate(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

// Differentiate returns 1 for positive x and 0 otherwise.
func (ReLU) Differentiate(x float64) float64 {
	if x > 0 {
		return 1
	}
	return 0
}

// LeakyReLU passes positive inputs and scales negative inputs by Alpha.
//
// Derivative: 1 if x > 0, else Alpha.
type LeakyReLU struct {
	Alpha float64
}

// Name returns "leaky_relu".
func (LeakyReLU) Name() string { return "leaky_relu" }

// Evaluate returns x for x > 0 and Alpha*x otherwise.
func (f LeakyReLU) Evaluate(x float64) float64 {
	if x > 0 {
		return x
	}
	return f.Alpha * x
}

// Differentiate returns 1 for x > 0 and Alpha otherwise.
func (f LeakyReLU) Differentiate(x float64) float64 {
	if x > 0 {
		return 1
	}
	return f.Alpha
}

// SigmoidBound is the magnitude Sigmoid clamps its output to.
const SigmoidBound = 0.999

// Sigmoid is the logistic function 1/(1+exp(-x)) clamped to
// [-SigmoidBound, SigmoidBound] so that downstream log-losses stay finite.
//
// Derivative: s * (1 - s), where s is the clamped output.
type Sigmoid struct{}

// Name returns "sigmoid".
func (Sigmoid) Name() string { return "sigmoid" }

// Evaluate returns the clamped logistic value.
func (Sigmoid) Evaluate(x float64) float64 {
	s := 1 / (1 + math.Exp(-x))
	return math.Max(-SigmoidBound, math.Min(SigmoidBound, s))
}

// Differentiate returns s * (1 - s).
func (f Sigmoid) Differentiate(x float64) float64 {
	s := f.Evaluate(x)
	return s * (1 - s)
}

// Tanh is the hyperbolic tangent.
//
// Derivative: 1 - tanh(x)².
type Tanh struct{}

// Name returns "tanh".
func (Tanh) Name() string { return "tanh" }

// Evaluate returns tanh(x).
func (Tanh) Evaluate(x float64) float64 { return math.Tanh(x) }

// Differentiate returns 1 - tanh(x)².
func (Tanh) Differentiate(x float64) float64 {
	t := math.Tanh(x)
	return 1 - t*t
}

// SoftPlus is the smooth rectifier ln(1 + exp(x)).
//
// Derivative: 1 / (1 + exp(-x)).
type SoftPlus struct{}

// Name returns "softplus".
func (SoftPlus) Name() string { return "softplus" }

// Evaluate returns ln(1 + exp(x)).
func (SoftPlus) Evaluate(x float64) float64 {
	// log1p(exp(x)) overflows for large x, where softplus(x) ≈ x.
	if x > 30 {
		return x
	}
	return math.Log1p(math.Exp(x))
}

// Differentiate returns the logistic function of x.
func (SoftPlus) Differentiate(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// ActivationByName returns the activation registered under name.
// Names are case-insensitive. "leaky_relu" uses an Alpha of 0.1.
func ActivationByName(name string) (Activation, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "identity", "linear":
		return Identity{}, nil
	case "relu":
		return ReLU{}, nil
	case "leaky_relu", "lrelu":
		return LeakyReLU{Alpha: 0.1}, nil
	case "sigmoid":
		return Sigmoid{}, nil
	case "tanh":
		return Tanh{}, nil
	case "gelu":
		return GELU{}, nil
	case "softplus":
		return SoftPlus{}, nil
	default:
		return nil, fmt.Errorf("ops: unknown activation %q", name)
	}
}
