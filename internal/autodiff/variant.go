package autodiff

import (
	"fmt"

	"github.com/born-ml/nodegrad/internal/autodiff/ops"
)

// variant turns incoming activations into the function input of a node and
// maps the function partials back onto incoming slots.
type variant interface {
	preactivate(s *Session, in []float64) ([]float64, error)
	derivative(partials []float64, slot int) (float64, error)
}

// passthrough feeds incoming activations to the function unchanged.
type passthrough struct{}

func (passthrough) preactivate(_ *Session, in []float64) ([]float64, error) {
	return in, nil
}

func (passthrough) derivative(partials []float64, slot int) (float64, error) {
	return partials[slot], nil
}

// leaf reads a stored value; it has no incoming slots to differentiate.
type leaf struct {
	value func() (float64, error)
}

func (l leaf) preactivate(*Session, []float64) ([]float64, error) {
	v, err := l.value()
	if err != nil {
		return nil, err
	}
	return []float64{v}, nil
}

func (leaf) derivative([]float64, int) (float64, error) {
	return 0, ErrLeafDerivative
}

// tempered divides incoming activations by a softmax temperature.
type tempered struct {
	temperature float64
}

func (t tempered) preactivate(_ *Session, in []float64) ([]float64, error) {
	out := make([]float64, len(in))
	for i, x := range in {
		out[i] = x / t.temperature
	}
	return out, nil
}

func (t tempered) derivative(partials []float64, slot int) (float64, error) {
	return partials[slot] / t.temperature, nil
}

// gated appends a dropout gate to the single incoming activation. The gate is
// drawn once per session and is 0 with probability rate in training sessions.
type gated struct {
	rate float64
}

func (g gated) preactivate(s *Session, in []float64) ([]float64, error) {
	gate := 1.0
	if s.Training() && g.rate > 0 && s.Float64() < g.rate {
		gate = 0
	}
	return []float64{in[0], gate}, nil
}

func (gated) derivative(partials []float64, slot int) (float64, error) {
	return partials[slot], nil
}

// NewConstant creates a leaf with a fixed value.
func NewConstant(value float64) *Node {
	return newNode(KindConstant, ops.Elementwise{Activation: ops.Identity{}},
		leaf{value: func() (float64, error) { return value, nil }}, nil)
}

// NewAdd creates a node computing a + b.
func NewAdd(a, b *Node) *Node {
	return newNode(KindAdd, ops.Add{}, passthrough{}, []*Node{a, b})
}

// NewMultiply creates a node computing left * right.
func NewMultiply(left, right *Node) *Node {
	return newNode(KindMultiply, ops.Multiply{}, passthrough{}, []*Node{left, right})
}

// NewSum creates a node computing the sum of nodes. An empty sum is zero.
func NewSum(nodes ...*Node) *Node {
	return newNode(KindSum, ops.Sum{}, passthrough{}, nodes)
}

// NewSoftmax creates a node computing the softmax probability of numerator
// among numerator and others, with every activation divided by temperature.
//
// Panics if temperature is not positive.
func NewSoftmax(numerator *Node, others []*Node, temperature float64) *Node {
	if temperature <= 0 {
		panic(fmt.Sprintf("autodiff.NewSoftmax: temperature must be positive, got %v", temperature))
	}
	incoming := make([]*Node, 0, len(others)+1)
	incoming = append(incoming, numerator)
	incoming = append(incoming, others...)
	return newNode(KindSoftmax, ops.Softmax{}, tempered{temperature: temperature}, incoming)
}

// NewNorm creates a node standardizing main against main and others using
// population statistics and the given epsilon.
func NewNorm(main *Node, others []*Node, epsilon float64) *Node {
	incoming := make([]*Node, 0, len(others)+1)
	incoming = append(incoming, main)
	incoming = append(incoming, others...)
	return newNode(KindNorm, ops.Normalize{Epsilon: epsilon}, passthrough{}, incoming)
}

// NewDropout creates a node that zeroes in with probability rate during
// training sessions and passes it through unchanged otherwise. Kept values
// are not rescaled.
//
// Panics if rate is outside [0, 1].
func NewDropout(in *Node, rate float64) *Node {
	if rate < 0 || rate > 1 {
		panic(fmt.Sprintf("autodiff.NewDropout: rate must be in [0, 1], got %v", rate))
	}
	return newNode(KindDropout, ops.Multiply{}, gated{rate: rate}, []*Node{in})
}

// NewActivation creates a node applying act to in.
func NewActivation(in *Node, act ops.Activation) *Node {
	return newNode(KindActivation, ops.Elementwise{Activation: act}, passthrough{}, []*Node{in})
}
