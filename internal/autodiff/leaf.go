package autodiff

import (
	"github.com/born-ml/nodegrad/internal/autodiff/ops"
)

// Input is a leaf whose value is assigned by the caller before activation.
type Input struct {
	*Node
	value float64
	set   bool
}

// NewInput creates an unset input node.
func NewInput() *Input {
	in := &Input{}
	in.Node = newNode(KindInput, ops.Elementwise{Activation: ops.Identity{}},
		leaf{value: in.read}, nil)
	return in
}

func (in *Input) read() (float64, error) {
	if !in.set {
		return 0, ErrUnsetInput
	}
	return in.value, nil
}

// Set assigns the input value. Values already cached in a session are not
// affected; start a new session after changing inputs.
func (in *Input) Set(v float64) {
	in.value = v
	in.set = true
}

// Unset clears the input value.
func (in *Input) Unset() {
	in.value = 0
	in.set = false
}

// Value returns the input value and whether it has been set.
func (in *Input) Value() (float64, bool) {
	return in.value, in.set
}

// Parameter is a leaf holding a trainable value.
//
// Prebackprop on a Parameter accumulates the pulled gradient, so the gradient
// of a batch is the sum over the sessions the parameter was pulled in.
// Adjust applies an optimizer step and resets the accumulator.
type Parameter struct {
	*Node
	value     float64
	learnable bool
	gradient  float64
}

// NewParameter creates a learnable parameter with the given initial value.
func NewParameter(value float64) *Parameter {
	p := &Parameter{value: value, learnable: true}
	p.Node = newNode(KindParameter, ops.Elementwise{Activation: ops.Identity{}},
		leaf{value: p.read}, nil)
	p.Node.param = p
	return p
}

// NewFixedParameter creates a parameter that optimizers leave untouched.
func NewFixedParameter(value float64) *Parameter {
	p := NewParameter(value)
	p.learnable = false
	return p
}

func (p *Parameter) read() (float64, error) {
	return p.value, nil
}

// Value returns the current parameter value.
func (p *Parameter) Value() float64 {
	return p.value
}

// SetValue overwrites the parameter value.
func (p *Parameter) SetValue(v float64) {
	p.value = v
}

// Learnable reports whether optimizers update the parameter.
func (p *Parameter) Learnable() bool {
	return p.learnable
}

// SetLearnable marks the parameter as trainable or frozen.
func (p *Parameter) SetLearnable(learnable bool) {
	p.learnable = learnable
}

// Gradient returns the accumulated gradient.
func (p *Parameter) Gradient() float64 {
	return p.gradient
}

// Prebackprop returns ∂loss/∂p in session s and adds it to the accumulated
// gradient. Every call accumulates, including repeated calls in one session.
func (p *Parameter) Prebackprop(s *Session) (float64, error) {
	g, err := p.Node.Prebackprop(s)
	if err != nil {
		return 0, err
	}
	p.gradient += g
	return g, nil
}

// Adjust adds step to the value and resets the accumulated gradient.
func (p *Parameter) Adjust(step float64) {
	p.value += step
	p.gradient = 0
}

// ZeroGrad resets the accumulated gradient.
func (p *Parameter) ZeroGrad() {
	p.gradient = 0
}
