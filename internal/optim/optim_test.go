package optim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/nodegrad/internal/autodiff"
	"github.com/born-ml/nodegrad/internal/optim"
)

// probe wires a parameter into y = p·1 so tests can push a chosen gradient
// into its accumulator through the regular backward pass.
type probe struct {
	*autodiff.Parameter
	root *autodiff.Node
}

func newProbe(value float64) *probe {
	p := autodiff.NewParameter(value)
	return &probe{Parameter: p, root: autodiff.NewMultiply(p.Node, autodiff.NewConstant(1))}
}

func newFixedProbe(value float64) *probe {
	p := autodiff.NewFixedParameter(value)
	return &probe{Parameter: p, root: autodiff.NewMultiply(p.Node, autodiff.NewConstant(1))}
}

// accumulate runs one training session that adds g to the probe gradient.
func (p *probe) accumulate(t *testing.T, g float64) {
	t.Helper()

	s := autodiff.NewSession(true)
	_, err := p.root.Activate(s)
	require.NoError(t, err)
	p.root.SetLossGradient(s, g)
	_, err = p.Prebackprop(s)
	require.NoError(t, err)
}

func params(probes ...*probe) []*autodiff.Parameter {
	out := make([]*autodiff.Parameter, len(probes))
	for i, p := range probes {
		out[i] = p.Parameter
	}
	return out
}

// TestSGD_SimpleUpdate tests SGD without momentum.
func TestSGD_SimpleUpdate(t *testing.T) {
	x := newProbe(2)
	optimizer := optim.NewSGD(params(x), optim.SGDConfig{LR: 0.1})

	x.accumulate(t, 1)
	optimizer.Step(1)

	// x_new = x_old - lr * grad = 2.0 - 0.1 * 1.0
	assert.InDelta(t, 1.9, x.Value(), 1e-12)
	assert.Zero(t, x.Gradient())
}

func TestSGD_BatchAverage(t *testing.T) {
	x := newProbe(2)
	optimizer := optim.NewSGD(params(x), optim.SGDConfig{LR: 0.1})

	x.accumulate(t, 3)
	x.accumulate(t, 1)
	require.Equal(t, 4.0, x.Gradient())
	optimizer.Step(2)

	assert.InDelta(t, 1.8, x.Value(), 1e-12)
}

// TestSGD_WithMomentum tests SGD with momentum.
func TestSGD_WithMomentum(t *testing.T) {
	x := newProbe(1)
	optimizer := optim.NewSGD(params(x), optim.SGDConfig{LR: 0.1, Momentum: 0.9})

	// v_1 = 0.9 * 0 - 0.1 * 1.0 = -0.1
	x.accumulate(t, 1)
	optimizer.Step(1)
	assert.InDelta(t, 0.9, x.Value(), 1e-12)
	assert.InDelta(t, -0.1, optimizer.Velocity(x.Parameter), 1e-12)

	// v_2 = 0.9 * -0.1 - 0.1 * 1.0 = -0.19
	x.accumulate(t, 1)
	optimizer.Step(1)
	assert.InDelta(t, 0.71, x.Value(), 1e-12)

	// Velocity carries the parameter on without a gradient.
	optimizer.Step(1)
	assert.InDelta(t, 0.71-0.171, x.Value(), 1e-12)
}

func TestSGD_SkipsFixedParameters(t *testing.T) {
	x := newProbe(1)
	frozen := newFixedProbe(5)
	optimizer := optim.NewSGD(params(x, frozen), optim.SGDConfig{LR: 0.5})

	assert.Len(t, optimizer.Parameters(), 1)

	x.accumulate(t, 1)
	frozen.accumulate(t, 1)
	optimizer.Step(1)

	assert.InDelta(t, 0.5, x.Value(), 1e-12)
	assert.Equal(t, 5.0, frozen.Value())
}

// TestSGD_ZeroGrad tests ZeroGrad method.
func TestSGD_ZeroGrad(t *testing.T) {
	x := newProbe(1)
	optimizer := optim.NewSGD(params(x), optim.SGDConfig{})

	x.accumulate(t, 2)
	optimizer.ZeroGrad()
	assert.Zero(t, x.Gradient())

	optimizer.Step(1)
	assert.Equal(t, 1.0, x.Value())
}

func TestLearningRate(t *testing.T) {
	sgd := optim.NewSGD(nil, optim.SGDConfig{})
	assert.Equal(t, optim.DefaultLR, sgd.GetLR())
	sgd.SetLR(0.5)
	assert.Equal(t, 0.5, sgd.GetLR())

	adam := optim.NewAdam(nil, optim.AdamConfig{})
	assert.Equal(t, optim.DefaultLR, adam.GetLR())
	adam.SetLR(0.25)
	assert.Equal(t, 0.25, adam.GetLR())

	var _ optim.Optimizer = sgd
	var _ optim.Optimizer = adam
}

// TestAdam_FirstStep checks that the bias-corrected first step has size
// close to lr whatever the gradient scale.
func TestAdam_FirstStep(t *testing.T) {
	for _, g := range []float64{0.5, 1, 5, -3} {
		x := newProbe(1)
		optimizer := optim.NewAdam(params(x), optim.AdamConfig{LR: 0.1})

		x.accumulate(t, g)
		optimizer.Step(1)

		want := 1 - 0.1
		if g < 0 {
			want = 1 + 0.1
		}
		assert.InDelta(t, want, x.Value(), 1e-3, "gradient %v", g)
		assert.Equal(t, 1, optimizer.GetTimestep(x.Parameter))
	}
}

func TestAdam_Moments(t *testing.T) {
	x := newProbe(0)
	optimizer := optim.NewAdam(params(x), optim.AdamConfig{LR: 0.01, Betas: [2]float64{0.5, 0.75}})

	m, v := optimizer.Moments(x.Parameter)
	assert.Equal(t, optim.AdamMomentSeed, m)
	assert.Equal(t, optim.AdamMomentSeed, v)
	assert.Zero(t, optimizer.GetTimestep(x.Parameter))

	x.accumulate(t, 4)
	optimizer.Step(2)

	m, v = optimizer.Moments(x.Parameter)
	assert.InDelta(t, 0.5*optim.AdamMomentSeed+0.5*2, m, 1e-12)
	assert.InDelta(t, 0.75*optim.AdamMomentSeed+0.25*4, v, 1e-12)
}

// TestAdam_Quadratic minimizes (x - 3)².
func TestAdam_Quadratic(t *testing.T) {
	x := newProbe(0)
	optimizer := optim.NewAdam(params(x), optim.AdamConfig{LR: 0.02})

	for range 3000 {
		x.accumulate(t, 2*(x.Value()-3))
		optimizer.Step(1)
	}
	assert.InDelta(t, 3.0, x.Value(), 0.1)
}
