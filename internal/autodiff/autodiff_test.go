package autodiff_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/nodegrad/internal/autodiff"
	"github.com/born-ml/nodegrad/internal/autodiff/ops"
)

func TestLinearNode(t *testing.T) {
	w := autodiff.NewParameter(3)
	b := autodiff.NewParameter(0.5)
	x := autodiff.NewInput()
	y := autodiff.NewAdd(autodiff.NewMultiply(w.Node, x.Node), b.Node)

	x.Set(2)
	s := autodiff.NewSession(true)

	out, err := y.Activate(s)
	require.NoError(t, err)
	assert.InDelta(t, 6.5, out, 1e-12)

	y.SetLossGradient(s, 1)
	gw, err := w.Prebackprop(s)
	require.NoError(t, err)
	gb, err := b.Prebackprop(s)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, gw, 1e-12)
	assert.InDelta(t, 1.0, gb, 1e-12)
	assert.InDelta(t, 2.0, w.Gradient(), 1e-12)
}

func TestActivate_MemoizedPerSession(t *testing.T) {
	x := autodiff.NewInput()
	y := autodiff.NewActivation(x.Node, ops.Tanh{})

	x.Set(0.5)
	s := autodiff.NewSession(false)
	first, err := y.Activate(s)
	require.NoError(t, err)

	x.Set(-3)
	second, err := y.Activate(s)
	require.NoError(t, err)
	assert.Equal(t, first, second, "value must be cached within a session")

	third, err := y.Activate(autodiff.NewSession(false))
	require.NoError(t, err)
	assert.InDelta(t, math.Tanh(-3), third, 1e-12)
}

func TestActivate_UnsetInput(t *testing.T) {
	x := autodiff.NewInput()
	y := autodiff.NewAdd(x.Node, autodiff.NewConstant(1))

	_, err := y.Activate(autodiff.NewSession(false))
	assert.ErrorIs(t, err, autodiff.ErrUnsetInput)

	x.Set(1)
	out, err := y.Activate(autodiff.NewSession(false))
	require.NoError(t, err)
	assert.InDelta(t, 2.0, out, 1e-12)

	x.Unset()
	_, set := x.Value()
	assert.False(t, set)
	_, err = y.Activate(autodiff.NewSession(false))
	assert.ErrorIs(t, err, autodiff.ErrUnsetInput)
}

func TestDifferentiate_Errors(t *testing.T) {
	p := autodiff.NewParameter(1)
	q := autodiff.NewParameter(2)
	y := autodiff.NewMultiply(p.Node, p.Node)
	s := autodiff.NewSession(false)

	_, err := p.Differentiate(s, q.Node)
	assert.ErrorIs(t, err, autodiff.ErrLeafDerivative)

	_, err = y.Differentiate(s, q.Node)
	assert.ErrorIs(t, err, autodiff.ErrNotIncoming)

	_, err = y.Backprop(s, q.Node)
	assert.ErrorIs(t, err, autodiff.ErrNotIncoming)
}

func TestDifferentiate_RepeatedIncoming(t *testing.T) {
	p := autodiff.NewParameter(1.5)
	y := autodiff.NewMultiply(p.Node, p.Node)
	s := autodiff.NewSession(true)

	d, err := y.Differentiate(s, p.Node)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, d, 1e-12)

	y.SetLossGradient(s, 1)
	g, err := p.Prebackprop(s)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, g, 1e-12)
}

func TestPrebackprop_Clipped(t *testing.T) {
	p := autodiff.NewParameter(1)
	y := autodiff.NewMultiply(autodiff.NewConstant(100), p.Node)
	s := autodiff.NewSession(true)

	y.SetLossGradient(s, 1)
	g, err := p.Prebackprop(s)
	require.NoError(t, err)
	assert.InDelta(t, autodiff.GradientClip, g, 1e-12)

	s2 := autodiff.NewSession(true)
	y.SetLossGradient(s2, -1)
	g, err = p.Prebackprop(s2)
	require.NoError(t, err)
	assert.InDelta(t, -autodiff.GradientClip, g, 1e-12)
}

func TestPrebackprop_ClippedPerEdge(t *testing.T) {
	p := autodiff.NewParameter(1)
	a := autodiff.NewMultiply(autodiff.NewConstant(100), p.Node)
	b := autodiff.NewMultiply(autodiff.NewConstant(100), p.Node)
	y := autodiff.NewAdd(a, b)
	s := autodiff.NewSession(true)

	y.SetLossGradient(s, 1)
	g, err := p.Prebackprop(s)
	require.NoError(t, err)
	assert.InDelta(t, 2*autodiff.GradientClip, g, 1e-12)
}

func TestPrebackprop_NoConsumers(t *testing.T) {
	p := autodiff.NewParameter(1)
	s := autodiff.NewSession(true)

	g, err := p.Prebackprop(s)
	require.NoError(t, err)
	assert.Zero(t, g)
}

func TestParameter_Accumulates(t *testing.T) {
	w := autodiff.NewParameter(2)
	x := autodiff.NewInput()
	y := autodiff.NewMultiply(w.Node, x.Node)

	for _, v := range []float64{1, 2, 3} {
		x.Set(v)
		s := autodiff.NewSession(true)
		_, err := y.Activate(s)
		require.NoError(t, err)
		y.SetLossGradient(s, 1)
		_, err = w.Prebackprop(s)
		require.NoError(t, err)
	}
	assert.InDelta(t, 6.0, w.Gradient(), 1e-12)

	w.Adjust(-0.5)
	assert.InDelta(t, 1.5, w.Value(), 1e-12)
	assert.Zero(t, w.Gradient())
}

func TestParameter_Learnable(t *testing.T) {
	p := autodiff.NewFixedParameter(1)
	assert.False(t, p.Learnable())
	p.SetLearnable(true)
	assert.True(t, p.Learnable())
	assert.Same(t, p, p.Node.Parameter())
}

func TestDropout(t *testing.T) {
	x := autodiff.NewInput()
	x.Set(4)

	always := autodiff.NewDropout(x.Node, 1)
	never := autodiff.NewDropout(x.Node, 0)

	out, err := always.Activate(autodiff.NewSession(false))
	require.NoError(t, err)
	assert.InDelta(t, 4.0, out, 1e-12, "dropout is inactive outside training")

	s := autodiff.NewSession(true)
	out, err = always.Activate(s)
	require.NoError(t, err)
	assert.Zero(t, out)

	always.SetLossGradient(s, 1)
	d, err := always.Differentiate(s, x.Node)
	require.NoError(t, err)
	assert.Zero(t, d)

	out, err = never.Activate(autodiff.NewSession(true))
	require.NoError(t, err)
	assert.InDelta(t, 4.0, out, 1e-12)

	assert.Panics(t, func() { autodiff.NewDropout(x.Node, 1.5) })
}

func TestDropout_GateFixedWithinSession(t *testing.T) {
	x := autodiff.NewInput()
	x.Set(1)
	drop := autodiff.NewDropout(x.Node, 0.5)

	rng := rand.New(rand.NewPCG(1, 2))
	for range 20 {
		s := autodiff.NewSessionWithRand(true, rng)
		first, err := drop.Activate(s)
		require.NoError(t, err)
		pre, err := drop.Preactivation(s)
		require.NoError(t, err)
		require.Len(t, pre, 2)
		assert.Equal(t, first, pre[0]*pre[1])

		d, err := drop.Differentiate(s, x.Node)
		require.NoError(t, err)
		assert.Equal(t, pre[1], d)
	}
}

func TestSoftmax_Temperature(t *testing.T) {
	a := autodiff.NewParameter(1)
	b := autodiff.NewParameter(3)

	hot := autodiff.NewSoftmax(a.Node, []*autodiff.Node{b.Node}, 2)
	out, err := hot.Activate(autodiff.NewSession(false))
	require.NoError(t, err)

	want := math.Exp(0.5) / (math.Exp(0.5) + math.Exp(1.5))
	assert.InDelta(t, want, out, 1e-12)

	assert.Panics(t, func() { autodiff.NewSoftmax(a.Node, nil, 0) })
}

func TestCollectParameters(t *testing.T) {
	a := autodiff.NewParameter(1)
	b := autodiff.NewParameter(2)
	c := autodiff.NewParameter(3)
	x := autodiff.NewInput()

	ab := autodiff.NewMultiply(a.Node, b.Node)
	left := autodiff.NewAdd(ab, x.Node)
	right := autodiff.NewAdd(ab, c.Node)

	params := autodiff.CollectParameters(left, right)
	require.Len(t, params, 3)
	assert.Same(t, a, params[0])
	assert.Same(t, b, params[1])
	assert.Same(t, c, params[2])
}

func TestDeepChain(t *testing.T) {
	p := autodiff.NewParameter(0)
	n := p.Node
	for range 20000 {
		n = autodiff.NewAdd(n, autodiff.NewConstant(0.001))
	}

	s := autodiff.NewSession(true)
	out, err := n.Activate(s)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, out, 1e-6)

	n.SetLossGradient(s, 1)
	g, err := p.Prebackprop(s)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, g, 1e-12)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "softmax", autodiff.KindSoftmax.String())
	assert.Equal(t, "Kind(99)", autodiff.Kind(99).String())
	assert.Equal(t, autodiff.KindNorm, autodiff.NewNorm(autodiff.NewConstant(1), nil, 1e-8).Kind())
}
