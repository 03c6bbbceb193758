package autodiff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"

	"github.com/born-ml/nodegrad/internal/autodiff"
	"github.com/born-ml/nodegrad/internal/autodiff/ops"
)

// numericalGradient differentiates the activation of out with respect to
// every parameter by central finite differences.
func numericalGradient(t *testing.T, out *autodiff.Node, params []*autodiff.Parameter) []float64 {
	t.Helper()

	x := make([]float64, len(params))
	for i, p := range params {
		x[i] = p.Value()
	}
	f := func(v []float64) float64 {
		for i, p := range params {
			p.SetValue(v[i])
		}
		y, err := out.Activate(autodiff.NewSession(false))
		require.NoError(t, err)
		return y
	}
	grad := fd.Gradient(nil, f, x, &fd.Settings{Formula: fd.Central})
	for i, p := range params {
		p.SetValue(x[i])
	}
	return grad
}

// analyticGradient seeds out with a unit loss gradient and pulls every
// parameter in a fresh session.
func analyticGradient(t *testing.T, out *autodiff.Node, params []*autodiff.Parameter) []float64 {
	t.Helper()

	s := autodiff.NewSession(false)
	_, err := out.Activate(s)
	require.NoError(t, err)
	out.SetLossGradient(s, 1)

	grad := make([]float64, len(params))
	for i, p := range params {
		g, err := p.Prebackprop(s)
		require.NoError(t, err)
		grad[i] = g
	}
	return grad
}

func assertGradient(t *testing.T, out *autodiff.Node, params []*autodiff.Parameter) {
	t.Helper()

	want := numericalGradient(t, out, params)
	got := analyticGradient(t, out, params)
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-5, "parameter %d", i)
	}
}

func TestGradientCheck_Softmax(t *testing.T) {
	a := autodiff.NewParameter(0.4)
	b := autodiff.NewParameter(-0.3)
	c := autodiff.NewParameter(1.1)

	out := autodiff.NewSoftmax(a.Node, []*autodiff.Node{b.Node, c.Node}, 0.7)
	assertGradient(t, out, []*autodiff.Parameter{a, b, c})
}

func TestGradientCheck_Norm(t *testing.T) {
	params := []*autodiff.Parameter{
		autodiff.NewParameter(0.3),
		autodiff.NewParameter(-1.2),
		autodiff.NewParameter(0.9),
		autodiff.NewParameter(2.0),
	}
	others := []*autodiff.Node{params[1].Node, params[2].Node, params[3].Node}
	out := autodiff.NewNorm(params[0].Node, others, 1e-8)

	assertGradient(t, out, params)
}

func TestGradientCheck_Composite(t *testing.T) {
	w1 := autodiff.NewParameter(0.5)
	w2 := autodiff.NewParameter(-0.8)
	bias := autodiff.NewParameter(0.1)
	x := autodiff.NewInput()
	x.Set(0.7)

	// tanh(w1*x + bias) * sigmoid(w2*x) + gelu(w1*w2)
	h1 := autodiff.NewActivation(
		autodiff.NewAdd(autodiff.NewMultiply(w1.Node, x.Node), bias.Node), ops.Tanh{})
	h2 := autodiff.NewActivation(autodiff.NewMultiply(w2.Node, x.Node), ops.Sigmoid{})
	h3 := autodiff.NewActivation(autodiff.NewMultiply(w1.Node, w2.Node), ops.GELU{})
	out := autodiff.NewSum(autodiff.NewMultiply(h1, h2), h3)

	assertGradient(t, out, []*autodiff.Parameter{w1, w2, bias})
}

func TestGradientCheck_SharedSubgraph(t *testing.T) {
	p := autodiff.NewParameter(0.6)
	q := autodiff.NewParameter(-0.4)

	shared := autodiff.NewActivation(autodiff.NewAdd(p.Node, q.Node), ops.SoftPlus{})
	left := autodiff.NewMultiply(shared, p.Node)
	right := autodiff.NewMultiply(shared, shared)
	out := autodiff.NewSoftmax(left, []*autodiff.Node{right}, 1)

	assertGradient(t, out, []*autodiff.Parameter{p, q})
}
