// Package autodiff implements reverse-mode automatic differentiation over a
// graph of scalar nodes.
//
// Every Node computes one real value from an ordered list of incoming nodes.
// Values and gradients are memoized per Session, so a graph can be evaluated
// many times (once per training instance) without rebuilding it.
//
// Architecture:
//   - Node: a scalar vertex with a Function (ops package) and a variant that
//     turns incoming activations into the function input (preactivation)
//   - Session: a unique identifier plus a training flag and a random source;
//     node caches are keyed by it
//   - Forward: Activate pulls values from incoming nodes on demand
//   - Backward: Prebackprop pulls gradients from outgoing consumers on demand,
//     clipping each edge contribution to [-GradientClip, GradientClip]
//   - Parameter: a learnable leaf that accumulates its pulled gradient
//
// Usage:
//
//	w := autodiff.NewParameter(3)
//	x := autodiff.NewInput()
//	y := autodiff.NewMultiply(w.Node, x.Node)
//
//	x.Set(2)
//	s := autodiff.NewSession(true)
//	out, _ := y.Activate(s)     // 6
//	y.SetLossGradient(s, 1)
//	g, _ := w.Prebackprop(s)    // ∂y/∂w = 2
//	fmt.Println(out, g, w.Gradient())
package autodiff

import (
	"fmt"
	"math"
)

// GradientClip bounds every per-edge gradient contribution.
const GradientClip = 10.0

// Kind identifies the node variant.
type Kind int

// Node kinds.
const (
	KindInput Kind = iota
	KindParameter
	KindConstant
	KindAdd
	KindMultiply
	KindSum
	KindSoftmax
	KindNorm
	KindDropout
	KindActivation
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindParameter:
		return "parameter"
	case KindConstant:
		return "constant"
	case KindAdd:
		return "add"
	case KindMultiply:
		return "multiply"
	case KindSum:
		return "sum"
	case KindSoftmax:
		return "softmax"
	case KindNorm:
		return "norm"
	case KindDropout:
		return "dropout"
	case KindActivation:
		return "activation"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// clip bounds g to [-GradientClip, GradientClip].
func clip(g float64) float64 {
	return math.Max(-GradientClip, math.Min(GradientClip, g))
}
