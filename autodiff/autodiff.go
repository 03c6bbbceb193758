// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides scalar computation graphs with pull-based
// reverse-mode differentiation.
//
// Every node computes one scalar from its incoming nodes. Values are cached
// per Session, and gradients are pulled on demand from consumers, clipped
// to ±GradientClip on every edge.
//
// Example:
//
//	import "github.com/born-ml/nodegrad/autodiff"
//
//	func main() {
//	    x := autodiff.NewInput()
//	    w := autodiff.NewParameter(0.5)
//	    y := autodiff.NewMultiply(x.Node, w.Node)
//
//	    s := autodiff.NewSession(true)
//	    x.Set(3)
//	    out, _ := y.Activate(s)     // 1.5
//	    y.SetLossGradient(s, 1)
//	    grad, _ := w.Prebackprop(s) // 3
//	}
package autodiff

import (
	"math/rand/v2"

	"github.com/born-ml/nodegrad/internal/autodiff"
	"github.com/born-ml/nodegrad/internal/autodiff/ops"
)

// GradientClip bounds every gradient passed along an edge.
const GradientClip = autodiff.GradientClip

// Errors returned by graph evaluation.
var (
	ErrUnsetInput     = autodiff.ErrUnsetInput
	ErrLeafDerivative = autodiff.ErrLeafDerivative
	ErrNotIncoming    = autodiff.ErrNotIncoming
)

// Session scopes one forward and backward pass.
type Session = autodiff.Session

// NewSession creates a session. Dropout is active only in training sessions.
func NewSession(training bool) *Session {
	return autodiff.NewSession(training)
}

// NewSessionWithRand creates a session that draws dropout noise from rng.
func NewSessionWithRand(training bool, rng *rand.Rand) *Session {
	return autodiff.NewSessionWithRand(training, rng)
}

// Node is one scalar computation in the graph.
type Node = autodiff.Node

// Kind identifies a node variant.
type Kind = autodiff.Kind

// Node kinds.
const (
	KindInput      = autodiff.KindInput
	KindParameter  = autodiff.KindParameter
	KindConstant   = autodiff.KindConstant
	KindAdd        = autodiff.KindAdd
	KindMultiply   = autodiff.KindMultiply
	KindSum        = autodiff.KindSum
	KindSoftmax    = autodiff.KindSoftmax
	KindNorm       = autodiff.KindNorm
	KindDropout    = autodiff.KindDropout
	KindActivation = autodiff.KindActivation
)

// Input is a leaf whose value is bound before activation.
type Input = autodiff.Input

// NewInput creates an unbound input.
func NewInput() *Input {
	return autodiff.NewInput()
}

// Parameter is a learnable leaf that accumulates its gradient.
type Parameter = autodiff.Parameter

// NewParameter creates a learnable parameter.
func NewParameter(value float64) *Parameter {
	return autodiff.NewParameter(value)
}

// NewFixedParameter creates a parameter the optimizers leave untouched.
func NewFixedParameter(value float64) *Parameter {
	return autodiff.NewFixedParameter(value)
}

// NewConstant creates a constant node.
func NewConstant(value float64) *Node {
	return autodiff.NewConstant(value)
}

// NewAdd creates a node computing a + b.
func NewAdd(a, b *Node) *Node {
	return autodiff.NewAdd(a, b)
}

// NewMultiply creates a node computing left · right.
func NewMultiply(left, right *Node) *Node {
	return autodiff.NewMultiply(left, right)
}

// NewSum creates a node computing the sum of nodes.
func NewSum(nodes ...*Node) *Node {
	return autodiff.NewSum(nodes...)
}

// NewSoftmax creates the softmax entry of numerator within the group
// numerator ∪ others.
func NewSoftmax(numerator *Node, others []*Node, temperature float64) *Node {
	return autodiff.NewSoftmax(numerator, others, temperature)
}

// NewNorm creates the standardized value of main within the group
// main ∪ others.
func NewNorm(main *Node, others []*Node, epsilon float64) *Node {
	return autodiff.NewNorm(main, others, epsilon)
}

// NewDropout creates a node that zeroes in with probability rate in
// training sessions.
func NewDropout(in *Node, rate float64) *Node {
	return autodiff.NewDropout(in, rate)
}

// NewActivation creates a node applying act to in.
func NewActivation(in *Node, act Activation) *Node {
	return autodiff.NewActivation(in, act)
}

// CollectParameters returns every parameter reachable from roots, once
// each, in depth-first order.
func CollectParameters(roots ...*Node) []*Parameter {
	return autodiff.CollectParameters(roots...)
}

// Activation functions

// Activation is a scalar function with its derivative.
type Activation = ops.Activation

// Activation functions.
type (
	Identity  = ops.Identity
	ReLU      = ops.ReLU
	LeakyReLU = ops.LeakyReLU
	Sigmoid   = ops.Sigmoid
	Tanh      = ops.Tanh
	GELU      = ops.GELU
	SoftPlus  = ops.SoftPlus
)

// ActivationByName returns the activation with the given name
// ("identity", "relu", "leaky_relu", "sigmoid", "tanh", "gelu", "softplus").
func ActivationByName(name string) (Activation, error) {
	return ops.ActivationByName(name)
}
