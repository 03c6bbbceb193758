package autodiff

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/born-ml/nodegrad/internal/autodiff/ops"
)

// Node is a scalar vertex of the computation graph.
//
// A node owns an ordered list of incoming nodes, fixed at construction, and
// learns about its consumers as they are built. The same node may appear in
// several incoming slots of one consumer; every slot is a separate edge.
//
// Nodes are created with the New* constructors. A Node is not safe for
// concurrent use.
type Node struct {
	kind     Kind
	fn       ops.Function
	variant  variant
	incoming []*Node
	outgoing []edge
	param    *Parameter

	// Per-session cache.
	session  uuid.UUID
	pre      []float64
	partials []float64
	post     float64
	hasPost  bool
	grad     float64
	hasGrad  bool
}

// edge is one incoming slot of a consumer node.
type edge struct {
	to   *Node
	slot int
}

func newNode(kind Kind, fn ops.Function, v variant, incoming []*Node) *Node {
	n := &Node{
		kind:     kind,
		fn:       fn,
		variant:  v,
		incoming: slices.Clone(incoming),
	}
	for slot, in := range n.incoming {
		if in == nil {
			panic(fmt.Sprintf("autodiff.%s: nil incoming node at slot %d", kind, slot))
		}
		in.outgoing = append(in.outgoing, edge{to: n, slot: slot})
	}
	return n
}

// Kind returns the node variant.
func (n *Node) Kind() Kind {
	return n.kind
}

// Function returns the scalar function evaluated by the node.
func (n *Node) Function() ops.Function {
	return n.fn
}

// Incoming returns the incoming nodes in slot order.
func (n *Node) Incoming() []*Node {
	return slices.Clone(n.incoming)
}

// Outgoing returns the consumers of the node, one entry per edge.
func (n *Node) Outgoing() []*Node {
	out := make([]*Node, len(n.outgoing))
	for i, e := range n.outgoing {
		out[i] = e.to
	}
	return out
}

// Parameter returns the Parameter wrapping the node, or nil.
func (n *Node) Parameter() *Parameter {
	return n.param
}

// String returns a short description of the node.
func (n *Node) String() string {
	return fmt.Sprintf("%s(%d in, %d out)", n.kind, len(n.incoming), len(n.outgoing))
}

// sync drops cached values that belong to a session other than s.
func (n *Node) sync(s *Session) {
	if n.session == s.id {
		return
	}
	n.session = s.id
	n.pre = nil
	n.partials = nil
	n.hasPost = false
	n.hasGrad = false
	n.post = 0
	n.grad = 0
}

// Activate returns the node value in session s, evaluating incoming nodes
// that have not been evaluated in s yet.
func (n *Node) Activate(s *Session) (float64, error) {
	n.sync(s)
	if !n.hasPost {
		if err := forward(s, n); err != nil {
			return 0, err
		}
	}
	return n.post, nil
}

// Preactivation returns the function input of the node in session s.
// For leaves this is the single stored value.
func (n *Node) Preactivation(s *Session) ([]float64, error) {
	pre, err := n.preactivation(s)
	if err != nil {
		return nil, err
	}
	return slices.Clone(pre), nil
}

func (n *Node) preactivation(s *Session) ([]float64, error) {
	n.sync(s)
	if n.pre != nil {
		return n.pre, nil
	}
	for _, in := range n.incoming {
		if _, err := in.Activate(s); err != nil {
			return nil, err
		}
	}
	if err := n.gather(s); err != nil {
		return nil, err
	}
	return n.pre, nil
}

// gather computes the preactivation from already evaluated incoming nodes.
func (n *Node) gather(s *Session) error {
	in := make([]float64, len(n.incoming))
	for i, m := range n.incoming {
		in[i] = m.post
	}
	pre, err := n.variant.preactivate(s, in)
	if err != nil {
		return err
	}
	n.pre = pre
	return nil
}

// Differentiate returns the local derivative ∂n/∂wrt in session s. When wrt
// occupies several incoming slots the per-slot derivatives are summed.
func (n *Node) Differentiate(s *Session, wrt *Node) (float64, error) {
	if len(n.incoming) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrLeafDerivative, n.kind)
	}
	var total float64
	found := false
	for slot, in := range n.incoming {
		if in != wrt {
			continue
		}
		d, err := n.derivative(s, slot)
		if err != nil {
			return 0, err
		}
		total += d
		found = true
	}
	if !found {
		return 0, fmt.Errorf("%w: %s is not fed by %s", ErrNotIncoming, n.kind, wrt.kind)
	}
	return total, nil
}

// derivative returns the local derivative for one incoming slot.
func (n *Node) derivative(s *Session, slot int) (float64, error) {
	n.sync(s)
	if n.partials == nil {
		pre, err := n.preactivation(s)
		if err != nil {
			return 0, err
		}
		n.partials = n.fn.Differentiate(pre)
	}
	return n.variant.derivative(n.partials, slot)
}

// SetLossGradient seeds the gradient of an output node in session s.
// The seeded value is returned by Prebackprop instead of the sum over
// consumers.
func (n *Node) SetLossGradient(s *Session, g float64) {
	n.sync(s)
	n.grad = g
	n.hasGrad = true
}

// Prebackprop returns ∂loss/∂n in session s: the sum over outgoing edges of
// the clipped product of the consumer's local derivative and the consumer's
// own prebackprop. Nodes without consumers and without a seeded loss gradient
// have a zero gradient.
func (n *Node) Prebackprop(s *Session) (float64, error) {
	n.sync(s)
	if !n.hasGrad {
		if err := backward(s, n); err != nil {
			return 0, err
		}
	}
	return n.grad, nil
}

// Backprop returns the gradient contribution that n sends to wrt in
// session s: clip(∂n/∂wrt * prebackprop(n)), clipped per edge when wrt
// occupies several slots.
func (n *Node) Backprop(s *Session, wrt *Node) (float64, error) {
	if len(n.incoming) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrLeafDerivative, n.kind)
	}
	if _, err := n.Prebackprop(s); err != nil {
		return 0, err
	}
	var total float64
	found := false
	for slot, in := range n.incoming {
		if in != wrt {
			continue
		}
		g, err := n.backprop(s, slot)
		if err != nil {
			return 0, err
		}
		total += g
		found = true
	}
	if !found {
		return 0, fmt.Errorf("%w: %s is not fed by %s", ErrNotIncoming, n.kind, wrt.kind)
	}
	return total, nil
}

// backprop returns the clipped contribution sent through one incoming slot.
// The consumer's prebackprop must already be cached.
func (n *Node) backprop(s *Session, slot int) (float64, error) {
	if n.grad == 0 {
		return 0, nil
	}
	d, err := n.derivative(s, slot)
	if err != nil {
		return 0, err
	}
	return clip(d * n.grad), nil
}
