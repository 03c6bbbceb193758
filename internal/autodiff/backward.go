package autodiff

import (
	"github.com/emirpasic/gods/v2/stacks/arraystack"
)

// forward evaluates root and every dependency of root that is not cached in
// session s. Dependencies are visited in incoming-slot order with an explicit
// stack, so graph depth is not bounded by the goroutine stack.
func forward(s *Session, root *Node) error {
	stack := arraystack.New[*Node]()
	stack.Push(root)

	for !stack.Empty() {
		n, _ := stack.Peek()
		n.sync(s)
		if n.hasPost {
			stack.Pop()
			continue
		}

		if n.pre == nil {
			ready := true
			for i := len(n.incoming) - 1; i >= 0; i-- {
				in := n.incoming[i]
				in.sync(s)
				if !in.hasPost {
					stack.Push(in)
					ready = false
				}
			}
			if !ready {
				continue
			}
			if err := n.gather(s); err != nil {
				return err
			}
		}

		n.post = n.fn.Evaluate(n.pre)
		n.hasPost = true
		stack.Pop()
	}
	return nil
}

// backward computes the prebackprop of root and of every transitive consumer
// of root that is not cached in session s.
func backward(s *Session, root *Node) error {
	stack := arraystack.New[*Node]()
	stack.Push(root)

	for !stack.Empty() {
		n, _ := stack.Peek()
		n.sync(s)
		if n.hasGrad {
			stack.Pop()
			continue
		}

		ready := true
		for i := len(n.outgoing) - 1; i >= 0; i-- {
			c := n.outgoing[i].to
			c.sync(s)
			if !c.hasGrad {
				stack.Push(c)
				ready = false
			}
		}
		if !ready {
			continue
		}

		var g float64
		for _, e := range n.outgoing {
			contrib, err := e.to.backprop(s, e.slot)
			if err != nil {
				return err
			}
			g += contrib
		}
		n.grad = g
		n.hasGrad = true
		stack.Pop()
	}
	return nil
}

// CollectParameters returns every Parameter reachable from roots through
// incoming edges, each exactly once, in depth-first preorder.
func CollectParameters(roots ...*Node) []*Parameter {
	visited := make(map[*Node]struct{})
	var params []*Parameter

	stack := arraystack.New[*Node]()
	for i := len(roots) - 1; i >= 0; i-- {
		stack.Push(roots[i])
	}
	for !stack.Empty() {
		n, _ := stack.Pop()
		if _, ok := visited[n]; ok {
			continue
		}
		visited[n] = struct{}{}
		if n.param != nil {
			params = append(params, n.param)
		}
		for i := len(n.incoming) - 1; i >= 0; i-- {
			stack.Push(n.incoming[i])
		}
	}
	return params
}
