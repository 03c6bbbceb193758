package nn

import (
	"math/rand/v2"

	"github.com/born-ml/nodegrad/internal/autodiff"
	"github.com/born-ml/nodegrad/internal/autodiff/ops"
)

// FeedForward implements the position-wise feed-forward network of a
// transformer block.
//
// Architecture:
//
//	FFN(x) = act(x · W1 + b1) · W2 + b2
//
// Where:
//   - W1: [width → size], Xavier initialized
//   - W2: [size → width], Xavier initialized
//   - b1, b2: zero-initialized bias rows shared by every position
//
// The output has the same shape as the input.
type FeedForward struct {
	expand  *DenseLinear
	project *DenseLinear
	output  *Matrix
}

// NewFeedForward creates a feed-forward network over input with a hidden
// width of size. A nil act selects ReLU. Both bias rows are shared by every
// row of input, so the parameter count does not depend on the input height.
func NewFeedForward(input *Matrix, size int, act ops.Activation, src rand.Source) *FeedForward {
	if act == nil {
		act = ops.ReLU{}
	}
	width := input.Width()

	expand := NewDenseLinear(input, size, Xavier(width, size, src), true)
	hidden := Apply(expand.Output(), act)
	project := NewDenseLinear(hidden, width, Xavier(size, width, src), true)

	return &FeedForward{
		expand:  expand,
		project: project,
		output:  project.Output(),
	}
}

// Output returns the feed-forward output.
func (f *FeedForward) Output() *Matrix {
	return f.output
}

// Parameters returns the expansion layer parameters followed by the
// projection layer parameters.
func (f *FeedForward) Parameters() []*autodiff.Parameter {
	return collect(f.expand, f.project)
}
