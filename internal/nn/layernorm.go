package nn

import (
	"slices"

	"github.com/born-ml/nodegrad/internal/autodiff"
)

// DefaultNormEpsilon stabilizes the standard deviation in Norm layers.
const DefaultNormEpsilon = 1e-8

// Norm implements layer normalization over every row of its input.
//
// Formula:
//
//	y = γ ⊙ (x - mean(x)) / sqrt(var(x) + ε) + β
//
// where mean and population variance are taken over the row, and γ (scale,
// initialized to 1) and β (shift, initialized to 0) are learnable rows shared
// by all rows of the input.
type Norm struct {
	scale   Sequence
	shift   Sequence
	params  []*autodiff.Parameter
	output  *Matrix
	epsilon float64
}

// NewNorm creates a normalization layer over input with the given epsilon.
// A non-positive epsilon selects DefaultNormEpsilon. One scale row and one
// shift row serve every row of input.
func NewNorm(input *Matrix, epsilon float64) *Norm {
	if epsilon <= 0 {
		epsilon = DefaultNormEpsilon
	}
	width := input.Width()

	scale, scaleParams := NewParameterRow(width, Fill(1))
	shift, shiftParams := NewParameterRow(width, Fill(0))

	normalized := NormalizeRows(input, epsilon)
	rows := make([]Sequence, normalized.Height())
	for i := range rows {
		src := normalized.Row(i)
		out := make(Sequence, width)
		for j, n := range src {
			out[j] = autodiff.NewAdd(shift[j], autodiff.NewMultiply(scale[j], n))
		}
		rows[i] = out
	}

	return &Norm{
		scale:   scale,
		shift:   shift,
		params:  append(scaleParams, shiftParams...),
		output:  FromRows(rows...),
		epsilon: epsilon,
	}
}

// Output returns the normalized matrix.
func (n *Norm) Output() *Matrix {
	return n.output
}

// Parameters returns the scale row followed by the shift row.
func (n *Norm) Parameters() []*autodiff.Parameter {
	return slices.Clone(n.params)
}

// Epsilon returns the variance stabilizer.
func (n *Norm) Epsilon() float64 {
	return n.epsilon
}
