package nn

import (
	"github.com/born-ml/nodegrad/internal/autodiff"
	"github.com/born-ml/nodegrad/internal/autodiff/ops"
)

// MatMul returns a · b. Every output cell is one Sum node over one Multiply
// node per contracted index.
//
// Panics with *ShapeError if a.Width() != b.Height().
func MatMul(a, b *Matrix) *Matrix {
	if a.Width() != b.Height() {
		shapePanic("nn.MatMul", "[%d×%d] · [%d×%d]", a.Height(), a.Width(), b.Height(), b.Width())
	}
	cols := b.Cols()
	rows := make([]Sequence, a.Height())
	for i := range rows {
		row := a.Row(i)
		out := make(Sequence, len(cols))
		for j, col := range cols {
			out[j] = dot(row, col)
		}
		rows[i] = out
	}
	return FromRows(rows...)
}

func dot(a, b Sequence) *autodiff.Node {
	terms := make([]*autodiff.Node, len(a))
	for k := range a {
		terms[k] = autodiff.NewMultiply(a[k], b[k])
	}
	return autodiff.NewSum(terms...)
}

// Add returns the elementwise sum a + b.
//
// Panics with *ShapeError if the shapes differ.
func Add(a, b *Matrix) *Matrix {
	checkSameShape("nn.Add", a, b)
	return zipWith(a, b, autodiff.NewAdd)
}

// Hadamard returns the elementwise product a ⊙ b.
//
// Panics with *ShapeError if the shapes differ.
func Hadamard(a, b *Matrix) *Matrix {
	checkSameShape("nn.Hadamard", a, b)
	return zipWith(a, b, autodiff.NewMultiply)
}

// Scale multiplies every cell of m by the constant c.
func Scale(m *Matrix, c float64) *Matrix {
	h, w := m.Dims()
	return Hadamard(m, NewConstantMatrix(h, w, c))
}

// AddRow adds row to every row of m.
//
// Panics with *ShapeError if len(row) != m.Width().
func AddRow(m *Matrix, row Sequence) *Matrix {
	if len(row) != m.Width() {
		shapePanic("nn.AddRow", "row of %d nodes vs width %d", len(row), m.Width())
	}
	rows := make([]Sequence, m.Height())
	for i := range rows {
		src := m.Row(i)
		out := make(Sequence, len(src))
		for j, n := range src {
			out[j] = autodiff.NewAdd(n, row[j])
		}
		rows[i] = out
	}
	return FromRows(rows...)
}

// Apply wraps every cell of m in an activation node.
func Apply(m *Matrix, act ops.Activation) *Matrix {
	return m.Map(func(n *autodiff.Node) *autodiff.Node {
		return autodiff.NewActivation(n, act)
	})
}

// Dropout wraps every cell of m in a dropout node with the given rate.
func Dropout(m *Matrix, rate float64) *Matrix {
	return m.Map(func(n *autodiff.Node) *autodiff.Node {
		return autodiff.NewDropout(n, rate)
	})
}

// SoftmaxRows replaces every cell with the softmax probability of that cell
// within its row, at the given temperature.
func SoftmaxRows(m *Matrix, temperature float64) *Matrix {
	return perRow(m, func(n *autodiff.Node, others []*autodiff.Node) *autodiff.Node {
		return autodiff.NewSoftmax(n, others, temperature)
	})
}

// NormalizeRows replaces every cell with its value standardized against the
// population statistics of its row.
func NormalizeRows(m *Matrix, epsilon float64) *Matrix {
	return perRow(m, func(n *autodiff.Node, others []*autodiff.Node) *autodiff.Node {
		return autodiff.NewNorm(n, others, epsilon)
	})
}

// perRow builds one node per cell from the cell and the other cells of its
// row, in row order.
func perRow(m *Matrix, build func(n *autodiff.Node, others []*autodiff.Node) *autodiff.Node) *Matrix {
	rows := make([]Sequence, m.Height())
	for i := range rows {
		src := m.Row(i)
		out := make(Sequence, len(src))
		for j, n := range src {
			out[j] = build(n, without(src, j))
		}
		rows[i] = out
	}
	return FromRows(rows...)
}

func without(s Sequence, skip int) []*autodiff.Node {
	out := make([]*autodiff.Node, 0, len(s)-1)
	out = append(out, s[:skip]...)
	return append(out, s[skip+1:]...)
}

func zipWith(a, b *Matrix, f func(x, y *autodiff.Node) *autodiff.Node) *Matrix {
	rows := make([]Sequence, a.Height())
	for i := range rows {
		ra, rb := a.Row(i), b.Row(i)
		out := make(Sequence, len(ra))
		for j := range ra {
			out[j] = f(ra[j], rb[j])
		}
		rows[i] = out
	}
	return FromRows(rows...)
}

func checkSameShape(op string, a, b *Matrix) {
	ah, aw := a.Dims()
	bh, bw := b.Dims()
	if ah != bh || aw != bw {
		shapePanic(op, "[%d×%d] vs [%d×%d]", ah, aw, bh, bw)
	}
}
