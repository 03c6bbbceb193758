package nn

import (
	"slices"

	"github.com/born-ml/nodegrad/internal/autodiff"
)

// Sequence is an ordered list of nodes forming one row or one column of a
// Matrix.
type Sequence []*autodiff.Node

// Matrix is a lazy two-dimensional view over graph nodes.
//
// A Matrix is backed either by its rows or by its columns. Accessors for the
// other orientation are derived on demand, and T swaps the interpretation of
// the same backing lines without copying nodes. Matrices hold no numeric
// state: every composition operator only creates graph edges.
//
// Example:
//
//	x := nn.NewInputMatrix(1, 3)
//	w, _ := nn.NewParameterMatrix(3, 2, nn.Fill(0.5))
//	y := nn.MatMul(x.Matrix(), w) // 1x2, one Sum-of-Multiply node per cell
type Matrix struct {
	lines  []Sequence
	byCols bool
}

// FromRows creates a row-backed matrix.
//
// Panics with *ShapeError if the rows differ in length.
func FromRows(rows ...Sequence) *Matrix {
	checkLines("nn.FromRows", rows)
	return &Matrix{lines: rows}
}

// FromCols creates a column-backed matrix.
//
// Panics with *ShapeError if the columns differ in length.
func FromCols(cols ...Sequence) *Matrix {
	checkLines("nn.FromCols", cols)
	return &Matrix{lines: cols, byCols: true}
}

func checkLines(op string, lines []Sequence) {
	for i := 1; i < len(lines); i++ {
		if len(lines[i]) != len(lines[0]) {
			shapePanic(op, "line %d has %d nodes, line 0 has %d", i, len(lines[i]), len(lines[0]))
		}
	}
}

// Height returns the number of rows.
func (m *Matrix) Height() int {
	if !m.byCols {
		return len(m.lines)
	}
	if len(m.lines) == 0 {
		return 0
	}
	return len(m.lines[0])
}

// Width returns the number of columns.
func (m *Matrix) Width() int {
	if m.byCols {
		return len(m.lines)
	}
	if len(m.lines) == 0 {
		return 0
	}
	return len(m.lines[0])
}

// Dims returns the height and width.
func (m *Matrix) Dims() (rows, cols int) {
	return m.Height(), m.Width()
}

// At returns the node at row i, column j.
func (m *Matrix) At(i, j int) *autodiff.Node {
	if m.byCols {
		return m.lines[j][i]
	}
	return m.lines[i][j]
}

// Row returns row i. The result must not be modified.
func (m *Matrix) Row(i int) Sequence {
	if !m.byCols {
		return m.lines[i]
	}
	row := make(Sequence, len(m.lines))
	for j, col := range m.lines {
		row[j] = col[i]
	}
	return row
}

// Col returns column j. The result must not be modified.
func (m *Matrix) Col(j int) Sequence {
	if m.byCols {
		return m.lines[j]
	}
	col := make(Sequence, len(m.lines))
	for i, row := range m.lines {
		col[i] = row[j]
	}
	return col
}

// Rows returns every row.
func (m *Matrix) Rows() []Sequence {
	if !m.byCols {
		return slices.Clone(m.lines)
	}
	rows := make([]Sequence, m.Height())
	for i := range rows {
		rows[i] = m.Row(i)
	}
	return rows
}

// Cols returns every column.
func (m *Matrix) Cols() []Sequence {
	if m.byCols {
		return slices.Clone(m.lines)
	}
	cols := make([]Sequence, m.Width())
	for j := range cols {
		cols[j] = m.Col(j)
	}
	return cols
}

// T returns the transpose. It shares the backing lines with m.
func (m *Matrix) T() *Matrix {
	return &Matrix{lines: m.lines, byCols: !m.byCols}
}

// ConcatRows stacks the rows of o below the rows of m.
//
// Panics with *ShapeError if the widths differ.
func (m *Matrix) ConcatRows(o *Matrix) *Matrix {
	if m.Width() != o.Width() {
		shapePanic("nn.ConcatRows", "width %d vs %d", m.Width(), o.Width())
	}
	return FromRows(append(m.Rows(), o.Rows()...)...)
}

// ConcatCols places the columns of o right of the columns of m.
//
// Panics with *ShapeError if the heights differ.
func (m *Matrix) ConcatCols(o *Matrix) *Matrix {
	if m.Height() != o.Height() {
		shapePanic("nn.ConcatCols", "height %d vs %d", m.Height(), o.Height())
	}
	return FromCols(append(m.Cols(), o.Cols()...)...)
}

// Nodes returns every node in row-major order.
func (m *Matrix) Nodes() []*autodiff.Node {
	h, w := m.Dims()
	nodes := make([]*autodiff.Node, 0, h*w)
	for i := range h {
		nodes = append(nodes, m.Row(i)...)
	}
	return nodes
}

// Map returns a row-backed matrix with f applied to every node.
func (m *Matrix) Map(f func(*autodiff.Node) *autodiff.Node) *Matrix {
	h, w := m.Dims()
	rows := make([]Sequence, h)
	for i := range h {
		row := m.Row(i)
		out := make(Sequence, w)
		for j, n := range row {
			out[j] = f(n)
		}
		rows[i] = out
	}
	return &Matrix{lines: rows}
}
