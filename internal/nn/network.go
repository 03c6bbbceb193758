package nn

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/nodegrad/internal/autodiff"
)

// InputMatrix is a grid of input nodes fed by Network.Predict.
type InputMatrix struct {
	inputs [][]*autodiff.Input
	matrix *Matrix
}

// NewInputMatrix creates a rows x cols grid of unset inputs.
func NewInputMatrix(rows, cols int) *InputMatrix {
	inputs := make([][]*autodiff.Input, rows)
	lines := make([]Sequence, rows)
	for i := range rows {
		inputs[i] = make([]*autodiff.Input, cols)
		lines[i] = make(Sequence, cols)
		for j := range cols {
			in := autodiff.NewInput()
			inputs[i][j] = in
			lines[i][j] = in.Node
		}
	}
	return &InputMatrix{inputs: inputs, matrix: FromRows(lines...)}
}

// Matrix returns the grid as a node matrix.
func (m *InputMatrix) Matrix() *Matrix {
	return m.matrix
}

// Dims returns the grid height and width.
func (m *InputMatrix) Dims() (rows, cols int) {
	return m.matrix.Dims()
}

// At returns the input at row i, column j.
func (m *InputMatrix) At(i, j int) *autodiff.Input {
	return m.inputs[i][j]
}

// ConcatRows stacks the inputs of o below the inputs of m.
//
// Panics with *ShapeError if the widths differ.
func (m *InputMatrix) ConcatRows(o *InputMatrix) *InputMatrix {
	return &InputMatrix{
		inputs: append(slices.Clone(m.inputs), o.inputs...),
		matrix: m.matrix.ConcatRows(o.matrix),
	}
}

// Bind sets every input to the corresponding entry of x.
func (m *InputMatrix) Bind(x mat.Matrix) error {
	rows, cols := m.Dims()
	xr, xc := x.Dims()
	if rows != xr || cols != xc {
		return &ShapeError{
			Op:      "nn.InputMatrix.Bind",
			Details: fmt.Sprintf("input grid [%d×%d] vs predictor [%d×%d]", rows, cols, xr, xc),
		}
	}
	for i, row := range m.inputs {
		for j, in := range row {
			in.Set(x.At(i, j))
		}
	}
	return nil
}

// Network binds an input grid to an output matrix of the same node graph.
//
// A Network is not safe for concurrent use: predictions share node caches.
// Build one Network per goroutine (see train.Evaluate).
type Network struct {
	input  *InputMatrix
	output *Matrix
	params []*autodiff.Parameter
	// collected is set once params holds the traversal result, even when empty.
	collected bool
}

// NewNetwork creates a network over an already wired graph.
func NewNetwork(input *InputMatrix, output *Matrix) *Network {
	return &Network{input: input, output: output}
}

// Input returns the input grid.
func (n *Network) Input() *InputMatrix {
	return n.input
}

// Output returns the output matrix.
func (n *Network) Output() *Matrix {
	return n.output
}

// Predict runs a forward pass in a fresh inference session.
//
// Returns *ShapeError if x does not match the input grid, or
// autodiff.ErrUnsetInput if the graph reaches inputs outside the grid.
func (n *Network) Predict(x mat.Matrix) (*mat.Dense, error) {
	return n.PredictSession(autodiff.NewSession(false), x)
}

// PredictSession binds x to the input grid and activates every output node
// in session s. Training sessions enable dropout.
func (n *Network) PredictSession(s *autodiff.Session, x mat.Matrix) (*mat.Dense, error) {
	if err := n.input.Bind(x); err != nil {
		return nil, err
	}
	rows, cols := n.output.Dims()
	data := make([]float64, 0, rows*cols)
	for _, node := range n.output.Nodes() {
		v, err := node.Activate(s)
		if err != nil {
			return nil, fmt.Errorf("nn: predict: %w", err)
		}
		data = append(data, v)
	}
	return mat.NewDense(rows, cols, data), nil
}

// Parameters returns every parameter reachable from the output, each once,
// in depth-first order from the output nodes. The list is computed on first
// use and cached for the lifetime of the network.
func (n *Network) Parameters() []*autodiff.Parameter {
	if !n.collected {
		n.params = autodiff.CollectParameters(n.output.Nodes()...)
		n.collected = true
	}
	return slices.Clone(n.params)
}

// SetLossGradient seeds every output node with the matching entry of grad in
// session s.
func (n *Network) SetLossGradient(s *autodiff.Session, grad mat.Matrix) error {
	rows, cols := n.output.Dims()
	gr, gc := grad.Dims()
	if rows != gr || cols != gc {
		return &ShapeError{
			Op:      "nn.Network.SetLossGradient",
			Details: fmt.Sprintf("output [%d×%d] vs gradient [%d×%d]", rows, cols, gr, gc),
		}
	}
	for i := range rows {
		for j := range cols {
			n.output.At(i, j).SetLossGradient(s, grad.At(i, j))
		}
	}
	return nil
}

// ParameterValues returns the parameter values in Parameters order.
func (n *Network) ParameterValues() []float64 {
	params := n.Parameters()
	values := make([]float64, len(params))
	for i, p := range params {
		values[i] = p.Value()
	}
	return values
}

// SetParameterValues overwrites the parameter values in Parameters order.
//
// Returns ErrUntrainedModel if the network has no parameters and
// ErrParameterCount if len(values) differs from the parameter count.
func (n *Network) SetParameterValues(values []float64) error {
	params := n.Parameters()
	if len(params) == 0 {
		return ErrUntrainedModel
	}
	if len(values) != len(params) {
		return fmt.Errorf("%w: network has %d, got %d", ErrParameterCount, len(params), len(values))
	}
	for i, p := range params {
		p.SetValue(values[i])
	}
	return nil
}
