package nn

import (
	"slices"

	"github.com/born-ml/nodegrad/internal/autodiff"
)

// DenseLinear implements a fully connected layer over the rows of its input.
//
// Performs: y = x · W + b
// where:
//   - x is the input matrix [height × inFeatures]
//   - W is a parameter matrix [inFeatures × size]
//   - b is an optional parameter row [size], added to every row
//   - y is the output matrix [height × size]
//
// Biases are initialized to zero.
//
// Example:
//
//	in := nn.NewInputMatrix(1, 784)
//	layer := nn.NewDenseLinear(in.Matrix(), 128, nn.Xavier(784, 128, nil), true)
//	out := layer.Output() // 1x128
type DenseLinear struct {
	inFeatures  int
	outFeatures int
	weight      *Matrix
	bias        Sequence
	params      []*autodiff.Parameter
	output      *Matrix
}

// NewDenseLinear creates a dense layer over input.
//
// Parameters:
//   - input: Input matrix; its width is the number of input features
//   - size: Number of output features
//   - init: Weight initializer
//   - useBias: Whether to add a zero-initialized bias row
func NewDenseLinear(input *Matrix, size int, init Initializer, useBias bool) *DenseLinear {
	weight, params := NewParameterMatrix(input.Width(), size, init)
	output := MatMul(input, weight)

	var bias Sequence
	if useBias {
		var biasParams []*autodiff.Parameter
		bias, biasParams = NewParameterRow(size, Fill(0))
		params = append(params, biasParams...)
		output = AddRow(output, bias)
	}

	return &DenseLinear{
		inFeatures:  input.Width(),
		outFeatures: size,
		weight:      weight,
		bias:        bias,
		params:      params,
		output:      output,
	}
}

// Output returns the layer output.
func (l *DenseLinear) Output() *Matrix {
	return l.output
}

// Parameters returns the weights in row-major order followed by the bias.
func (l *DenseLinear) Parameters() []*autodiff.Parameter {
	return slices.Clone(l.params)
}

// Weight returns the weight matrix [inFeatures × size].
func (l *DenseLinear) Weight() *Matrix {
	return l.weight
}

// Bias returns the bias row, or nil when the layer has no bias.
func (l *DenseLinear) Bias() Sequence {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *DenseLinear) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *DenseLinear) OutFeatures() int {
	return l.outFeatures
}
