// Package nn builds neural networks as graphs of scalar autodiff nodes.
//
// This package provides:
//   - Matrix: a lazy row/column view over nodes with O(1) transpose
//   - Composition operators: MatMul, Add, Hadamard, AddRow, Apply, Dropout,
//     SoftmaxRows, NormalizeRows
//   - Layers: DenseLinear, Norm, Attention, MultiHeadAttention, FeedForward,
//     AddNorm, EncoderBlock, DecoderBlock
//   - Networks: MultilayerPerceptron and Transformer, both *Network
//   - Loss functions over gonum matrices
//
// Layers are built once over an input Matrix and only wire graph edges;
// numbers flow when Network.Predict activates the output nodes.
package nn

import (
	"github.com/born-ml/nodegrad/internal/autodiff"
)

// Layer is a composite of graph nodes built over one or more input matrices.
//
// Every layer must implement:
//   - Output: the matrix of nodes produced by the layer
//   - Parameters: the learnable parameters created by the layer, including
//     those of nested layers
type Layer interface {
	Output() *Matrix
	Parameters() []*autodiff.Parameter
}

func collect(layers ...Layer) []*autodiff.Parameter {
	var params []*autodiff.Parameter
	for _, l := range layers {
		params = append(params, l.Parameters()...)
	}
	return params
}
