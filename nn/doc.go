// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides matrix layers and networks built from scalar graph
// nodes.
//
// # Overview
//
// This package contains:
//   - Matrices: Matrix, Sequence, InputMatrix, MatMul, Add, Hadamard, Scale
//   - Layers: DenseLinear, Norm, Attention, MultiHeadAttention, FeedForward
//   - Transformer blocks: AddNorm, EncoderBlock, DecoderBlock
//   - Networks: Network, NewMultilayerPerceptron, NewTransformer
//   - Loss functions: MeanSquaredError, BinaryCrossEntropy, CategoricalCrossEntropy
//   - Initialization: Uniform, Gaussian, Xavier, Fill
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/nodegrad/autodiff"
//	    "github.com/born-ml/nodegrad/nn"
//	)
//
//	func main() {
//	    net, err := nn.NewMultilayerPerceptron(nn.MLPConfig{
//	        InputWidth:        2,
//	        HiddenWidths:      []int{8},
//	        OutputWidth:       1,
//	        HiddenActivations: []autodiff.Activation{autodiff.Tanh{}},
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    y, err := net.Predict(mat.NewDense(1, 2, []float64{0.5, -1}))
//	}
//
// # Composing Layers
//
// Layers wire nodes at construction time, so a shape mismatch panics with
// a *ShapeError before any value is computed:
//
//	in := nn.NewInputMatrix(4, 8)
//	x := in.Matrix()
//	attn := nn.NewMultiHeadAttention(x, x, x, nn.MultiHeadAttentionConfig{
//	    Heads:                 2,
//	    ProjectedKeyQuerySize: 4,
//	    ProjectedValueSize:    4,
//	})
//	net := nn.NewNetwork(in, nn.SoftmaxRows(attn.Output(), 1))
//
// # Parameter Persistence
//
// Parameters are saved as a flat list in Network.Parameters order. Loading
// requires a network of identical topology:
//
//	err := net.SaveParameters("model.json")
//	err = clone.LoadParameters("model.json")
package nn
