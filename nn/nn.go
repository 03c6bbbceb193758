// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand/v2"

	"github.com/born-ml/nodegrad/autodiff"
	"github.com/born-ml/nodegrad/internal/nn"
)

// Errors returned by networks.
var (
	ErrUntrainedModel = nn.ErrUntrainedModel
	ErrParameterCount = nn.ErrParameterCount
)

// ShapeError reports incompatible matrix dimensions.
type ShapeError = nn.ShapeError

// Matrices

// Sequence is an ordered list of nodes.
type Sequence = nn.Sequence

// Matrix is a row/column addressable grid of nodes.
type Matrix = nn.Matrix

// FromRows builds a matrix from equally long rows.
func FromRows(rows ...Sequence) *Matrix {
	return nn.FromRows(rows...)
}

// FromCols builds a matrix from equally long columns.
func FromCols(cols ...Sequence) *Matrix {
	return nn.FromCols(cols...)
}

// InputMatrix is a grid of input nodes bound from a numeric matrix.
type InputMatrix = nn.InputMatrix

// NewInputMatrix creates a rows x cols grid of unbound inputs.
func NewInputMatrix(rows, cols int) *InputMatrix {
	return nn.NewInputMatrix(rows, cols)
}

// NewConstantMatrix creates a rows x cols matrix of constant nodes.
func NewConstantMatrix(rows, cols int, v float64) *Matrix {
	return nn.NewConstantMatrix(rows, cols, v)
}

// NewParameterMatrix creates a rows x cols matrix of learnable parameters.
func NewParameterMatrix(rows, cols int, init Initializer) (*Matrix, []*autodiff.Parameter) {
	return nn.NewParameterMatrix(rows, cols, init)
}

// MatMul returns the matrix product a · b.
func MatMul(a, b *Matrix) *Matrix {
	return nn.MatMul(a, b)
}

// Add returns the entry-wise sum of a and b.
func Add(a, b *Matrix) *Matrix {
	return nn.Add(a, b)
}

// Hadamard returns the entry-wise product of a and b.
func Hadamard(a, b *Matrix) *Matrix {
	return nn.Hadamard(a, b)
}

// Scale multiplies every entry of m by c.
func Scale(m *Matrix, c float64) *Matrix {
	return nn.Scale(m, c)
}

// AddRow adds row to every row of m.
func AddRow(m *Matrix, row Sequence) *Matrix {
	return nn.AddRow(m, row)
}

// Apply applies act to every entry of m.
func Apply(m *Matrix, act autodiff.Activation) *Matrix {
	return nn.Apply(m, act)
}

// Dropout wraps every entry of m in a dropout node.
func Dropout(m *Matrix, rate float64) *Matrix {
	return nn.Dropout(m, rate)
}

// SoftmaxRows applies a softmax with the given temperature to every row.
func SoftmaxRows(m *Matrix, temperature float64) *Matrix {
	return nn.SoftmaxRows(m, temperature)
}

// NormalizeRows standardizes every row of m.
func NormalizeRows(m *Matrix, epsilon float64) *Matrix {
	return nn.NormalizeRows(m, epsilon)
}

// Initialization

// Initializer draws initial parameter values.
type Initializer = nn.Initializer

// Uniform draws from U(lo, hi).
func Uniform(lo, hi float64, src rand.Source) Initializer {
	return nn.Uniform(lo, hi, src)
}

// Gaussian draws from N(mean, std²).
func Gaussian(mean, std float64, src rand.Source) Initializer {
	return nn.Gaussian(mean, std, src)
}

// Xavier draws from U(-sqrt(6/(fanIn+fanOut)), sqrt(6/(fanIn+fanOut))).
func Xavier(fanIn, fanOut int, src rand.Source) Initializer {
	return nn.Xavier(fanIn, fanOut, src)
}

// Fill returns v for every draw.
func Fill(v float64) Initializer {
	return nn.Fill(v)
}

// Layers

// Layer is a building block with an output matrix and parameters.
type Layer = nn.Layer

// DenseLinear computes x · W (+ b).
type DenseLinear = nn.DenseLinear

// NewDenseLinear creates a dense layer projecting input to size columns.
//
// Example:
//
//	dense := nn.NewDenseLinear(x, 16, nn.Xavier(x.Width(), 16, nil), true)
func NewDenseLinear(input *Matrix, size int, init Initializer, useBias bool) *DenseLinear {
	return nn.NewDenseLinear(input, size, init, useBias)
}

// DefaultNormEpsilon is the variance offset of Norm layers.
const DefaultNormEpsilon = nn.DefaultNormEpsilon

// Norm standardizes every row and applies a learnable scale and shift.
type Norm = nn.Norm

// NewNorm creates a Norm layer over input.
func NewNorm(input *Matrix, epsilon float64) *Norm {
	return nn.NewNorm(input, epsilon)
}

// AttentionConfig configures a single attention head.
type AttentionConfig = nn.AttentionConfig

// Attention is scaled dot-product attention over projected inputs.
type Attention = nn.Attention

// NewAttention creates an attention head.
func NewAttention(key, query, value *Matrix, cfg AttentionConfig) *Attention {
	return nn.NewAttention(key, query, value, cfg)
}

// MultiHeadAttentionConfig configures a MultiHeadAttention layer.
type MultiHeadAttentionConfig = nn.MultiHeadAttentionConfig

// MultiHeadAttention runs several heads and projects their concatenation.
type MultiHeadAttention = nn.MultiHeadAttention

// NewMultiHeadAttention creates a multi-head attention layer.
func NewMultiHeadAttention(key, query, value *Matrix, cfg MultiHeadAttentionConfig) *MultiHeadAttention {
	return nn.NewMultiHeadAttention(key, query, value, cfg)
}

// FeedForward is the two-layer position-wise network of transformer blocks.
type FeedForward = nn.FeedForward

// NewFeedForward creates a feed-forward network with a hidden layer of size.
func NewFeedForward(input *Matrix, size int, act autodiff.Activation, src rand.Source) *FeedForward {
	return nn.NewFeedForward(input, size, act, src)
}

// Transformer

// BlockConfig configures encoder and decoder blocks.
type BlockConfig = nn.BlockConfig

// AddNorm adds a residual and normalizes the sum.
type AddNorm = nn.AddNorm

// NewAddNorm creates an AddNorm layer.
func NewAddNorm(x, residual *Matrix) *AddNorm {
	return nn.NewAddNorm(x, residual)
}

// EncoderBlock is self-attention followed by a feed-forward network.
type EncoderBlock = nn.EncoderBlock

// NewEncoderBlock creates an encoder block over input.
func NewEncoderBlock(input *Matrix, cfg BlockConfig, src rand.Source) *EncoderBlock {
	return nn.NewEncoderBlock(input, cfg, src)
}

// DecoderBlock is masked self-attention, cross-attention over the encoder
// output and a feed-forward network.
type DecoderBlock = nn.DecoderBlock

// NewDecoderBlock creates a decoder block over input attending to encoder.
func NewDecoderBlock(input, encoder *Matrix, cfg BlockConfig, src rand.Source) *DecoderBlock {
	return nn.NewDecoderBlock(input, encoder, cfg, src)
}

// Networks

// Network binds an input grid to an output matrix.
type Network = nn.Network

// NewNetwork creates a network from an input grid and an output matrix.
func NewNetwork(input *InputMatrix, output *Matrix) *Network {
	return nn.NewNetwork(input, output)
}

// MLPConfig defines a multilayer perceptron.
type MLPConfig = nn.MLPConfig

// NewMultilayerPerceptron builds a fully connected network.
func NewMultilayerPerceptron(cfg MLPConfig) (*Network, error) {
	return nn.NewMultilayerPerceptron(cfg)
}

// TransformerConfig defines an encoder-decoder transformer.
type TransformerConfig = nn.TransformerConfig

// NewTransformer builds an encoder-decoder transformer.
//
// Example:
//
//	net, err := nn.NewTransformer(nn.TransformerConfig{
//	    Width: 3, EncoderLength: 3, DecoderLength: 3,
//	    EncoderCount: 1, DecoderCount: 1,
//	    Encoder: block, Decoder: block,
//	})
func NewTransformer(cfg TransformerConfig) (*Network, error) {
	return nn.NewTransformer(cfg)
}

// DenseUnembedder returns a TransformerConfig.Unembedder projecting every
// decoder row to size logits.
func DenseUnembedder(size int, src rand.Source) func(*Matrix) *Matrix {
	return nn.DenseUnembedder(size, src)
}

// Loss functions

// LossFunc scores a prediction and returns its gradient.
type LossFunc = nn.LossFunc

// Loss functions.
type (
	MeanSquaredError        = nn.MeanSquaredError
	BinaryCrossEntropy      = nn.BinaryCrossEntropy
	CategoricalCrossEntropy = nn.CategoricalCrossEntropy
)

// LossByName returns the loss function with the given name.
func LossByName(name string) (LossFunc, error) {
	return nn.LossByName(name)
}
