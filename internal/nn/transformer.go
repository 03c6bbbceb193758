package nn

import (
	"fmt"
	"math/rand/v2"

	"github.com/born-ml/nodegrad/internal/autodiff"
	"github.com/born-ml/nodegrad/internal/autodiff/ops"
)

// BlockConfig defines the configuration of an encoder or decoder block.
type BlockConfig struct {
	Heads                 int            // Attention heads per multi-head attention
	ProjectedKeyQuerySize int            // Per-head key/query width
	ProjectedValueSize    int            // Per-head value width
	FeedForwardSize       int            // Hidden width of the feed-forward network
	Activation            ops.Activation // Feed-forward activation (nil = ReLU)
	DropoutRate           float64        // Dropout after every sub-block (0 = none)
	Temperature           float64        // Attention softmax temperature (0 = 1)
}

func (c BlockConfig) validate(op string) {
	if c.Heads <= 0 {
		panic(fmt.Sprintf("%s: heads must be positive, got %d", op, c.Heads))
	}
	if c.ProjectedKeyQuerySize <= 0 || c.ProjectedValueSize <= 0 {
		panic(fmt.Sprintf("%s: projected sizes must be positive, got %d and %d",
			op, c.ProjectedKeyQuerySize, c.ProjectedValueSize))
	}
	if c.FeedForwardSize <= 0 {
		panic(fmt.Sprintf("%s: feed-forward size must be positive, got %d", op, c.FeedForwardSize))
	}
	if c.DropoutRate < 0 || c.DropoutRate > 1 {
		panic(fmt.Sprintf("%s: dropout rate must be in [0, 1], got %v", op, c.DropoutRate))
	}
}

func (c BlockConfig) attention(masked bool, src rand.Source) MultiHeadAttentionConfig {
	return MultiHeadAttentionConfig{
		Heads:                 c.Heads,
		ProjectedKeyQuerySize: c.ProjectedKeyQuerySize,
		ProjectedValueSize:    c.ProjectedValueSize,
		Masked:                masked,
		Temperature:           c.Temperature,
		Source:                src,
	}
}

// AddNorm implements the residual connection of a transformer sub-block:
//
//	AddNorm(x, residual) = Norm(x + residual)
type AddNorm struct {
	norm *Norm
}

// NewAddNorm creates a residual add followed by layer normalization.
//
// Panics with *ShapeError if x and residual have different shapes.
func NewAddNorm(x, residual *Matrix) *AddNorm {
	return &AddNorm{norm: NewNorm(Add(x, residual), DefaultNormEpsilon)}
}

// Output returns the normalized sum.
func (a *AddNorm) Output() *Matrix {
	return a.norm.Output()
}

// Parameters returns the normalization scale and shift.
func (a *AddNorm) Parameters() []*autodiff.Parameter {
	return a.norm.Parameters()
}

// EncoderBlock implements a post-norm transformer encoder block.
//
// Architecture:
//
//	x → MHA(x, x, x) → Dropout → AddNorm(·, x) = a
//	a → FeedForward → Dropout → AddNorm(·, a) → output
type EncoderBlock struct {
	Attention   *MultiHeadAttention
	AttnNorm    *AddNorm
	FeedForward *FeedForward
	FFNNorm     *AddNorm
}

// NewEncoderBlock creates an encoder block over input.
//
// Panics if the configuration is invalid.
func NewEncoderBlock(input *Matrix, cfg BlockConfig, src rand.Source) *EncoderBlock {
	cfg.validate("EncoderBlock")

	att := NewMultiHeadAttention(input, input, input, cfg.attention(false, src))
	attNorm := NewAddNorm(Dropout(att.Output(), cfg.DropoutRate), input)

	ffn := NewFeedForward(attNorm.Output(), cfg.FeedForwardSize, cfg.Activation, src)
	ffnNorm := NewAddNorm(Dropout(ffn.Output(), cfg.DropoutRate), attNorm.Output())

	return &EncoderBlock{
		Attention:   att,
		AttnNorm:    attNorm,
		FeedForward: ffn,
		FFNNorm:     ffnNorm,
	}
}

// Output returns the block output, shaped like the block input.
func (b *EncoderBlock) Output() *Matrix {
	return b.FFNNorm.Output()
}

// Parameters returns every parameter of the block in sub-block order.
func (b *EncoderBlock) Parameters() []*autodiff.Parameter {
	return collect(b.Attention, b.AttnNorm, b.FeedForward, b.FFNNorm)
}

// DecoderBlock implements a post-norm transformer decoder block.
//
// Architecture:
//
//	x → masked MHA(x, x, x) → Dropout → AddNorm(·, x) = a
//	a → MHA(key=enc, query=a, value=enc) → Dropout → AddNorm(·, a) = c
//	c → FeedForward → Dropout → AddNorm(·, c) → output
type DecoderBlock struct {
	SelfAttention  *MultiHeadAttention
	SelfNorm       *AddNorm
	CrossAttention *MultiHeadAttention
	CrossNorm      *AddNorm
	FeedForward    *FeedForward
	FFNNorm        *AddNorm
}

// NewDecoderBlock creates a decoder block over input attending to encoder.
//
// Panics if the configuration is invalid, or with *ShapeError if encoder and
// input widths differ.
func NewDecoderBlock(input, encoder *Matrix, cfg BlockConfig, src rand.Source) *DecoderBlock {
	cfg.validate("DecoderBlock")
	if input.Width() != encoder.Width() {
		shapePanic("nn.NewDecoderBlock", "decoder width %d vs encoder width %d", input.Width(), encoder.Width())
	}

	self := NewMultiHeadAttention(input, input, input, cfg.attention(true, src))
	selfNorm := NewAddNorm(Dropout(self.Output(), cfg.DropoutRate), input)

	cross := NewMultiHeadAttention(encoder, selfNorm.Output(), encoder, cfg.attention(false, src))
	crossNorm := NewAddNorm(Dropout(cross.Output(), cfg.DropoutRate), selfNorm.Output())

	ffn := NewFeedForward(crossNorm.Output(), cfg.FeedForwardSize, cfg.Activation, src)
	ffnNorm := NewAddNorm(Dropout(ffn.Output(), cfg.DropoutRate), crossNorm.Output())

	return &DecoderBlock{
		SelfAttention:  self,
		SelfNorm:       selfNorm,
		CrossAttention: cross,
		CrossNorm:      crossNorm,
		FeedForward:    ffn,
		FFNNorm:        ffnNorm,
	}
}

// Output returns the block output, shaped like the block input.
func (b *DecoderBlock) Output() *Matrix {
	return b.FFNNorm.Output()
}

// Parameters returns every parameter of the block in sub-block order.
func (b *DecoderBlock) Parameters() []*autodiff.Parameter {
	return collect(b.SelfAttention, b.SelfNorm, b.CrossAttention, b.CrossNorm, b.FeedForward, b.FFNNorm)
}
