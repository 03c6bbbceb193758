package nn

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/born-ml/nodegrad/internal/autodiff"
)

// MultiHeadAttentionConfig configures a MultiHeadAttention layer.
type MultiHeadAttentionConfig struct {
	Heads                 int         // Number of independent attention heads
	ProjectedKeyQuerySize int         // Per-head key/query width
	ProjectedValueSize    int         // Per-head value width
	Masked                bool        // Causal mask in every head
	Temperature           float64     // Softmax temperature (0 = 1)
	Source                rand.Source // Weight initialization source (nil = global)
}

// MultiHeadAttention runs several attention heads in parallel and projects
// their concatenation back to the value width.
//
// Architecture:
//
//	head_i = Attention_i(K, Q, V)
//	MHA    = concat(head_1, ..., head_h) · Wo
//
// Wo has shape [Heads·ProjectedValueSize × value width] and is Xavier
// initialized with bound sqrt(6/(Heads·ProjectedValueSize + value width)).
//
// Example:
//
//	mha := nn.NewMultiHeadAttention(x, x, x, nn.MultiHeadAttentionConfig{
//	    Heads: 2, ProjectedKeyQuerySize: 4, ProjectedValueSize: 4,
//	})
//	out := mha.Output() // same shape as x
type MultiHeadAttention struct {
	heads      []*Attention
	projection *Matrix
	params     []*autodiff.Parameter
	output     *Matrix
}

// NewMultiHeadAttention creates a multi-head attention layer.
//
// Panics if Heads is not positive.
func NewMultiHeadAttention(key, query, value *Matrix, cfg MultiHeadAttentionConfig) *MultiHeadAttention {
	if cfg.Heads <= 0 {
		panic(fmt.Sprintf("MultiHeadAttention: heads must be positive, got %d", cfg.Heads))
	}

	heads := make([]*Attention, cfg.Heads)
	var params []*autodiff.Parameter
	var concat *Matrix
	for h := range heads {
		heads[h] = NewAttention(key, query, value, AttentionConfig{
			ProjectedKeyQuerySize: cfg.ProjectedKeyQuerySize,
			ProjectedValueSize:    cfg.ProjectedValueSize,
			Masked:                cfg.Masked,
			Temperature:           cfg.Temperature,
			Source:                cfg.Source,
		})
		params = append(params, heads[h].Parameters()...)
		if concat == nil {
			concat = heads[h].Output()
		} else {
			concat = concat.ConcatCols(heads[h].Output())
		}
	}

	fanIn := cfg.Heads * cfg.ProjectedValueSize
	projection, projParams := NewParameterMatrix(fanIn, value.Width(), Xavier(fanIn, value.Width(), cfg.Source))
	params = append(params, projParams...)

	return &MultiHeadAttention{
		heads:      heads,
		projection: projection,
		params:     params,
		output:     MatMul(concat, projection),
	}
}

// Output returns the projected attention [query height × value width].
func (m *MultiHeadAttention) Output() *Matrix {
	return m.output
}

// Heads returns the attention heads.
func (m *MultiHeadAttention) Heads() []*Attention {
	return slices.Clone(m.heads)
}

// Parameters returns every head's weights followed by the output projection.
func (m *MultiHeadAttention) Parameters() []*autodiff.Parameter {
	return slices.Clone(m.params)
}
