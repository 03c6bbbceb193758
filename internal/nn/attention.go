package nn

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/born-ml/nodegrad/internal/autodiff"
)

// AttentionConfig configures one scaled dot-product attention head.
type AttentionConfig struct {
	ProjectedKeyQuerySize int         // Width of the projected keys and queries
	ProjectedValueSize    int         // Width of the projected values
	Masked                bool        // Causal mask: row i attends to key rows j <= i only
	Temperature           float64     // Softmax temperature (0 = 1)
	Source                rand.Source // Weight initialization source (nil = global)
}

// Attention implements a single scaled dot-product attention head.
//
// Formula:
//
//	Attention(K, Q, V) = softmax((Q·Wq)(K·Wk)ᵀ / sqrt(dk) / T) · (V·Wv)
//
// where dk is the width of the key input and T the softmax temperature.
// Projection weights use Xavier uniform initialization.
//
// With Masked set, similarity cells above the diagonal are -∞ constants
// instead of dot products, so row i of the output never depends on key or
// value rows after i.
type Attention struct {
	keyWeight   *Matrix
	queryWeight *Matrix
	valueWeight *Matrix
	scores      *Matrix
	params      []*autodiff.Parameter
	output      *Matrix
}

// NewAttention creates an attention head over key, query and value.
//
// Panics with *ShapeError if key and value have different heights.
func NewAttention(key, query, value *Matrix, cfg AttentionConfig) *Attention {
	if key.Height() != value.Height() {
		shapePanic("nn.NewAttention", "key height %d vs value height %d", key.Height(), value.Height())
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 1
	}
	dkq, dv := cfg.ProjectedKeyQuerySize, cfg.ProjectedValueSize

	keyWeight, keyParams := NewParameterMatrix(key.Width(), dkq, Xavier(key.Width(), dkq, cfg.Source))
	queryWeight, queryParams := NewParameterMatrix(query.Width(), dkq, Xavier(query.Width(), dkq, cfg.Source))
	valueWeight, valueParams := NewParameterMatrix(value.Width(), dv, Xavier(value.Width(), dv, cfg.Source))

	projectedKey := MatMul(key, keyWeight)
	projectedQuery := MatMul(query, queryWeight)
	projectedValue := MatMul(value, valueWeight)

	scale := autodiff.NewConstant(1 / math.Sqrt(float64(key.Width())))
	similarity := make([]Sequence, query.Height())
	for i := range similarity {
		q := projectedQuery.Row(i)
		row := make(Sequence, key.Height())
		for j := range row {
			if cfg.Masked && j > i {
				row[j] = autodiff.NewConstant(math.Inf(-1))
				continue
			}
			row[j] = autodiff.NewMultiply(dot(q, projectedKey.Row(j)), scale)
		}
		similarity[i] = row
	}

	scores := SoftmaxRows(FromRows(similarity...), temperature)

	params := append(keyParams, queryParams...)
	params = append(params, valueParams...)

	return &Attention{
		keyWeight:   keyWeight,
		queryWeight: queryWeight,
		valueWeight: valueWeight,
		scores:      scores,
		params:      params,
		output:      MatMul(scores, projectedValue),
	}
}

// Output returns the attended values [query height × ProjectedValueSize].
func (a *Attention) Output() *Matrix {
	return a.output
}

// Scores returns the attention weights [query height × key height].
func (a *Attention) Scores() *Matrix {
	return a.scores
}

// Parameters returns the key, query and value projection weights.
func (a *Attention) Parameters() []*autodiff.Parameter {
	return slices.Clone(a.params)
}
