package nn

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/born-ml/nodegrad/internal/autodiff"
)

// Initializer draws initial parameter values.
type Initializer func() float64

// Uniform draws from U(lo, hi). A nil src uses the global generator.
func Uniform(lo, hi float64, src rand.Source) Initializer {
	d := distuv.Uniform{Min: lo, Max: hi, Src: src}
	return d.Rand
}

// Gaussian draws from N(mean, std²). A nil src uses the global generator.
func Gaussian(mean, std float64, src rand.Source) Initializer {
	d := distuv.Normal{Mu: mean, Sigma: std, Src: src}
	return d.Rand
}

// Xavier draws from the Xavier/Glorot uniform distribution:
//
//	U(-sqrt(6/(fanIn+fanOut)), sqrt(6/(fanIn+fanOut)))
//
// It keeps activation variance roughly constant across layers.
func Xavier(fanIn, fanOut int, src rand.Source) Initializer {
	bound := math.Sqrt(6 / float64(fanIn+fanOut))
	return Uniform(-bound, bound, src)
}

// Fill returns v for every draw.
func Fill(v float64) Initializer {
	return func() float64 { return v }
}

// NewParameterMatrix creates a row-backed rows x cols matrix of fresh
// learnable parameters drawn from init. The parameters are also returned in
// row-major order.
func NewParameterMatrix(rows, cols int, init Initializer) (*Matrix, []*autodiff.Parameter) {
	params := make([]*autodiff.Parameter, 0, rows*cols)
	lines := make([]Sequence, rows)
	for i := range rows {
		line := make(Sequence, cols)
		for j := range cols {
			p := autodiff.NewParameter(init())
			params = append(params, p)
			line[j] = p.Node
		}
		lines[i] = line
	}
	return FromRows(lines...), params
}

// NewParameterRow creates a single row of learnable parameters.
func NewParameterRow(cols int, init Initializer) (Sequence, []*autodiff.Parameter) {
	m, params := NewParameterMatrix(1, cols, init)
	return m.Row(0), params
}

// NewConstantMatrix creates a rows x cols matrix of constant nodes.
func NewConstantMatrix(rows, cols int, v float64) *Matrix {
	lines := make([]Sequence, rows)
	for i := range rows {
		line := make(Sequence, cols)
		for j := range cols {
			line[j] = autodiff.NewConstant(v)
		}
		lines[i] = line
	}
	return FromRows(lines...)
}
