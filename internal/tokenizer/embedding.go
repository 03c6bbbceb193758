package tokenizer

import (
	"fmt"
	"math/bits"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Embedding converts text to network rows and network rows back to text.
//
// Every row holds the symbol digits of one token followed by
// PositionDigits binary digits of the row index:
//
//	one-hot: [0 0 1 0 ... | 1 0 0]
//	binary:  [1 1 0 0 0   | 1 0 0]   (token 3, position 1, low digit first)
type Embedding struct {
	Tokenizer      Tokenizer
	Binary         bool // Little-endian binary symbol digits instead of one-hot
	PositionDigits int  // Binary position digits per row (0 = none)
	WithBos        bool // Prepend the tokenizer's begin symbol
	Length         int  // Pad with the padding symbol to this many rows (0 = no padding)
}

// SymbolDigits returns the number of columns encoding the token.
func (e Embedding) SymbolDigits() int {
	n := e.Tokenizer.VocabSize()
	if !e.Binary {
		return n
	}
	return max(bits.Len(uint(n-1)), 1)
}

// Width returns the number of columns of an embedded row.
func (e Embedding) Width() int {
	return e.SymbolDigits() + e.PositionDigits
}

// Tokens encodes text and applies WithBos and Length.
func (e Embedding) Tokens(text string) ([]int, error) {
	tokens, err := e.Tokenizer.Encode(text)
	if err != nil {
		return nil, err
	}
	if e.WithBos {
		bos := e.Tokenizer.BosToken()
		if bos < 0 {
			return nil, fmt.Errorf("tokenizer: vocabulary has no begin symbol")
		}
		tokens = append([]int{bos}, tokens...)
	}
	if e.Length > 0 {
		if len(tokens) > e.Length {
			return nil, fmt.Errorf("tokenizer: %d tokens exceed length %d", len(tokens), e.Length)
		}
		if len(tokens) < e.Length {
			pad := e.Tokenizer.PadToken()
			if pad < 0 {
				return nil, fmt.Errorf("tokenizer: vocabulary has no padding symbol")
			}
			for len(tokens) < e.Length {
				tokens = append(tokens, pad)
			}
		}
	}
	return tokens, nil
}

// Embed returns one row per token of text.
func (e Embedding) Embed(text string) (*mat.Dense, error) {
	tokens, err := e.Tokens(text)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("tokenizer: nothing to embed")
	}
	x := mat.NewDense(len(tokens), e.Width(), nil)
	for i, tok := range tokens {
		x.SetRow(i, e.Row(tok, i))
	}
	return x, nil
}

// Row returns the embedded row of token at position.
func (e Embedding) Row(token, position int) []float64 {
	var row []float64
	if e.Binary {
		row = BinaryDigits(token, e.SymbolDigits())
	} else {
		row = OneHot(token, e.SymbolDigits())
	}
	if e.PositionDigits > 0 {
		row = append(row, BinaryDigits(position, e.PositionDigits)...)
	}
	return row
}

// Unembed decodes every row of m: the largest symbol column for one-hot
// rows, the thresholded digits for binary rows. Position columns are ignored.
func (e Embedding) Unembed(m mat.Matrix) (string, error) {
	rows, cols := m.Dims()
	digits := e.SymbolDigits()
	if cols < digits {
		return "", fmt.Errorf("tokenizer: %d columns, want at least %d", cols, digits)
	}
	tokens := make([]int, rows)
	row := make([]float64, cols)
	for i := range rows {
		mat.Row(row, i, m)
		if e.Binary {
			tokens[i] = FromBinary(row[:digits])
		} else {
			tokens[i] = floats.MaxIdx(row[:digits])
		}
	}
	return e.Tokenizer.Decode(tokens)
}

// OneHot returns a width-long row with a 1 at index n.
func OneHot(n, width int) []float64 {
	row := make([]float64, width)
	if n >= 0 && n < width {
		row[n] = 1
	}
	return row
}

// BinaryDigits returns the low digits of n in base 2, least significant
// first.
func BinaryDigits(n, digits int) []float64 {
	row := make([]float64, digits)
	for i := range row {
		row[i] = float64((n >> i) & 1)
	}
	return row
}

// FromBinary reads little-endian digits, treating values >= 0.5 as 1.
func FromBinary(digits []float64) int {
	n := 0
	for i, d := range digits {
		if d >= 0.5 {
			n |= 1 << i
		}
	}
	return n
}
