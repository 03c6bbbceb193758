// Package tokenizer provides character-level vocabularies for nodegrad
// sequence tasks.
//
// This package wraps the internal tokenizer implementation and provides
// a clean public API for turning text into network rows.
//
// Components:
//   - CharTokenizer: one token per rune of a fixed alphabet
//   - Embedding: one-hot or binary rows with optional position digits
//
// Example usage:
//
//	import "github.com/born-ml/nodegrad/tokenizer"
//
//	emb := tokenizer.Embedding{Tokenizer: tokenizer.Latin(), Binary: true, PositionDigits: 3}
//
//	// Network input rows
//	x, err := emb.Embed("cat")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Decode network output rows
//	text, err := emb.Unembed(y)
package tokenizer

import (
	"github.com/born-ml/nodegrad/internal/tokenizer"
)

// Common errors.
var (
	ErrUnknownSymbol = tokenizer.ErrUnknownSymbol
	ErrInvalidToken  = tokenizer.ErrInvalidToken
)

// Tokenizer is the core interface for text tokenization.
type Tokenizer = tokenizer.Tokenizer

// CharConfig configures a CharTokenizer.
type CharConfig = tokenizer.CharConfig

// CharTokenizer assigns one token to every rune of a fixed alphabet.
type CharTokenizer = tokenizer.CharTokenizer

// NewCharTokenizer creates a tokenizer over config.Alphabet.
func NewCharTokenizer(config CharConfig) (*CharTokenizer, error) {
	return tokenizer.NewCharTokenizer(config)
}

// Latin returns the 30-symbol lowercase Latin vocabulary.
func Latin() *CharTokenizer {
	return tokenizer.Latin()
}

// Embedding converts text to network rows and network rows back to text.
type Embedding = tokenizer.Embedding

// OneHot returns a width-long row with a 1 at index n.
func OneHot(n, width int) []float64 {
	return tokenizer.OneHot(n, width)
}

// BinaryDigits returns the low digits of n in base 2, least significant first.
func BinaryDigits(n, digits int) []float64 {
	return tokenizer.BinaryDigits(n, digits)
}

// FromBinary reads little-endian digits, treating values >= 0.5 as 1.
func FromBinary(digits []float64) int {
	return tokenizer.FromBinary(digits)
}
