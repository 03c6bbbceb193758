package tokenizer

import "errors"

// Common errors.
var (
	ErrUnknownSymbol = errors.New("symbol is not in the vocabulary")
	ErrInvalidToken  = errors.New("token ID is out of range")
)

// Tokenizer is the core interface for text tokenization.
type Tokenizer interface {
	// Encode converts text to token IDs.
	Encode(text string) ([]int, error)

	// Decode converts token IDs back to text.
	Decode(tokens []int) (string, error)

	// VocabSize returns the total vocabulary size.
	VocabSize() int

	// BosToken returns the beginning-of-sequence token ID.
	// Returns -1 if not applicable.
	BosToken() int

	// EosToken returns the end-of-sequence token ID.
	// Returns -1 if not applicable.
	EosToken() int

	// PadToken returns the padding token ID.
	// Returns -1 if not applicable.
	PadToken() int
}
