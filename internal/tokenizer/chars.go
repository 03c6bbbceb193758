package tokenizer

import (
	"fmt"
	"strings"
)

// latinAlphabet is "^", the lowercase letters, "-", " " and "$", in token
// order.
const latinAlphabet = "^abcdefghijklmnopqrstuvwxyz- $"

// CharConfig configures a CharTokenizer.
type CharConfig struct {
	Alphabet string // Symbols in token order, one token per rune
	Bos      rune   // Beginning-of-sequence symbol (0 = none)
	Eos      rune   // End-of-sequence symbol (0 = none)
	Pad      rune   // Padding symbol (0 = none)
}

// CharTokenizer assigns one token to every rune of a fixed alphabet.
type CharTokenizer struct {
	symbols []rune
	index   map[rune]int
	bos     int
	eos     int
	pad     int
}

// NewCharTokenizer creates a tokenizer over config.Alphabet. Special symbols
// must be part of the alphabet.
func NewCharTokenizer(config CharConfig) (*CharTokenizer, error) {
	symbols := []rune(config.Alphabet)
	if len(symbols) == 0 {
		return nil, fmt.Errorf("tokenizer: empty alphabet")
	}

	t := &CharTokenizer{symbols: symbols, index: make(map[rune]int, len(symbols))}
	for i, r := range symbols {
		if _, dup := t.index[r]; dup {
			return nil, fmt.Errorf("tokenizer: duplicate symbol %q in alphabet", r)
		}
		t.index[r] = i
	}

	special := func(r rune, name string) (int, error) {
		if r == 0 {
			return -1, nil
		}
		id, ok := t.index[r]
		if !ok {
			return -1, fmt.Errorf("tokenizer: %s symbol %q is not in the alphabet", name, r)
		}
		return id, nil
	}
	var err error
	if t.bos, err = special(config.Bos, "begin"); err != nil {
		return nil, err
	}
	if t.eos, err = special(config.Eos, "end"); err != nil {
		return nil, err
	}
	if t.pad, err = special(config.Pad, "padding"); err != nil {
		return nil, err
	}
	return t, nil
}

// Latin returns the 30-symbol lowercase Latin vocabulary: "^" begins a
// sequence, "$" ends and pads it.
func Latin() *CharTokenizer {
	t, err := NewCharTokenizer(CharConfig{Alphabet: latinAlphabet, Bos: '^', Eos: '$', Pad: '$'})
	if err != nil {
		panic(err)
	}
	return t
}

// Encode converts every rune of text to its token ID.
func (t *CharTokenizer) Encode(text string) ([]int, error) {
	tokens := make([]int, 0, len(text))
	for i, r := range []rune(text) {
		id, ok := t.index[r]
		if !ok {
			return nil, fmt.Errorf("%w: %q at position %d", ErrUnknownSymbol, r, i)
		}
		tokens = append(tokens, id)
	}
	return tokens, nil
}

// Decode converts token IDs back to text.
func (t *CharTokenizer) Decode(tokens []int) (string, error) {
	var sb strings.Builder
	for i, id := range tokens {
		if id < 0 || id >= len(t.symbols) {
			return "", fmt.Errorf("%w: %d at position %d (vocabulary size %d)", ErrInvalidToken, id, i, len(t.symbols))
		}
		sb.WriteRune(t.symbols[id])
	}
	return sb.String(), nil
}

// VocabSize returns the alphabet size.
func (t *CharTokenizer) VocabSize() int { return len(t.symbols) }

// BosToken returns the beginning-of-sequence token ID, or -1.
func (t *CharTokenizer) BosToken() int { return t.bos }

// EosToken returns the end-of-sequence token ID, or -1.
func (t *CharTokenizer) EosToken() int { return t.eos }

// PadToken returns the padding token ID, or -1.
func (t *CharTokenizer) PadToken() int { return t.pad }
