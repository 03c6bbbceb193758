// Package tokenizer maps text to token IDs and token IDs to network rows.
//
// The package implements character-level vocabularies for small sequence
// tasks:
//   - CharTokenizer: one token per rune of a fixed alphabet, with optional
//     begin, end and padding symbols
//   - Embedding: one-hot or little-endian binary rows, optionally followed
//     by binary position digits
//
// Example usage:
//
//	tok := tokenizer.Latin()
//
//	// Encode text
//	tokens, err := tok.Encode("abc")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Embed as network input rows
//	emb := tokenizer.Embedding{Tokenizer: tok, Binary: true, PositionDigits: 3}
//	x, err := emb.Embed("abc")
//
//	// Decode network output rows
//	text, err := emb.Unembed(y)
package tokenizer
