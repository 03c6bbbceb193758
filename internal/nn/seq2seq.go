package nn

import (
	"fmt"
	"math/rand/v2"
)

// TransformerConfig defines an encoder-decoder transformer network.
type TransformerConfig struct {
	Width             int                   // Row width of encoder and decoder inputs
	EncoderLength     int                   // Encoder input rows
	DecoderLength     int                   // Decoder input rows (= output rows)
	EncoderCount      int                   // Stacked encoder blocks
	DecoderCount      int                   // Stacked decoder blocks
	Encoder           BlockConfig           // Configuration of every encoder block
	Decoder           BlockConfig           // Configuration of every decoder block
	Unembedder        func(*Matrix) *Matrix // Optional projection applied before the output softmax
	OutputTemperature float64               // Output softmax temperature (0 = 1)
	Source            rand.Source           // Weight initialization source (nil = global)
}

// NewTransformer builds an encoder-decoder transformer.
//
// Architecture:
//
//	enc = EncoderBlock^EncoderCount(encoder input)
//	dec = DecoderBlock^DecoderCount(decoder input, enc)
//	out = softmax_rows(Unembedder(dec) / OutputTemperature)
//
// The network input grid is the encoder rows followed by the decoder rows,
// so a predictor matrix has EncoderLength+DecoderLength rows of Width
// entries. The output has DecoderLength rows.
//
// Returns an error if a dimension is not positive or a block configuration
// is invalid.
func NewTransformer(cfg TransformerConfig) (net *Network, err error) {
	if cfg.Width <= 0 || cfg.EncoderLength <= 0 || cfg.DecoderLength <= 0 {
		details := fmt.Sprintf("width %d, encoder length %d and decoder length %d must be positive",
			cfg.Width, cfg.EncoderLength, cfg.DecoderLength)
		return nil, &ShapeError{Op: "nn.NewTransformer", Details: details}
	}
	if cfg.EncoderCount < 0 || cfg.DecoderCount < 0 {
		return nil, fmt.Errorf("nn.NewTransformer: block counts must not be negative, got %d and %d",
			cfg.EncoderCount, cfg.DecoderCount)
	}
	if cfg.OutputTemperature < 0 {
		return nil, fmt.Errorf("nn.NewTransformer: output temperature must be positive, got %v", cfg.OutputTemperature)
	}

	// Block constructors and the unembedder panic on invalid configuration.
	defer func() {
		if r := recover(); r != nil {
			if shapeErr, ok := r.(*ShapeError); ok {
				err = shapeErr
				return
			}
			err = fmt.Errorf("nn.NewTransformer: %v", r)
		}
	}()

	encoderInput := NewInputMatrix(cfg.EncoderLength, cfg.Width)
	encoded := encoderInput.Matrix()
	for range cfg.EncoderCount {
		encoded = NewEncoderBlock(encoded, cfg.Encoder, cfg.Source).Output()
	}

	decoderInput := NewInputMatrix(cfg.DecoderLength, cfg.Width)
	decoded := decoderInput.Matrix()
	for range cfg.DecoderCount {
		decoded = NewDecoderBlock(decoded, encoded, cfg.Decoder, cfg.Source).Output()
	}

	logits := decoded
	if cfg.Unembedder != nil {
		logits = cfg.Unembedder(decoded)
	}

	temperature := cfg.OutputTemperature
	if temperature == 0 {
		temperature = 1
	}
	output := SoftmaxRows(logits, temperature)

	return NewNetwork(encoderInput.ConcatRows(decoderInput), output), nil
}

// DenseUnembedder returns an Unembedder that projects every decoder row to
// size logits through a biased dense layer.
func DenseUnembedder(size int, src rand.Source) func(*Matrix) *Matrix {
	return func(m *Matrix) *Matrix {
		return NewDenseLinear(m, size, Xavier(m.Width(), size, src), true).Output()
	}
}
