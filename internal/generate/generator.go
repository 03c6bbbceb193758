package generate

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/nodegrad/internal/nn"
)

// Config configures a Generator.
type Config struct {
	// EncoderLength is the number of encoder rows at the top of the
	// network input. The remaining rows belong to the decoder.
	EncoderLength int

	// Embed returns the decoder row for a generated token. nil = one-hot.
	Embed func(token int) []float64

	// Start is the first decoder row. nil = zeros.
	Start []float64

	// StopTokens end generation when sampled. The stop token is included
	// in the output.
	StopTokens []int

	// Sampling is the sampling configuration.
	Sampling SamplingConfig
}

// Generator decodes an encoder-decoder network autoregressively.
//
// The network input grid holds EncoderLength encoder rows followed by the
// decoder rows, and the output has one probability row per decoder row
// (the layout built by nn.NewTransformer). Decoder row 0 holds Start and
// row i+1 holds the embedding of the token generated at position i, so a
// causally masked decoder sees exactly the tokens generated so far.
type Generator struct {
	net     *nn.Network
	config  Config
	sampler *Sampler

	encoderRows, decoderRows, width, vocab int
}

// NewGenerator creates a generator for net. A nil rng uses the global
// generator.
//
// Returns *nn.ShapeError if the network layout does not match config.
func NewGenerator(net *nn.Network, config Config, rng *rand.Rand) (*Generator, error) {
	rows, width := net.Input().Dims()
	outRows, vocab := net.Output().Dims()
	decoderRows := rows - config.EncoderLength

	switch {
	case config.EncoderLength <= 0 || decoderRows <= 0:
		return nil, &nn.ShapeError{
			Op:      "generate.NewGenerator",
			Details: fmt.Sprintf("encoder length %d must leave decoder rows in a %d-row input", config.EncoderLength, rows),
		}
	case outRows != decoderRows:
		return nil, &nn.ShapeError{
			Op:      "generate.NewGenerator",
			Details: fmt.Sprintf("output has %d rows, want one per decoder row (%d)", outRows, decoderRows),
		}
	case config.Embed == nil && vocab > width:
		return nil, &nn.ShapeError{
			Op:      "generate.NewGenerator",
			Details: fmt.Sprintf("one-hot embedding of %d tokens does not fit %d columns", vocab, width),
		}
	case config.Start != nil && len(config.Start) != width:
		return nil, &nn.ShapeError{
			Op:      "generate.NewGenerator",
			Details: fmt.Sprintf("start row has %d entries, want %d", len(config.Start), width),
		}
	}

	return &Generator{
		net:         net,
		config:      config,
		sampler:     NewSampler(config.Sampling, rng),
		encoderRows: config.EncoderLength,
		decoderRows: decoderRows,
		width:       width,
		vocab:       vocab,
	}, nil
}

// Generate decodes up to one token per decoder row for the encoder rows.
// It stops early after a stop token.
func (g *Generator) Generate(ctx context.Context, encoder mat.Matrix) ([]int, error) {
	if r, c := encoder.Dims(); r != g.encoderRows || c != g.width {
		return nil, &nn.ShapeError{
			Op:      "generate.Generator.Generate",
			Details: fmt.Sprintf("encoder rows are [%d×%d], want [%d×%d]", r, c, g.encoderRows, g.width),
		}
	}

	x := mat.NewDense(g.encoderRows+g.decoderRows, g.width, nil)
	x.Slice(0, g.encoderRows, 0, g.width).(*mat.Dense).Copy(encoder)
	if g.config.Start != nil {
		x.SetRow(g.encoderRows, g.config.Start)
	}

	tokens := make([]int, 0, g.decoderRows)
	for i := range g.decoderRows {
		if err := ctx.Err(); err != nil {
			return tokens, err
		}

		y, err := g.net.Predict(x)
		if err != nil {
			return tokens, err
		}
		tok := g.sampler.Sample(mat.Row(nil, i, y), tokens)
		tokens = append(tokens, tok)

		if slices.Contains(g.config.StopTokens, tok) {
			break
		}
		if i+1 < g.decoderRows {
			x.SetRow(g.encoderRows+i+1, g.embed(tok))
		}
	}
	return tokens, nil
}

func (g *Generator) embed(tok int) []float64 {
	if g.config.Embed != nil {
		return g.config.Embed(tok)
	}
	row := make([]float64, g.width)
	row[tok] = 1
	return row
}
