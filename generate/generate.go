// Package generate decodes encoder-decoder networks one token at a time.
//
// This package wraps the internal generate implementation.
//
// Components:
//   - Sampler: Sampling strategies (greedy, top-k, top-p, min-p, temperature, penalties)
//   - Generator: Autoregressive decoding of nn.NewTransformer networks
//
// Example usage:
//
//	import (
//	    "github.com/born-ml/nodegrad/generate"
//	    "github.com/born-ml/nodegrad/nn"
//	)
//
//	gen, err := generate.NewGenerator(net, generate.Config{
//	    EncoderLength: 3,
//	    Sampling:      generate.SamplingConfig{Temperature: 0.7, TopK: 2},
//	}, rng)
//
//	tokens, err := gen.Generate(ctx, encoderRows)
package generate

import (
	"math/rand/v2"

	"github.com/born-ml/nodegrad/internal/generate"
	"github.com/born-ml/nodegrad/nn"
)

// Sampling Configuration

// SamplingConfig configures the sampling strategy.
//
// Parameters:
//   - Temperature: Controls randomness (0 = greedy, 1 = network distribution, >1 = more random)
//   - TopK: Limits sampling to top K tokens (0 = disabled)
//   - TopP: Nucleus sampling, keeps the most likely tokens until their cumulative prob reaches P (0 or 1.0 = disabled)
//   - MinP: Filters tokens with prob < max_prob * MinP (0 = disabled)
//   - RepeatPenalty: Penalty for repeated tokens (0 or 1.0 = no penalty)
//   - FrequencyPenalty: Penalty based on token frequency (0 = disabled)
//   - PresencePenalty: Penalty for token presence (0 = disabled)
//   - RepeatWindow: Number of tokens to consider for penalties (0 = all)
type SamplingConfig = generate.SamplingConfig

// DefaultSamplingConfig returns greedy decoding.
func DefaultSamplingConfig() SamplingConfig {
	return generate.DefaultSamplingConfig()
}

// Sampler

// Sampler picks tokens from probability rows.
type Sampler = generate.Sampler

// NewSampler creates a sampler. A nil rng uses the global generator.
func NewSampler(config SamplingConfig, rng *rand.Rand) *Sampler {
	return generate.NewSampler(config, rng)
}

// Generator

// Config configures a Generator.
type Config = generate.Config

// Generator decodes an encoder-decoder network autoregressively.
type Generator = generate.Generator

// NewGenerator creates a generator for net.
func NewGenerator(net *nn.Network, config Config, rng *rand.Rand) (*Generator, error) {
	return generate.NewGenerator(net, config, rng)
}
