// Package generate decodes encoder-decoder networks one position at a time.
//
// Every decoder output row is a probability distribution over tokens. The
// Sampler turns a row into a token with greedy, temperature, top-k, top-p
// and min-p strategies plus repetition penalties.
package generate

import (
	"cmp"
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// SamplingConfig configures the sampling strategy.
type SamplingConfig struct {
	// Temperature controls randomness. 0 = greedy, 1 = network distribution, >1 = more random.
	Temperature float64

	// TopK limits sampling to the K most likely tokens. 0 = disabled.
	TopK int

	// TopP (nucleus sampling) keeps the most likely tokens until their cumulative prob reaches P. 0 or 1 = disabled.
	TopP float64

	// MinP filters tokens with prob < max_prob * MinP. 0 = disabled.
	MinP float64

	// Repetition control
	RepeatPenalty    float64 // Penalty for repeated tokens. 0 or 1 = no penalty.
	FrequencyPenalty float64 // Penalty based on frequency. 0 = disabled.
	PresencePenalty  float64 // Penalty for presence. 0 = disabled.
	RepeatWindow     int     // Number of tokens to consider. 0 = all.
}

// DefaultSamplingConfig returns greedy decoding.
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Temperature:   0,
		TopP:          1.0,
		RepeatPenalty: 1.0,
	}
}

// Sampler picks tokens from probability rows.
type Sampler struct {
	config SamplingConfig
	rng    *rand.Rand
}

// NewSampler creates a sampler. A nil rng uses the global generator.
func NewSampler(config SamplingConfig, rng *rand.Rand) *Sampler {
	return &Sampler{config: config, rng: rng}
}

// Sample returns the next token from probs.
//
// Parameters:
//   - probs: one decoder output row, a distribution over tokens
//   - previous: tokens generated so far (for repetition penalties)
//
// The sampling process works on log-probabilities:
//  1. Apply repetition penalty
//  2. Apply frequency/presence penalties
//  3. Apply temperature scaling
//  4. Apply Top-K filtering
//  5. Apply Top-P (nucleus) filtering
//  6. Apply Min-P filtering
//  7. Sample from distribution (or argmax if temperature=0)
func (s *Sampler) Sample(probs []float64, previous []int) int {
	logits := make([]float64, len(probs))
	for i, p := range probs {
		logits[i] = math.Log(p)
	}

	if s.config.RepeatPenalty != 0 && s.config.RepeatPenalty != 1.0 && len(previous) > 0 {
		s.applyRepetitionPenalty(logits, previous)
	}
	if s.config.FrequencyPenalty != 0 || s.config.PresencePenalty != 0 {
		s.applyFrequencyPenalty(logits, previous)
	}

	// Greedy decoding (temperature = 0)
	if s.config.Temperature <= 0 {
		return floats.MaxIdx(logits)
	}
	if s.config.Temperature != 1.0 {
		floats.Scale(1/s.config.Temperature, logits)
	}

	if s.config.TopK > 0 && s.config.TopK < len(logits) {
		s.topKFilter(logits)
	}
	if s.config.TopP > 0 && s.config.TopP < 1.0 {
		s.topPFilter(logits)
	}
	if s.config.MinP > 0 {
		s.minPFilter(logits)
	}

	return s.multinomial(softmax(logits))
}

// recent returns the last RepeatWindow tokens of prev.
func (s *Sampler) recent(prev []int) []int {
	if window := s.config.RepeatWindow; window > 0 && len(prev) > window {
		return prev[len(prev)-window:]
	}
	return prev
}

// applyRepetitionPenalty penalizes tokens that appeared recently.
// Log-probabilities are never positive, so the penalty multiplies them.
func (s *Sampler) applyRepetitionPenalty(logits []float64, prev []int) {
	seen := make(map[int]bool)
	for _, tok := range s.recent(prev) {
		seen[tok] = true
	}
	for tok := range seen {
		if tok >= 0 && tok < len(logits) {
			if logits[tok] > 0 {
				logits[tok] /= s.config.RepeatPenalty
			} else {
				logits[tok] *= s.config.RepeatPenalty
			}
		}
	}
}

// applyFrequencyPenalty penalizes based on token frequency.
func (s *Sampler) applyFrequencyPenalty(logits []float64, prev []int) {
	freq := make(map[int]int)
	for _, tok := range s.recent(prev) {
		freq[tok]++
	}
	for tok, count := range freq {
		if tok >= 0 && tok < len(logits) {
			logits[tok] -= s.config.FrequencyPenalty * float64(count)
			logits[tok] -= s.config.PresencePenalty
		}
	}
}

// topKFilter keeps only the top K logits and sets the rest to -inf.
func (s *Sampler) topKFilter(logits []float64) {
	sorted := slices.Clone(logits)
	slices.SortFunc(sorted, func(a, b float64) int { return cmp.Compare(b, a) })
	threshold := sorted[s.config.TopK-1]

	for i := range logits {
		if logits[i] < threshold {
			logits[i] = math.Inf(-1)
		}
	}
}

// topPFilter implements nucleus sampling.
func (s *Sampler) topPFilter(logits []float64) {
	probs := softmax(logits)

	order := make([]int, len(probs))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int { return cmp.Compare(probs[b], probs[a]) })

	// Keep the smallest prefix whose mass reaches TopP, and at least one
	// token.
	var cum float64
	cutoff := len(order) - 1
	for i, idx := range order {
		cum += probs[idx]
		if cum >= s.config.TopP-1e-12 {
			cutoff = i
			break
		}
	}
	for _, idx := range order[cutoff+1:] {
		logits[idx] = math.Inf(-1)
	}
}

// minPFilter keeps tokens with prob >= max_prob * MinP.
func (s *Sampler) minPFilter(logits []float64) {
	probs := softmax(logits)
	threshold := floats.Max(probs) * s.config.MinP
	for i := range logits {
		if probs[i] < threshold {
			logits[i] = math.Inf(-1)
		}
	}
}

// multinomial samples from a categorical distribution.
func (s *Sampler) multinomial(probs []float64) int {
	var r float64
	if s.rng != nil {
		r = s.rng.Float64()
	} else {
		r = rand.Float64()
	}

	var cum float64
	for i, p := range probs {
		cum += p
		if r < cum {
			return i
		}
	}

	// Rounding errors
	return len(probs) - 1
}

// softmax converts logits to probabilities. Entries at -inf get 0.
func softmax(logits []float64) []float64 {
	maxVal := floats.Max(logits)

	probs := make([]float64, len(logits))
	var sum float64
	for i, v := range logits {
		if !math.IsInf(v, -1) {
			probs[i] = math.Exp(v - maxVal)
			sum += probs[i]
		}
	}
	if sum > 0 {
		floats.Scale(1/sum, probs)
	}
	return probs
}
