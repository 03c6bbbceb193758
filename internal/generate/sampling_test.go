package generate

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

// probsOf converts logits to the probability row a network would emit.
func probsOf(logits ...float64) []float64 {
	return softmax(logits)
}

func newTestSampler(config SamplingConfig) *Sampler {
	return NewSampler(config, rand.New(rand.NewPCG(42, 42)))
}

func TestGreedySampling(t *testing.T) {
	sampler := newTestSampler(SamplingConfig{Temperature: 0})

	probs := probsOf(-1, 0, 1)
	for range 10 {
		assert.Equal(t, 2, sampler.Sample(probs, nil), "Greedy should always pick max")
	}
}

func TestGreedySampling_ZeroProbabilities(t *testing.T) {
	sampler := newTestSampler(DefaultSamplingConfig())

	assert.Equal(t, 1, sampler.Sample([]float64{0, 1, 0}, nil))
}

func TestTopKSampling(t *testing.T) {
	sampler := newTestSampler(SamplingConfig{Temperature: 1.0, TopK: 2})

	probs := probsOf(1, 2, 3, 4, 5)

	// Should only sample from top 2 tokens (indices 3, 4)
	counts := make(map[int]int)
	for range 100 {
		counts[sampler.Sample(probs, nil)]++
	}

	assert.Equal(t, 0, counts[0]+counts[1]+counts[2], "Should not sample from filtered tokens")
	assert.Greater(t, counts[3]+counts[4], 0, "Should sample from top-k tokens")
}

func TestTopPSampling(t *testing.T) {
	sampler := newTestSampler(SamplingConfig{Temperature: 1.0, TopP: 0.5})

	// Top token has >50% probability
	probs := probsOf(-10, -10, -10, 0, 5)

	counts := make(map[int]int)
	for range 100 {
		counts[sampler.Sample(probs, nil)]++
	}

	assert.Equal(t, 100, counts[4], "Nucleus of the dominant token")
}

func TestTopPSampling_ExactMass(t *testing.T) {
	sampler := newTestSampler(SamplingConfig{Temperature: 1.0, TopP: 0.75})

	// The first two tokens reach P exactly; the third must be filtered.
	probs := []float64{0.5, 0.25, 0.25}

	counts := make(map[int]int)
	for range 2000 {
		counts[sampler.Sample(probs, nil)]++
	}

	assert.Zero(t, counts[2], "token outside the nucleus was sampled")
	assert.Greater(t, counts[0], 0)
	assert.Greater(t, counts[1], 0)
}

func TestMinPSampling(t *testing.T) {
	sampler := newTestSampler(SamplingConfig{Temperature: 1.0, MinP: 0.5})

	probs := probsOf(0, 0, 0, 0, 10)

	counts := make(map[int]int)
	for range 100 {
		counts[sampler.Sample(probs, nil)]++
	}

	assert.Greater(t, counts[4], 90)
}

func TestTemperatureSampling(t *testing.T) {
	t.Run("low temperature", func(t *testing.T) {
		sampler := newTestSampler(SamplingConfig{Temperature: 0.1})

		probs := probsOf(1, 2, 3)

		counts := make(map[int]int)
		for range 100 {
			counts[sampler.Sample(probs, nil)]++
		}

		assert.Greater(t, counts[2], 90, "Low temp should favor max")
	})

	t.Run("high temperature", func(t *testing.T) {
		sampler := newTestSampler(SamplingConfig{Temperature: 2.0})

		probs := probsOf(1, 2, 3)

		counts := make(map[int]int)
		for range 100 {
			counts[sampler.Sample(probs, nil)]++
		}

		assert.Greater(t, counts[0]+counts[1], 5, "High temp should distribute samples")
	})
}

func TestRepetitionPenalty(t *testing.T) {
	sampler := newTestSampler(SamplingConfig{Temperature: 0, RepeatPenalty: 2.0})

	// All tokens equal, but token 0 was repeated
	probs := probsOf(1, 1, 1)
	token := sampler.Sample(probs, []int{0, 0, 0})

	assert.NotEqual(t, 0, token, "Penalized token should not be chosen")
}

func TestFrequencyPenalty(t *testing.T) {
	sampler := newTestSampler(SamplingConfig{Temperature: 0, FrequencyPenalty: 2.0})

	// Token 0: 1.5 - 2·5 loses to token 1
	probs := probsOf(1.5, 1.0, 0.5)
	token := sampler.Sample(probs, []int{0, 0, 0, 0, 0})

	assert.Equal(t, 1, token, "Frequency penalized token should not be chosen")
}

func TestPresencePenalty(t *testing.T) {
	sampler := newTestSampler(SamplingConfig{Temperature: 0, PresencePenalty: 5.0})

	// Token 0: 2.0 - 5.0 loses to token 1
	probs := probsOf(2.0, 1.9, 1.0)
	token := sampler.Sample(probs, []int{0})

	assert.Equal(t, 1, token, "Presence penalty should make token 1 win")
}

func TestRepeatWindow(t *testing.T) {
	sampler := newTestSampler(SamplingConfig{
		Temperature:     0,
		PresencePenalty: 5.0,
		RepeatWindow:    2,
	})

	// Token 0 fell out of the window, so only token 1 is penalized.
	probs := probsOf(2.0, 1.9, 1.0)
	assert.Equal(t, 0, sampler.Sample(probs, []int{0, 1, 1}))
}

func TestSoftmax(t *testing.T) {
	probs := softmax([]float64{0, math.Inf(-1), 0})
	assert.Equal(t, []float64{0.5, 0, 0.5}, probs)

	for _, p := range probsOf(1000, 1001, 1002) {
		assert.False(t, math.IsNaN(p))
	}
}
