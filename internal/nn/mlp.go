package nn

import (
	"fmt"
	"math/rand/v2"

	"github.com/born-ml/nodegrad/internal/autodiff/ops"
)

// MLPConfig defines a multilayer perceptron.
type MLPConfig struct {
	InputWidth         int              // Number of input features
	HiddenWidths       []int            // Width of every hidden layer
	OutputWidth        int              // Number of outputs
	HiddenActivations  []ops.Activation // Cycled over hidden layers (empty = ReLU)
	OutputActivation   ops.Activation   // Output activation (nil = identity); ignored with OutputSoftmax
	OutputSoftmax      bool             // Replace the output activation with a softmax over the output row
	SoftmaxTemperature float64          // Output softmax temperature (0 = 1)
	Normalize          bool             // Add a Norm layer after every hidden activation
	Init               Initializer      // Weight initializer (nil = Xavier per layer)
	Source             rand.Source      // Source for the default initializer (nil = global)
}

// NewMultilayerPerceptron builds a fully connected network over a single
// input row.
//
// Architecture:
//
//	x → [Dense → activation → (Norm)] × len(HiddenWidths) → Dense → activation | softmax
//
// Every Dense layer has a zero-initialized bias.
//
// Returns *ShapeError if a width is not positive.
func NewMultilayerPerceptron(cfg MLPConfig) (*Network, error) {
	if cfg.InputWidth <= 0 || cfg.OutputWidth <= 0 {
		return nil, &ShapeError{
			Op:      "nn.NewMultilayerPerceptron",
			Details: fmt.Sprintf("input width %d and output width %d must be positive", cfg.InputWidth, cfg.OutputWidth),
		}
	}
	for i, w := range cfg.HiddenWidths {
		if w <= 0 {
			return nil, &ShapeError{
				Op:      "nn.NewMultilayerPerceptron",
				Details: fmt.Sprintf("hidden layer %d width %d must be positive", i, w),
			}
		}
	}
	if cfg.SoftmaxTemperature < 0 {
		return nil, fmt.Errorf("nn.NewMultilayerPerceptron: softmax temperature must be positive, got %v", cfg.SoftmaxTemperature)
	}
	hiddenActs := cfg.HiddenActivations
	if len(hiddenActs) == 0 {
		hiddenActs = []ops.Activation{ops.ReLU{}}
	}
	init := func(fanIn, fanOut int) Initializer {
		if cfg.Init != nil {
			return cfg.Init
		}
		return Xavier(fanIn, fanOut, cfg.Source)
	}

	input := NewInputMatrix(1, cfg.InputWidth)
	last := input.Matrix()
	for i, width := range cfg.HiddenWidths {
		dense := NewDenseLinear(last, width, init(last.Width(), width), true)
		last = Apply(dense.Output(), hiddenActs[i%len(hiddenActs)])
		if cfg.Normalize {
			last = NewNorm(last, DefaultNormEpsilon).Output()
		}
	}

	dense := NewDenseLinear(last, cfg.OutputWidth, init(last.Width(), cfg.OutputWidth), true)
	var output *Matrix
	switch {
	case cfg.OutputSoftmax:
		temperature := cfg.SoftmaxTemperature
		if temperature == 0 {
			temperature = 1
		}
		output = SoftmaxRows(dense.Output(), temperature)
	case cfg.OutputActivation != nil:
		output = Apply(dense.Output(), cfg.OutputActivation)
	default:
		output = Apply(dense.Output(), ops.Identity{})
	}

	return NewNetwork(input, output), nil
}
