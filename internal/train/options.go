package train

import (
	"errors"
	"fmt"
	"math"

	"github.com/born-ml/nodegrad/internal/autodiff"
	"github.com/born-ml/nodegrad/internal/nn"
	"github.com/born-ml/nodegrad/internal/optim"
)

// Common errors.
var (
	// ErrConflictingRules is returned when both Momentum and Adam are set.
	ErrConflictingRules = errors.New("train: momentum and adam are mutually exclusive")

	// ErrEmptyDataSet is returned when training on a data set with no
	// instances.
	ErrEmptyDataSet = errors.New("train: empty data set")
)

// StochasticFraction caps a stochastic batch at this share of the data set.
const StochasticFraction = 0.3

// MomentumOptions selects the momentum update rule.
type MomentumOptions struct {
	Ratio float64 // Velocity decay
}

// AdamOptions selects the Adam update rule.
type AdamOptions struct {
	MomentumRatio  float64 // Decay of the squared-gradient average (beta2)
	MomentumRatio2 float64 // Decay of the gradient average (beta1)
}

// Options configures a GradientDescent run.
type Options[T any] struct {
	LearningRate float64          // Step size (default: 1e-4)
	Stochastic   bool             // Draw batches from a shuffle buffer instead of using the whole set
	Loss         nn.LossFunc      // Loss function (default: MeanSquaredError)
	BatchSize    int              // Stochastic batch size cap (default: 1000)
	Iterations   int              // Update steps (default: 100)
	Validation   *DataSet[T]      // Passed to the monitor with every notification
	Momentum     *MomentumOptions // Momentum rule; exclusive with Adam
	Adam         *AdamOptions     // Adam rule; exclusive with Momentum
}

// DefaultOptions returns the default configuration: plain stochastic
// gradient descent on the squared error.
func DefaultOptions[T any]() Options[T] {
	return Options[T]{
		LearningRate: optim.DefaultLR,
		Stochastic:   true,
		Loss:         nn.MeanSquaredError{},
		BatchSize:    1000,
		Iterations:   100,
	}
}

// withDefaults fills zero fields with DefaultOptions values and validates
// the update rule selection.
func (o Options[T]) withDefaults() (Options[T], error) {
	def := DefaultOptions[T]()
	if o.LearningRate == 0 {
		o.LearningRate = def.LearningRate
	}
	if o.Loss == nil {
		o.Loss = def.Loss
	}
	if o.BatchSize <= 0 {
		o.BatchSize = def.BatchSize
	}
	if o.Iterations < 0 {
		return o, fmt.Errorf("train: iterations must not be negative, got %d", o.Iterations)
	}
	if o.Momentum != nil && o.Adam != nil {
		return o, ErrConflictingRules
	}
	return o, nil
}

// batchLen returns the stochastic batch length for a data set of n
// instances: ceil(min(BatchSize, StochasticFraction*n)).
func (o Options[T]) batchLen(n int) int {
	return int(math.Ceil(min(float64(o.BatchSize), StochasticFraction*float64(n))))
}

// optimizer builds the update rule selected by the options.
func (o Options[T]) optimizer(params []*autodiff.Parameter) optim.Optimizer {
	switch {
	case o.Adam != nil:
		return optim.NewAdam(params, optim.AdamConfig{
			LR:    o.LearningRate,
			Betas: [2]float64{o.Adam.MomentumRatio2, o.Adam.MomentumRatio},
		})
	case o.Momentum != nil:
		return optim.NewSGD(params, optim.SGDConfig{LR: o.LearningRate, Momentum: o.Momentum.Ratio})
	default:
		return optim.NewSGD(params, optim.SGDConfig{LR: o.LearningRate})
	}
}

// Rule returns the name of the selected update rule.
func (o Options[T]) Rule() string {
	switch {
	case o.Adam != nil:
		return "adam"
	case o.Momentum != nil:
		return "momentum"
	default:
		return "sgd"
	}
}
