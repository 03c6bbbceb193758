// Package train implements gradient descent training of nn networks.
//
// Architecture:
//
//	DataSet[T] → Encoding[T] (instance → predictor/response matrices)
//	           → GradientDescent[T].Train (batch, predict, seed loss gradient,
//	             pull parameter gradients, optimizer step)
//	           → Monitor[T].Notify after every step (may stop training)
//
// Every instance of a batch runs in its own training session, so dropout
// draws are independent across instances and parameter gradients accumulate
// over the batch before the update.
package train

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/nodegrad/internal/autodiff"
	"github.com/born-ml/nodegrad/internal/nn"
)

// Encoding maps a training instance to network matrices.
type Encoding[T any] struct {
	Predictors func(T) mat.Matrix // Network input for an instance
	Responses  func(T) mat.Matrix // Expected network output for an instance
}

// Result summarizes a training run.
type Result struct {
	Iterations int     // Completed update steps
	Stopped    bool    // The monitor requested an early stop
	Loss       float64 // Mean training-mode loss of the last batch
}

// GradientDescent trains a network by batched gradient descent.
//
// Example:
//
//	gd := train.NewGradientDescent[point](train.Options[point]{
//	    LearningRate: 0.001,
//	    Iterations:   1000,
//	})
//	res, err := gd.Train(ctx, net, data, enc, nil)
type GradientDescent[T any] struct {
	options Options[T]
	logger  *slog.Logger
	rng     *rand.Rand
}

// NewGradientDescent creates a trainer. Zero LearningRate, Loss and
// BatchSize take their DefaultOptions values when Train runs; Stochastic is
// used as given, so start from DefaultOptions for stochastic batches.
func NewGradientDescent[T any](opts Options[T]) *GradientDescent[T] {
	return &GradientDescent[T]{options: opts, logger: slog.Default()}
}

// WithLogger sets the logger for per-step progress. A nil logger restores
// slog.Default().
func (g *GradientDescent[T]) WithLogger(logger *slog.Logger) *GradientDescent[T] {
	if logger == nil {
		logger = slog.Default()
	}
	g.logger = logger
	return g
}

// WithRand sets the generator used for shuffling and dropout. A nil rng
// uses the global generator.
func (g *GradientDescent[T]) WithRand(rng *rand.Rand) *GradientDescent[T] {
	g.rng = rng
	return g
}

// Options returns the trainer options.
func (g *GradientDescent[T]) Options() Options[T] {
	return g.options
}

// Train runs up to Iterations update steps on net.
//
// Each step:
//  1. refills the shuffle buffer from data when it is empty;
//  2. takes ceil(min(BatchSize, 0.3·len(data))) instances from the buffer
//     (stochastic) or the whole buffer;
//  3. for every instance, predicts in a fresh training session, seeds the
//     loss gradient and pulls every learnable parameter's gradient;
//  4. applies the selected update rule with the batch-averaged gradients;
//  5. notifies monitor, which may stop training.
//
// Train returns the context error if ctx is cancelled between steps.
func (g *GradientDescent[T]) Train(ctx context.Context, net *nn.Network, data *DataSet[T], enc Encoding[T], monitor Monitor[T]) (Result, error) {
	var res Result

	opts, err := g.options.withDefaults()
	if err != nil {
		return res, err
	}
	if data == nil || data.Len() == 0 {
		return res, ErrEmptyDataSet
	}

	var params []*autodiff.Parameter
	for _, p := range net.Parameters() {
		if p.Learnable() {
			params = append(params, p)
		}
	}
	optimizer := opts.optimizer(params)

	g.logger.Debug("training started",
		"rule", opts.Rule(), "iterations", opts.Iterations, "parameters", len(params),
		"instances", data.Len(), "stochastic", opts.Stochastic)

	var pending []T
	for iteration := 1; iteration <= opts.Iterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if len(pending) == 0 {
			pending = data.Shuffled(g.rng)
		}
		batch := pending
		if opts.Stochastic {
			take := min(opts.batchLen(data.Len()), len(pending))
			batch = pending[len(pending)-take:]
			pending = pending[:len(pending)-take]
		}

		var total float64
		for _, instance := range batch {
			loss, err := g.accumulate(net, params, opts.Loss, enc, instance)
			if err != nil {
				return res, fmt.Errorf("train: iteration %d: %w", iteration, err)
			}
			total += loss
		}
		optimizer.Step(len(batch))

		res.Iterations = iteration
		res.Loss = total / float64(len(batch))
		g.logger.Debug("training step", "iteration", iteration, "batch", len(batch), "loss", res.Loss)

		if monitor == nil {
			continue
		}
		decision, err := monitor.Notify(ctx, Notification[T]{
			Network:     net,
			Iteration:   iteration,
			Loss:        opts.Loss,
			TrainingSet: batch,
			Validation:  opts.Validation,
			Encoding:    enc,
		})
		if err != nil {
			return res, fmt.Errorf("train: monitor at iteration %d: %w", iteration, err)
		}
		if decision.StopTraining {
			res.Stopped = true
			g.logger.Debug("training stopped by monitor", "iteration", iteration)
			break
		}
	}

	return res, nil
}

// accumulate runs one instance through the network in a fresh training
// session and adds its loss gradient to every parameter's accumulator.
func (g *GradientDescent[T]) accumulate(net *nn.Network, params []*autodiff.Parameter, loss nn.LossFunc, enc Encoding[T], instance T) (float64, error) {
	s := autodiff.NewSessionWithRand(true, g.rng)

	predicted, err := net.PredictSession(s, enc.Predictors(instance))
	if err != nil {
		return 0, err
	}
	expected := enc.Responses(instance)

	if err := net.SetLossGradient(s, loss.Gradient(predicted, expected)); err != nil {
		return 0, err
	}
	for _, p := range params {
		if _, err := p.Prebackprop(s); err != nil {
			return 0, err
		}
	}
	return loss.Evaluate(predicted, expected), nil
}
