// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package train runs gradient descent on nn networks.
//
// Example:
//
//	data := train.NewDataSet(points...)
//	enc := train.Encoding[point]{
//	    Predictors: func(p point) mat.Matrix { return mat.NewDense(1, 2, p.x[:]) },
//	    Responses:  func(p point) mat.Matrix { return mat.NewDense(1, 1, []float64{p.y}) },
//	}
//
//	opts := train.DefaultOptions[point]()
//	opts.LearningRate = 0.001
//	opts.Iterations = 1000
//
//	monitor := train.NewLossMonitor[point]()
//	res, err := train.NewGradientDescent(opts).Train(ctx, net, data, enc, monitor)
package train

import (
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/nodegrad/internal/parallel"
	"github.com/born-ml/nodegrad/internal/train"
)

// Errors returned by training.
var (
	ErrConflictingRules = train.ErrConflictingRules
	ErrEmptyDataSet     = train.ErrEmptyDataSet
)

// Data

// DataSet is an immutable collection of training instances.
type DataSet[T any] = train.DataSet[T]

// NewDataSet creates a data set over a copy of entries.
func NewDataSet[T any](entries ...T) *DataSet[T] {
	return train.NewDataSet(entries...)
}

// Encoding maps a training instance to network matrices.
type Encoding[T any] = train.Encoding[T]

// Training

// StochasticFraction caps a stochastic batch at this share of the data set.
const StochasticFraction = train.StochasticFraction

// Options configures a GradientDescent run.
type Options[T any] = train.Options[T]

// MomentumOptions selects the momentum update rule.
type MomentumOptions = train.MomentumOptions

// AdamOptions selects the Adam update rule.
type AdamOptions = train.AdamOptions

// DefaultOptions returns plain stochastic gradient descent on the squared
// error.
func DefaultOptions[T any]() Options[T] {
	return train.DefaultOptions[T]()
}

// GradientDescent trains a network by batched gradient descent.
type GradientDescent[T any] = train.GradientDescent[T]

// NewGradientDescent creates a trainer.
func NewGradientDescent[T any](opts Options[T]) *GradientDescent[T] {
	return train.NewGradientDescent(opts)
}

// Result summarizes a training run.
type Result = train.Result

// Monitoring

// Monitor observes training after every step.
type Monitor[T any] = train.Monitor[T]

// MonitorFunc adapts a function to the Monitor interface.
type MonitorFunc[T any] = train.MonitorFunc[T]

// Notification describes one completed training step.
type Notification[T any] = train.Notification[T]

// Decision is a monitor's answer to a notification.
type Decision = train.Decision

// LossMonitor tracks moving averages of loss and accuracy.
type LossMonitor[T any] = train.LossMonitor[T]

// NewLossMonitor creates a monitor with empty averages.
func NewLossMonitor[T any]() *LossMonitor[T] {
	return train.NewLossMonitor[T]()
}

// Snapshot records the monitor averages after one step.
type Snapshot = train.Snapshot

// DefaultWindow is the number of values a monitor average covers.
const DefaultWindow = train.DefaultWindow

// MovingAverage is the mean of the last Window pushed values.
type MovingAverage = train.MovingAverage

// NewMovingAverage creates an empty average over the last window values.
func NewMovingAverage(window int) *MovingAverage {
	return train.NewMovingAverage(window)
}

// Evaluation

// AccuracyFunc scores a prediction against its expected response.
type AccuracyFunc = train.AccuracyFunc

// ArgmaxAccuracy returns the fraction of rows whose argmax agrees.
func ArgmaxAccuracy(predicted, expected mat.Matrix) float64 {
	return train.ArgmaxAccuracy(predicted, expected)
}

// SequenceAccuracy returns 1 when every row's argmax agrees, else 0.
func SequenceAccuracy(predicted, expected mat.Matrix) float64 {
	return train.SequenceAccuracy(predicted, expected)
}

// ThresholdAccuracy counts entries on the same side of threshold.
func ThresholdAccuracy(threshold float64) AccuracyFunc {
	return train.ThresholdAccuracy(threshold)
}

// Metrics are mean scores over a set of instances.
type Metrics = train.Metrics

// Evaluator scores a parameter vector on several network clones in
// parallel.
type Evaluator[T any] = train.Evaluator[T]

// ParallelConfig controls how many network clones an Evaluator runs.
type ParallelConfig = parallel.Config

// DefaultParallelConfig returns one worker per CPU.
func DefaultParallelConfig() ParallelConfig {
	return parallel.DefaultConfig()
}
