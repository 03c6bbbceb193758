// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides parameter update rules.
//
// # Overview
//
// This package contains:
//   - SGD: plain gradient descent, or momentum when Momentum > 0
//   - Adam: adaptive moments with bias-corrected learning rate
//   - Optimizer interface for custom rules
//
// Optimizers read the gradient each parameter accumulated over a batch,
// divide it by the batch size, apply a step and reset the accumulator.
// Parameters created with autodiff.NewFixedParameter are skipped.
//
// # Basic Usage
//
//	optimizer := optim.NewAdam(net.Parameters(), optim.AdamConfig{
//	    LR:    0.01,
//	    Betas: [2]float64{0.9, 0.999},
//	})
//
//	for _, x := range batch {
//	    // predict, seed the loss gradient and call Prebackprop on
//	    // every parameter
//	}
//	optimizer.Step(len(batch))
//
// Most callers use train.GradientDescent, which runs this loop.
package optim
