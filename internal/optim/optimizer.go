// Package optim implements the parameter update rules used by gradient
// descent training.
//
// This package provides:
//   - Optimizer interface: Base interface for all update rules
//   - SGD: plain gradient descent with optional momentum
//   - Adam: Adaptive Moment Estimation
//
// Optimizers read the gradient a Parameter accumulated over a batch (the
// sum of every Prebackprop in that batch), divide it by the batch size and
// apply one step. Applying a step resets the accumulator.
//
// Example usage:
//
//	params := network.Parameters()
//	optimizer := optim.NewAdam(params, optim.AdamConfig{LR: 0.01})
//
//	for range iterations {
//	    for _, x := range batch {
//	        s := autodiff.NewSession(true)
//	        // predict, seed the loss gradient, Prebackprop every parameter
//	    }
//	    optimizer.Step(len(batch))
//	}
package optim

import (
	"github.com/born-ml/nodegrad/internal/autodiff"
)

// DefaultLR is the learning rate used when a config leaves LR at zero.
const DefaultLR = 1e-4

// Optimizer is the base interface for all update rules.
//
// All optimizers must implement:
//   - Step: Apply one update from the accumulated batch gradients
//   - ZeroGrad: Discard accumulated gradients without updating
//   - GetLR/SetLR: Read and change the learning rate
type Optimizer interface {
	// Step updates every learnable parameter from its accumulated gradient
	// averaged over batchSize instances, then resets the accumulator.
	//
	// A non-positive batchSize is treated as 1.
	Step(batchSize int)

	// ZeroGrad clears all accumulated gradients.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float64

	// SetLR changes the learning rate used by subsequent steps.
	SetLR(lr float64)
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float64 // Learning rate
}

// learnable filters params down to the ones optimizers may update.
func learnable(params []*autodiff.Parameter) []*autodiff.Parameter {
	out := make([]*autodiff.Parameter, 0, len(params))
	for _, p := range params {
		if p != nil && p.Learnable() {
			out = append(out, p)
		}
	}
	return out
}

// derivative returns the batch-averaged gradient of p.
func derivative(p *autodiff.Parameter, batchSize int) float64 {
	if batchSize <= 0 {
		batchSize = 1
	}
	return p.Gradient() / float64(batchSize)
}

func zeroGrad(params []*autodiff.Parameter) {
	for _, p := range params {
		p.ZeroGrad()
	}
}
