package optim

import (
	"slices"

	"github.com/born-ml/nodegrad/internal/autodiff"
)

// SGD implements gradient descent with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * derivative
//
// Update rule with momentum:
//
//	velocity = momentum * velocity - lr * derivative
//	param = param + velocity
//
// where derivative is the accumulated gradient divided by the batch size.
//
// Example:
//
//	optimizer := optim.NewSGD(net.Parameters(), optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	})
type SGD struct {
	params     []*autodiff.Parameter
	lr         float64
	momentum   float64
	velocities map[*autodiff.Parameter]float64
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float64 // Learning rate (default: DefaultLR)
	Momentum float64 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer over the learnable params.
//
// Parameters:
//   - params: Parameters to optimize; non-learnable ones are skipped
//   - config: SGD configuration (LR, Momentum)
func NewSGD(params []*autodiff.Parameter, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = DefaultLR
	}

	return &SGD{
		params:     learnable(params),
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*autodiff.Parameter]float64),
	}
}

// Step performs a single optimization step.
//
// Velocities start at zero the first time a parameter is stepped.
func (s *SGD) Step(batchSize int) {
	for _, p := range s.params {
		d := derivative(p, batchSize)

		if s.momentum == 0 {
			p.Adjust(-s.lr * d)
			continue
		}

		velocity := s.momentum*s.velocities[p] - s.lr*d
		s.velocities[p] = velocity
		p.Adjust(velocity)
	}
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD) ZeroGrad() {
	zeroGrad(s.params)
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
//
// Useful for learning rate scheduling during training.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}

// Parameters returns the parameters this optimizer updates.
func (s *SGD) Parameters() []*autodiff.Parameter {
	return slices.Clone(s.params)
}

// Velocity returns the current momentum velocity of p (0 before its first
// step or without momentum).
func (s *SGD) Velocity(p *autodiff.Parameter) float64 {
	return s.velocities[p]
}
