package optim

import (
	"math"
	"slices"

	"github.com/born-ml/nodegrad/internal/autodiff"
)

// AdamMomentSeed is the initial value of both Adam moment estimates.
const AdamMomentSeed = 1e-6

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Update rule, per parameter and with d the batch-averaged gradient:
//
//	m_t  = beta1 * m_{t-1} + (1-beta1) * d        // First moment
//	v_t  = beta2 * v_{t-1} + (1-beta2) * d²       // Second moment
//	lr_t = lr * sqrt(1 - beta2^t) / (1 - beta1^t) // Bias-corrected rate
//	param = param - lr_t * m_t / sqrt(v_t)
//
// Both moments start at AdamMomentSeed rather than zero, so the denominator
// is never zero and no epsilon term is needed.
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
//
// Example:
//
//	optimizer := optim.NewAdam(net.Parameters(), optim.AdamConfig{
//	    LR:    0.01,
//	    Betas: [2]float64{0.9, 0.999},
//	})
type Adam struct {
	params []*autodiff.Parameter
	lr     float64
	beta1  float64
	beta2  float64
	state  map[*autodiff.Parameter]*adamState
}

type adamState struct {
	m      float64 // First moment estimate
	v      float64 // Second moment estimate
	decay1 float64 // beta1^t
	decay2 float64 // beta2^t
	t      int
}

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	LR    float64    // Learning rate (default: DefaultLR)
	Betas [2]float64 // Decay of the first and second moments (default: [0.9, 0.999])
}

// NewAdam creates a new Adam optimizer over the learnable params.
//
// Default hyperparameters:
//   - LR: DefaultLR
//   - Beta1: 0.9
//   - Beta2: 0.999
func NewAdam(params []*autodiff.Parameter, config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = DefaultLR
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}

	return &Adam{
		params: learnable(params),
		lr:     config.LR,
		beta1:  config.Betas[0],
		beta2:  config.Betas[1],
		state:  make(map[*autodiff.Parameter]*adamState),
	}
}

// Step performs a single optimization step using the Adam algorithm.
func (a *Adam) Step(batchSize int) {
	for _, p := range a.params {
		st, ok := a.state[p]
		if !ok {
			st = &adamState{m: AdamMomentSeed, v: AdamMomentSeed, decay1: 1, decay2: 1}
			a.state[p] = st
		}

		d := derivative(p, batchSize)
		st.v = a.beta2*st.v + (1-a.beta2)*d*d
		st.m = a.beta1*st.m + (1-a.beta1)*d
		st.decay1 *= a.beta1
		st.decay2 *= a.beta2
		st.t++

		correctedLR := a.lr * math.Sqrt(1-st.decay2) / (1 - st.decay1)
		p.Adjust(-correctedLR * st.m / math.Sqrt(st.v))
	}
}

// ZeroGrad clears gradients for all parameters.
func (a *Adam) ZeroGrad() {
	zeroGrad(a.params)
}

// GetLR returns the current learning rate.
func (a *Adam) GetLR() float64 {
	return a.lr
}

// SetLR updates the learning rate.
//
// Useful for learning rate scheduling during training.
func (a *Adam) SetLR(lr float64) {
	a.lr = lr
}

// Parameters returns the parameters this optimizer updates.
func (a *Adam) Parameters() []*autodiff.Parameter {
	return slices.Clone(a.params)
}

// GetTimestep returns the number of steps applied to p.
//
// Useful for monitoring optimizer state.
func (a *Adam) GetTimestep(p *autodiff.Parameter) int {
	if st, ok := a.state[p]; ok {
		return st.t
	}
	return 0
}

// Moments returns the first and second moment estimates of p.
func (a *Adam) Moments(p *autodiff.Parameter) (m, v float64) {
	if st, ok := a.state[p]; ok {
		return st.m, st.v
	}
	return AdamMomentSeed, AdamMomentSeed
}
