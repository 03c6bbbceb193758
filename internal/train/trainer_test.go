package train_test

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/nodegrad/internal/autodiff/ops"
	"github.com/born-ml/nodegrad/internal/nn"
	"github.com/born-ml/nodegrad/internal/train"
)

type point struct {
	x1, x2 float64
	y      float64
}

var pointEncoding = train.Encoding[point]{
	Predictors: func(p point) mat.Matrix { return mat.NewDense(1, 2, []float64{p.x1, p.x2}) },
	Responses:  func(p point) mat.Matrix { return mat.NewDense(1, 1, []float64{p.y}) },
}

func newLinearNetwork(t *testing.T) *nn.Network {
	t.Helper()

	net, err := nn.NewMultilayerPerceptron(nn.MLPConfig{
		InputWidth:        2,
		HiddenWidths:      []int{1},
		OutputWidth:       1,
		HiddenActivations: []ops.Activation{ops.Identity{}},
		Init:              nn.Fill(0.5),
	})
	require.NoError(t, err)
	return net
}

// TestGradientDescent_LinearRegression fits a 2-1-1 linear network to two
// points with plain full-batch gradient descent.
func TestGradientDescent_LinearRegression(t *testing.T) {
	net := newLinearNetwork(t)
	data := train.NewDataSet(point{2, 6, 8}, point{8, 2, 10})

	gd := train.NewGradientDescent[point](train.Options[point]{
		LearningRate: 0.001,
		Stochastic:   false,
		Iterations:   1000,
	}).WithRand(rand.New(rand.NewPCG(1, 1)))

	res, err := gd.Train(context.Background(), net, data, pointEncoding, nil)
	require.NoError(t, err)
	assert.Equal(t, 1000, res.Iterations)
	assert.False(t, res.Stopped)

	var loss float64
	for _, p := range data.Entries() {
		y, err := net.Predict(pointEncoding.Predictors(p))
		require.NoError(t, err)
		loss += nn.MeanSquaredError{}.Evaluate(y, pointEncoding.Responses(p))
	}
	assert.Less(t, loss, 1e-6)
}

type parity struct {
	n int
}

func (p parity) bits() mat.Matrix {
	x := mat.NewDense(1, 4, nil)
	for k := range 4 {
		x.Set(0, k, float64((p.n>>k)&1))
	}
	return x
}

func (p parity) class() mat.Matrix {
	y := mat.NewDense(1, 2, nil)
	y.Set(0, p.n%2, 1)
	return y
}

var parityEncoding = train.Encoding[parity]{
	Predictors: parity.bits,
	Responses:  parity.class,
}

func parityData() *train.DataSet[parity] {
	entries := make([]parity, 16)
	for n := range entries {
		entries[n] = parity{n}
	}
	return train.NewDataSet(entries...)
}

func newParityNetwork(seed uint64) func() (*nn.Network, error) {
	return func() (*nn.Network, error) {
		return nn.NewMultilayerPerceptron(nn.MLPConfig{
			InputWidth:    4,
			OutputWidth:   2,
			OutputSoftmax: true,
			Source:        rand.NewPCG(seed, seed),
		})
	}
}

// TestGradientDescent_AdamParity trains a single-layer softmax classifier
// to tell odd numbers from even ones.
func TestGradientDescent_AdamParity(t *testing.T) {
	net, err := newParityNetwork(3)()
	require.NoError(t, err)
	data := parityData()

	monitor := train.NewLossMonitor[parity]()
	monitor.Accuracy = train.ArgmaxAccuracy

	gd := train.NewGradientDescent[parity](train.Options[parity]{
		LearningRate: 0.05,
		Loss:         nn.CategoricalCrossEntropy{},
		Iterations:   200,
		Adam:         &train.AdamOptions{MomentumRatio: 0.999, MomentumRatio2: 0.9},
	}).WithRand(rand.New(rand.NewPCG(2, 2)))

	_, err = gd.Train(context.Background(), net, data, parityEncoding, monitor)
	require.NoError(t, err)

	history := monitor.History()
	require.Len(t, history, 200)
	assert.Less(t, history[len(history)-1].TrainingLoss, history[0].TrainingLoss)

	var hits float64
	for _, p := range data.Entries() {
		y, err := net.Predict(p.bits())
		require.NoError(t, err)
		hits += train.ArgmaxAccuracy(y, p.class())
	}
	assert.GreaterOrEqual(t, hits/16, 0.95)
}

func TestGradientDescent_StochasticBatches(t *testing.T) {
	net := newLinearNetwork(t)
	entries := make([]point, 10)
	for i := range entries {
		entries[i] = point{float64(i), 1, 0}
	}
	data := train.NewDataSet(entries...)

	var sizes []int
	seen := make(map[float64]int)
	monitor := train.MonitorFunc[point](func(_ context.Context, n train.Notification[point]) (train.Decision, error) {
		sizes = append(sizes, len(n.TrainingSet))
		if n.Iteration <= 4 {
			for _, p := range n.TrainingSet {
				seen[p.x1]++
			}
		}
		return train.Decision{}, nil
	})

	gd := train.NewGradientDescent[point](train.Options[point]{
		Stochastic: true,
		Iterations: 5,
	})
	res, err := gd.Train(context.Background(), net, data, pointEncoding, monitor)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Iterations)

	// ceil(min(1000, 0.3·10)) = 3 per batch until the buffer runs out.
	assert.Equal(t, []int{3, 3, 3, 1, 3}, sizes)
	assert.Len(t, seen, 10)
	for x, c := range seen {
		assert.Equal(t, 1, c, "instance %v", x)
	}
}

func TestGradientDescent_EarlyStop(t *testing.T) {
	net := newLinearNetwork(t)
	data := train.NewDataSet(point{2, 6, 8}, point{8, 2, 10})

	monitor := train.NewLossMonitor[point]()
	monitor.StopWhen = func(_ *train.LossMonitor[point], iteration int) bool {
		return iteration == 7
	}

	gd := train.NewGradientDescent[point](train.Options[point]{LearningRate: 0.001, Iterations: 50})
	res, err := gd.Train(context.Background(), net, data, pointEncoding, monitor)
	require.NoError(t, err)
	assert.True(t, res.Stopped)
	assert.Equal(t, 7, res.Iterations)
	assert.Len(t, monitor.History(), 7)
}

func TestGradientDescent_FixedParameters(t *testing.T) {
	net := newLinearNetwork(t)
	params := net.Parameters()
	params[0].SetLearnable(false)

	data := train.NewDataSet(point{2, 6, 8})
	gd := train.NewGradientDescent[point](train.Options[point]{
		LearningRate: 0.001,
		Iterations:   10,
		Momentum:     &train.MomentumOptions{Ratio: 0.9},
	})
	_, err := gd.Train(context.Background(), net, data, pointEncoding, nil)
	require.NoError(t, err)

	assert.Equal(t, 0.5, params[0].Value())
	assert.NotEqual(t, 0.5, params[1].Value())
}

func TestGradientDescent_Errors(t *testing.T) {
	net := newLinearNetwork(t)
	data := train.NewDataSet(point{2, 6, 8})
	ctx := context.Background()

	gd := train.NewGradientDescent[point](train.Options[point]{
		Momentum: &train.MomentumOptions{Ratio: 0.9},
		Adam:     &train.AdamOptions{MomentumRatio: 0.999, MomentumRatio2: 0.9},
	})
	_, err := gd.Train(ctx, net, data, pointEncoding, nil)
	assert.ErrorIs(t, err, train.ErrConflictingRules)

	gd = train.NewGradientDescent[point](train.DefaultOptions[point]())
	_, err = gd.Train(ctx, net, train.NewDataSet[point](), pointEncoding, nil)
	assert.ErrorIs(t, err, train.ErrEmptyDataSet)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	res, err := gd.Train(cancelled, net, data, pointEncoding, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, res.Iterations)

	wrongShape := train.Encoding[point]{
		Predictors: func(point) mat.Matrix { return mat.NewDense(1, 3, nil) },
		Responses:  pointEncoding.Responses,
	}
	_, err = gd.Train(ctx, net, data, wrongShape, nil)
	var shapeErr *nn.ShapeError
	assert.ErrorAs(t, err, &shapeErr)
}

func TestDefaultOptions(t *testing.T) {
	opts := train.DefaultOptions[point]()
	assert.Equal(t, 1e-4, opts.LearningRate)
	assert.True(t, opts.Stochastic)
	assert.Equal(t, nn.MeanSquaredError{}, opts.Loss)
	assert.Equal(t, 1000, opts.BatchSize)
	assert.Equal(t, 100, opts.Iterations)
	assert.Equal(t, "sgd", opts.Rule())

	opts.Momentum = &train.MomentumOptions{Ratio: 0.5}
	assert.Equal(t, "momentum", opts.Rule())
	opts.Momentum = nil
	opts.Adam = &train.AdamOptions{}
	assert.Equal(t, "adam", opts.Rule())
}
