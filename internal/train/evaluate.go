package train

import (
	"context"
	"fmt"

	"github.com/born-ml/nodegrad/internal/nn"
	"github.com/born-ml/nodegrad/internal/parallel"
)

// Metrics are mean scores over a set of instances.
type Metrics struct {
	Loss     float64 // Mean loss
	Accuracy float64 // Mean accuracy (0 without an AccuracyFunc)
	Count    int     // Evaluated instances
}

// Evaluator scores a parameter vector on a data set using several network
// clones in parallel. A Network caches node values per session and cannot
// be shared between goroutines, so every worker builds its own clone from
// Factory and loads the parameters into it.
type Evaluator[T any] struct {
	Factory  func() (*nn.Network, error) // Builds a network of the trained topology
	Encoding Encoding[T]
	Loss     nn.LossFunc  // Loss function (nil = MeanSquaredError)
	Accuracy AccuracyFunc // Optional accuracy score
	Parallel parallel.Config
}

// Evaluate returns the mean loss and accuracy of params over data.
func (e *Evaluator[T]) Evaluate(ctx context.Context, params []float64, data *DataSet[T]) (Metrics, error) {
	if data == nil || data.Len() == 0 {
		return Metrics{}, ErrEmptyDataSet
	}
	loss := e.Loss
	if loss == nil {
		loss = nn.MeanSquaredError{}
	}

	partial := make([]Metrics, e.Parallel.Workers(data.Len()))
	err := parallel.Chunks(ctx, data.Len(), e.Parallel, func(ctx context.Context, worker, start, end int) error {
		net, err := e.Factory()
		if err != nil {
			return fmt.Errorf("train: build network: %w", err)
		}
		if err := net.SetParameterValues(params); err != nil {
			return err
		}
		m, err := evaluate(net, data.entries[start:end], e.Encoding, loss, e.Accuracy)
		if err != nil {
			return err
		}
		partial[worker] = m
		return ctx.Err()
	})
	if err != nil {
		return Metrics{}, err
	}

	var total Metrics
	for _, m := range partial {
		total.Loss += m.Loss * float64(m.Count)
		total.Accuracy += m.Accuracy * float64(m.Count)
		total.Count += m.Count
	}
	total.Loss /= float64(total.Count)
	total.Accuracy /= float64(total.Count)
	return total, nil
}

// evaluate scores entries sequentially on net in inference sessions.
func evaluate[T any](net *nn.Network, entries []T, enc Encoding[T], loss nn.LossFunc, accuracy AccuracyFunc) (Metrics, error) {
	m := Metrics{Count: len(entries)}
	if len(entries) == 0 {
		return m, nil
	}
	for _, instance := range entries {
		predicted, err := net.Predict(enc.Predictors(instance))
		if err != nil {
			return Metrics{}, err
		}
		expected := enc.Responses(instance)
		m.Loss += loss.Evaluate(predicted, expected)
		if accuracy != nil {
			m.Accuracy += accuracy(predicted, expected)
		}
	}
	m.Loss /= float64(len(entries))
	m.Accuracy /= float64(len(entries))
	return m, nil
}
