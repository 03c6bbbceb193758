package nn

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// LossFunc scores a prediction against its expected response.
type LossFunc interface {
	// Name returns the identifier used by LossByName.
	Name() string

	// Evaluate returns the summed loss over every entry.
	Evaluate(predicted, expected mat.Matrix) float64

	// Gradient returns ∂loss/∂predicted, shaped like predicted.
	Gradient(predicted, expected mat.Matrix) *mat.Dense
}

// MeanSquaredError is the squared-error loss.
//
// Loss = Σ (expected - predicted)²
//
// The sum is not divided by the entry count; the trainer averages over the
// batch instead.
type MeanSquaredError struct{}

// Name returns "mse".
func (MeanSquaredError) Name() string { return "mse" }

// Evaluate returns Σ (e - p)².
func (MeanSquaredError) Evaluate(predicted, expected mat.Matrix) float64 {
	return reduce("MeanSquaredError", predicted, expected, func(p, e float64) float64 {
		return (e - p) * (e - p)
	})
}

// Gradient returns -2(e - p) per entry.
func (MeanSquaredError) Gradient(predicted, expected mat.Matrix) *mat.Dense {
	return elementwise("MeanSquaredError", predicted, expected, func(p, e float64) float64 {
		return -2 * (e - p)
	})
}

// Clamp bounds for cross-entropy losses.
const (
	BinaryClamp      = 1e-4
	CategoricalClamp = 1e-8
)

// BinaryCrossEntropy is the per-entry logistic loss. Predicted and expected
// values are clamped to [BinaryClamp, 1-BinaryClamp].
//
// Loss = Σ -e·ln(p) - (1-e)·ln(1-p)
type BinaryCrossEntropy struct{}

// Name returns "bce".
func (BinaryCrossEntropy) Name() string { return "bce" }

// Evaluate returns the summed binary cross-entropy.
func (BinaryCrossEntropy) Evaluate(predicted, expected mat.Matrix) float64 {
	return reduce("BinaryCrossEntropy", predicted, expected, func(p, e float64) float64 {
		p, e = clamp(p, BinaryClamp), clamp(e, BinaryClamp)
		return -e*math.Log(p) - (1-e)*math.Log(1-p)
	})
}

// Gradient returns -e/p + (1-e)/(1-p) per entry.
func (BinaryCrossEntropy) Gradient(predicted, expected mat.Matrix) *mat.Dense {
	return elementwise("BinaryCrossEntropy", predicted, expected, func(p, e float64) float64 {
		p, e = clamp(p, BinaryClamp), clamp(e, BinaryClamp)
		return -(e / p) + (1-e)/(1-p)
	})
}

// CategoricalCrossEntropy is the cross-entropy of a probability row against
// a one-hot (or soft) target row. Values are clamped to
// [CategoricalClamp, 1-CategoricalClamp].
//
// Loss = Σ -e·ln(p)
type CategoricalCrossEntropy struct{}

// Name returns "cce".
func (CategoricalCrossEntropy) Name() string { return "cce" }

// Evaluate returns the summed categorical cross-entropy.
func (CategoricalCrossEntropy) Evaluate(predicted, expected mat.Matrix) float64 {
	return reduce("CategoricalCrossEntropy", predicted, expected, func(p, e float64) float64 {
		p, e = clamp(p, CategoricalClamp), clamp(e, CategoricalClamp)
		return -e * math.Log(p)
	})
}

// Gradient returns -e/p per entry.
func (CategoricalCrossEntropy) Gradient(predicted, expected mat.Matrix) *mat.Dense {
	return elementwise("CategoricalCrossEntropy", predicted, expected, func(p, e float64) float64 {
		p, e = clamp(p, CategoricalClamp), clamp(e, CategoricalClamp)
		return -(e / p)
	})
}

// LossByName returns the loss registered under name ("mse", "bce", "cce").
func LossByName(name string) (LossFunc, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mse", "mean_squared_error":
		return MeanSquaredError{}, nil
	case "bce", "binary_cross_entropy":
		return BinaryCrossEntropy{}, nil
	case "cce", "categorical_cross_entropy":
		return CategoricalCrossEntropy{}, nil
	default:
		return nil, fmt.Errorf("nn: unknown loss %q", name)
	}
}

func clamp(x, eps float64) float64 {
	return math.Max(eps, math.Min(1-eps, x))
}

func checkLossShapes(op string, predicted, expected mat.Matrix) (rows, cols int) {
	rows, cols = predicted.Dims()
	er, ec := expected.Dims()
	if rows != er || cols != ec {
		panic(fmt.Sprintf("%s: predicted [%d×%d] and expected [%d×%d] must have the same shape",
			op, rows, cols, er, ec))
	}
	return rows, cols
}

func reduce(op string, predicted, expected mat.Matrix, f func(p, e float64) float64) float64 {
	rows, cols := checkLossShapes(op, predicted, expected)
	var total float64
	for i := range rows {
		for j := range cols {
			total += f(predicted.At(i, j), expected.At(i, j))
		}
	}
	return total
}

func elementwise(op string, predicted, expected mat.Matrix, f func(p, e float64) float64) *mat.Dense {
	rows, cols := checkLossShapes(op, predicted, expected)
	grad := mat.NewDense(rows, cols, nil)
	grad.Apply(func(i, j int, _ float64) float64 {
		return f(predicted.At(i, j), expected.At(i, j))
	}, grad)
	return grad
}
