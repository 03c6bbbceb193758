package train

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// AccuracyFunc scores a prediction against its expected response in [0, 1].
type AccuracyFunc func(predicted, expected mat.Matrix) float64

// ArgmaxAccuracy returns the fraction of rows whose largest predicted entry
// sits in the same column as the largest expected entry.
func ArgmaxAccuracy(predicted, expected mat.Matrix) float64 {
	rows, _ := checkAccuracyShapes(predicted, expected)
	if rows == 0 {
		return 0
	}
	var hits int
	for i := range rows {
		if floats.MaxIdx(mat.Row(nil, i, predicted)) == floats.MaxIdx(mat.Row(nil, i, expected)) {
			hits++
		}
	}
	return float64(hits) / float64(rows)
}

// SequenceAccuracy returns 1 when every row's argmax matches and 0
// otherwise.
func SequenceAccuracy(predicted, expected mat.Matrix) float64 {
	if ArgmaxAccuracy(predicted, expected) == 1 {
		return 1
	}
	return 0
}

// ThresholdAccuracy returns an AccuracyFunc that counts entries on the same
// side of threshold in both matrices.
func ThresholdAccuracy(threshold float64) AccuracyFunc {
	return func(predicted, expected mat.Matrix) float64 {
		rows, cols := checkAccuracyShapes(predicted, expected)
		if rows*cols == 0 {
			return 0
		}
		var hits int
		for i := range rows {
			for j := range cols {
				if (predicted.At(i, j) >= threshold) == (expected.At(i, j) >= threshold) {
					hits++
				}
			}
		}
		return float64(hits) / float64(rows*cols)
	}
}

func checkAccuracyShapes(predicted, expected mat.Matrix) (rows, cols int) {
	rows, cols = predicted.Dims()
	er, ec := expected.Dims()
	if rows != er || cols != ec {
		panic(fmt.Sprintf("train: predicted [%d×%d] and expected [%d×%d] must have the same shape",
			rows, cols, er, ec))
	}
	return rows, cols
}
