package train

import (
	"github.com/emirpasic/gods/v2/queues/circularbuffer"
	"gonum.org/v1/gonum/floats"
)

// DefaultWindow is the number of values a monitor average covers.
const DefaultWindow = 100

// MovingAverage is the mean of the last Window pushed values.
type MovingAverage struct {
	values *circularbuffer.Queue[float64]
	window int
}

// NewMovingAverage creates an empty average over the last window values.
// A non-positive window selects DefaultWindow.
func NewMovingAverage(window int) *MovingAverage {
	if window <= 0 {
		window = DefaultWindow
	}
	return &MovingAverage{values: circularbuffer.New[float64](window), window: window}
}

// Push adds x, evicting the oldest value once the window is full.
func (a *MovingAverage) Push(x float64) {
	a.values.Enqueue(x)
}

// Average returns the mean of the retained values, or 0 when empty.
func (a *MovingAverage) Average() float64 {
	if a.values.Empty() {
		return 0
	}
	return floats.Sum(a.values.Values()) / float64(a.values.Size())
}

// Count returns the number of retained values.
func (a *MovingAverage) Count() int {
	return a.values.Size()
}

// Window returns the maximum number of retained values.
func (a *MovingAverage) Window() int {
	return a.window
}
