package train

import (
	"math/rand/v2"
	"slices"
)

// DataSet is an immutable collection of training instances.
type DataSet[T any] struct {
	entries []T
}

// NewDataSet creates a data set over a copy of entries.
func NewDataSet[T any](entries ...T) *DataSet[T] {
	return &DataSet[T]{entries: slices.Clone(entries)}
}

// Entries returns a copy of the instances.
func (d *DataSet[T]) Entries() []T {
	return slices.Clone(d.entries)
}

// Len returns the number of instances.
func (d *DataSet[T]) Len() int {
	return len(d.entries)
}

// At returns instance i.
func (d *DataSet[T]) At(i int) T {
	return d.entries[i]
}

// Shuffled returns the instances in a random order drawn from rng.
// A nil rng uses the global generator.
func (d *DataSet[T]) Shuffled(rng *rand.Rand) []T {
	out := slices.Clone(d.entries)
	shuffle := rand.Shuffle
	if rng != nil {
		shuffle = rng.Shuffle
	}
	shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// Sample returns a data set of min(n, Len()) distinct instances drawn
// without replacement.
func (d *DataSet[T]) Sample(n int, rng *rand.Rand) *DataSet[T] {
	n = max(0, min(n, len(d.entries)))
	return &DataSet[T]{entries: d.Shuffled(rng)[:n]}
}

// Split partitions a shuffled copy of the instances into a training set
// holding fraction of them and a validation set holding the rest.
func (d *DataSet[T]) Split(fraction float64, rng *rand.Rand) (training, validation *DataSet[T]) {
	fraction = max(0, min(1, fraction))
	shuffled := d.Shuffled(rng)
	cut := int(fraction * float64(len(shuffled)))
	return &DataSet[T]{entries: shuffled[:cut]}, &DataSet[T]{entries: shuffled[cut:]}
}
