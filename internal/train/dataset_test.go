package train_test

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/born-ml/nodegrad/internal/train"
)

func TestDataSet(t *testing.T) {
	src := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	data := train.NewDataSet(src...)
	src[0] = 100

	assert.Equal(t, 10, data.Len())
	assert.Equal(t, 1, data.At(0))

	entries := data.Entries()
	entries[1] = 200
	assert.Equal(t, 2, data.At(1))
}

func TestDataSet_Shuffled(t *testing.T) {
	data := train.NewDataSet(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)

	a := data.Shuffled(rand.New(rand.NewPCG(1, 2)))
	b := data.Shuffled(rand.New(rand.NewPCG(1, 2)))
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed must give the same order (-a +b):\n%s", diff)
	}

	slices.Sort(a)
	if diff := cmp.Diff(data.Entries(), a); diff != "" {
		t.Errorf("shuffle must be a permutation (-want +got):\n%s", diff)
	}
}

func TestDataSet_Sample(t *testing.T) {
	data := train.NewDataSet(1, 2, 3, 4, 5)
	rng := rand.New(rand.NewPCG(3, 4))

	sample := data.Sample(3, rng)
	assert.Equal(t, 3, sample.Len())
	got := sample.Entries()
	slices.Sort(got)
	assert.Len(t, slices.Compact(got), 3)

	assert.Equal(t, 5, data.Sample(50, rng).Len())
	assert.Equal(t, 0, data.Sample(-1, rng).Len())
}

func TestDataSet_Split(t *testing.T) {
	data := train.NewDataSet(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)

	training, validation := data.Split(0.8, rand.New(rand.NewPCG(5, 6)))
	assert.Equal(t, 8, training.Len())
	assert.Equal(t, 2, validation.Len())

	all := append(training.Entries(), validation.Entries()...)
	slices.Sort(all)
	assert.Equal(t, data.Entries(), all)
}
