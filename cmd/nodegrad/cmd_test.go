package main

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/nodegrad/internal/generate"
	"github.com/born-ml/nodegrad/internal/nn"
	"github.com/born-ml/nodegrad/internal/tokenizer"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewCLI()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "nodegrad version is "+version+"\n", out)

	out, err = run(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, version)
}

func TestTrainLinear(t *testing.T) {
	out, err := run(t, "train", "linear", "--seed", "1", "--every", "250")
	require.NoError(t, err)

	assert.Contains(t, out, "ITERATION")
	assert.Contains(t, out, "1000")
	assert.Contains(t, out, "trained 1000 iterations (sgd)")
	assert.NotContains(t, out, "accuracy:")
}

func TestTrainPredictParity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parity.json")

	out, err := run(t, "train", "parity", "--seed", "3", "--workers", "2", "--save", path)
	require.NoError(t, err)
	assert.Contains(t, out, "trained 200 iterations (adam)")
	assert.Contains(t, out, "accuracy:  100.00%")
	assert.FileExists(t, path)

	out, err = run(t, "predict", "parity", "--params", path, "7")
	require.NoError(t, err)
	assert.Contains(t, out, "odd")

	out, err = run(t, "predict", "parity", "--params", path, "10")
	require.NoError(t, err)
	assert.Contains(t, out, "even")

	_, err = run(t, "predict", "parity", "--params", path, "16")
	assert.Error(t, err)
}

func TestPredictErrors(t *testing.T) {
	dir := t.TempDir()
	linear := filepath.Join(dir, "linear.json")
	_, err := run(t, "train", "linear", "--iterations", "5", "--save", linear)
	require.NoError(t, err)

	_, err = run(t, "predict", "parity", "7")
	assert.ErrorContains(t, err, "--params is required")

	_, err = run(t, "predict", "parity", "--params", linear)
	assert.Error(t, err)

	_, err = run(t, "predict", "parity", "--params", linear, "7")
	assert.ErrorIs(t, err, nn.ErrParameterCount)

	_, err = run(t, "predict", "linear", "--params", filepath.Join(dir, "missing.json"), "1", "2")
	assert.Error(t, err)

	out, err := run(t, "predict", "linear", "--params", linear, "2", "6")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestTrainFlagErrors(t *testing.T) {
	_, err := run(t, "train", "linear", "--iterations", "0")
	assert.ErrorContains(t, err, "--iterations")

	_, err = run(t, "train", "linear", "--lr=-1")
	assert.ErrorContains(t, err, "--lr")

	_, err = run(t, "train", "linear", "extra")
	assert.Error(t, err)
}

func TestTrainReverse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reverse.safetensors")

	out, err := run(t, "train", "reverse", "--iterations", "2", "--seed", "5", "--save", path)
	require.NoError(t, err)
	assert.Contains(t, out, "trained 2 iterations (adam)")

	out, err = run(t, "predict", "reverse", "--params", path, "0", "1", "2")
	require.NoError(t, err)
	assert.Regexp(t, `^[0-2] [0-2] [0-2]\n$`, out)

	out, err = run(t, "predict", "reverse", "--params", path, "--temperature", "1", "--top-k", "2", "2", "2", "0")
	require.NoError(t, err)
	assert.Regexp(t, `^[0-2] [0-2] [0-2]\n$`, out)

	_, err = run(t, "predict", "reverse", "--params", path, "0", "1", "3")
	assert.ErrorIs(t, err, tokenizer.ErrUnknownSymbol)

	_, err = run(t, "predict", "reverse", "--params", path, "01", "1", "2")
	assert.ErrorContains(t, err, "single-symbol")
}

func TestReverseEncoding(t *testing.T) {
	s := sequence{0, 1, 2}
	assert.Equal(t, sequence{2, 1, 0}, s.reversed())

	x := mat.DenseCopyOf(reverseEncoding.Predictors(s))
	want := mat.NewDense(6, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
		0, 0, 0, // start row
		0, 0, 1,
		0, 1, 0,
	})
	if diff := cmp.Diff(want.RawMatrix().Data, x.RawMatrix().Data); diff != "" {
		t.Errorf("predictors (-want +got):\n%s", diff)
	}

	y := mat.DenseCopyOf(reverseEncoding.Responses(s))
	assert.True(t, mat.Equal(y, mat.NewDense(3, 3, []float64{0, 0, 1, 0, 1, 0, 1, 0, 0})))
}

func TestDecodeReverse(t *testing.T) {
	task, err := lookupTask("reverse")
	require.NoError(t, err)

	net, err := task.Network(nil)
	require.NoError(t, err)

	out, err := decodeReverse(context.Background(), net, sequence{2, 2, 1}, generate.SamplingConfig{})
	require.NoError(t, err)
	for _, v := range out {
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, reverseVocab)
	}

	_, err = lookupTask("xor")
	assert.Error(t, err)
}
