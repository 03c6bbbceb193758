package serialization_test

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/nodegrad/internal/serialization"
)

// safeTensorsBytes builds a SafeTensors payload from a header map and raw
// little-endian values.
func safeTensorsBytes(t *testing.T, header map[string]any, data ...any) []byte {
	t.Helper()

	headerJSON, err := json.Marshal(header)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(len(headerJSON))))
	buf.Write(headerJSON)
	for _, v := range data {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, v))
	}
	return buf.Bytes()
}

func TestSafeTensors_EncodeDecode(t *testing.T) {
	values := []float64{0.1532, -0.0271, 1, 0, 1e-12, -3.5e7}

	var buf bytes.Buffer
	require.NoError(t, serialization.EncodeSafeTensors(&buf, values))

	raw := buf.Bytes()
	headerSize := binary.LittleEndian.Uint64(raw)
	assert.Zero(t, headerSize%8, "tensor data must be 8-byte aligned")
	assert.Equal(t, 8+int(headerSize)+8*len(values), len(raw))

	var header serialization.SafeTensorsHeader
	require.NoError(t, json.Unmarshal(raw[8:8+headerSize], &header))
	assert.Equal(t, "6", header.Metadata["count"])
	info, ok := header.Tensors[serialization.ParametersTensor]
	require.True(t, ok)
	assert.Equal(t, serialization.SafeTensorsF64, info.DType)
	assert.Equal(t, []int{6}, info.Shape)
	assert.Equal(t, [2]int64{0, 48}, info.DataOffsets)

	got, err := serialization.DecodeSafeTensors(&buf)
	require.NoError(t, err)
	assert.Equal(t, values, got)
}

func TestSafeTensors_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, serialization.EncodeSafeTensors(&buf, nil))

	got, err := serialization.DecodeSafeTensors(&buf)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSafeTensors_NonFinite(t *testing.T) {
	var buf bytes.Buffer
	err := serialization.EncodeSafeTensors(&buf, []float64{math.Inf(-1)})
	require.ErrorIs(t, err, serialization.ErrNonFinite)
	assert.Zero(t, buf.Len())
}

func TestSafeTensors_F32SingleTensor(t *testing.T) {
	payload := safeTensorsBytes(t, map[string]any{
		"__metadata__": map[string]string{"format": "pt"},
		"weight": serialization.SafeTensorInfo{
			DType:       serialization.SafeTensorsF32,
			Shape:       []int{3},
			DataOffsets: [2]int64{0, 12},
		},
	}, []float32{0.5, -1.25, 4})

	got, err := serialization.DecodeSafeTensors(bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, -1.25, 4}, got)
}

func TestSafeTensors_Offset(t *testing.T) {
	payload := safeTensorsBytes(t, map[string]any{
		"bias": serialization.SafeTensorInfo{
			DType: serialization.SafeTensorsF64, Shape: []int{1}, DataOffsets: [2]int64{0, 8},
		},
		serialization.ParametersTensor: serialization.SafeTensorInfo{
			DType: serialization.SafeTensorsF64, Shape: []int{2}, DataOffsets: [2]int64{8, 24},
		},
	}, []float64{9, 1, 2})

	got, err := serialization.DecodeSafeTensors(bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, got)
}

func TestSafeTensors_Invalid(t *testing.T) {
	f64 := func(shape []int, start, end int64) serialization.SafeTensorInfo {
		return serialization.SafeTensorInfo{DType: serialization.SafeTensorsF64, Shape: shape, DataOffsets: [2]int64{start, end}}
	}

	tooLarge := make([]byte, 8)
	binary.LittleEndian.PutUint64(tooLarge, 1<<40)

	tests := []struct {
		name    string
		payload []byte
	}{
		{"empty", nil},
		{"header too large", tooLarge},
		{"truncated header", safeTensorsBytes(t, map[string]any{"parameters": f64([]int{1}, 0, 8)})[:12]},
		{"rank 2", safeTensorsBytes(t, map[string]any{"parameters": f64([]int{1, 1}, 0, 8)}, 1.0)},
		{"bad offsets", safeTensorsBytes(t, map[string]any{"parameters": f64([]int{2}, 0, 8)}, 1.0)},
		{"truncated data", safeTensorsBytes(t, map[string]any{"parameters": f64([]int{2}, 0, 16)}, 1.0)},
		{"count overflow", safeTensorsBytes(t, map[string]any{"parameters": f64([]int{1 << 61}, 0, 0)})},
		{"huge count", safeTensorsBytes(t, map[string]any{"parameters": f64([]int{1 << 40}, 0, 8 << 40)})},
		{"huge offset", safeTensorsBytes(t, map[string]any{"parameters": f64([]int{1}, 1 << 50, 1<<50 + 8)}, 1.0)},
		{"negative count", safeTensorsBytes(t, map[string]any{"parameters": f64([]int{-1}, 8, 0)})},
		{"ambiguous", safeTensorsBytes(t, map[string]any{"a": f64([]int{1}, 0, 8), "b": f64([]int{1}, 8, 16)}, 1.0, 2.0)},
		{"dtype", safeTensorsBytes(t, map[string]any{"parameters": serialization.SafeTensorInfo{
			DType: "I64", Shape: []int{1}, DataOffsets: [2]int64{0, 8},
		}}, int64(1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := serialization.DecodeSafeTensors(bytes.NewReader(tt.payload))
			assert.ErrorIs(t, err, serialization.ErrInvalidFormat)
		})
	}
}

func TestReadWriteFile_SafeTensors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "params"+serialization.SafeTensorsExt)
	values := []float64{1.5, -2.25, 0}

	require.NoError(t, serialization.WriteFile(path, values))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, byte('['), raw[0], "expected a binary file")

	got, err := serialization.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, values, got)

	// A JSON reader does not accept the binary layout.
	jsonPath := filepath.Join(dir, "params.json")
	require.NoError(t, os.WriteFile(jsonPath, raw, 0o600))
	_, err = serialization.ReadFile(jsonPath)
	assert.ErrorIs(t, err, serialization.ErrInvalidFormat)
}
