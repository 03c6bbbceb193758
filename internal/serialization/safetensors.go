package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
)

// SafeTensors format:
// [8 bytes: header_size (uint64 LE)]
// [header_size bytes: JSON header]
// [tensor data: raw bytes]
//
// A parameter list is stored as one rank-1 tensor named ParametersTensor.

// SafeTensorsExt is the file extension that selects the SafeTensors format in
// ReadFile and WriteFile.
const SafeTensorsExt = ".safetensors"

// ParametersTensor is the tensor name used for the parameter list.
const ParametersTensor = "parameters"

// Bounds on untrusted input: the JSON header, and both the tensor data and
// the bytes skipped before it.
const (
	maxHeaderSize  = 100 * 1024 * 1024
	maxTensorBytes = 1 << 30
)

// SafeTensorsDType represents a SafeTensors data type.
type SafeTensorsDType string

// Supported SafeTensors dtypes. F32 lists are widened to float64 on read.
const (
	SafeTensorsF32 SafeTensorsDType = "F32"
	SafeTensorsF64 SafeTensorsDType = "F64"
)

func (d SafeTensorsDType) size() (int64, error) {
	switch d {
	case SafeTensorsF32:
		return 4, nil
	case SafeTensorsF64:
		return 8, nil
	default:
		return 0, fmt.Errorf("%w: unsupported dtype %q", ErrInvalidFormat, d)
	}
}

// SafeTensorInfo describes a tensor in SafeTensors format.
type SafeTensorInfo struct {
	DType       SafeTensorsDType `json:"dtype"`
	Shape       []int            `json:"shape"`
	DataOffsets [2]int64         `json:"data_offsets"` // [start, end)
}

// SafeTensorsHeader is the JSON header in SafeTensors format.
type SafeTensorsHeader struct {
	Metadata map[string]string
	Tensors  map[string]SafeTensorInfo
}

// MarshalJSON flattens Tensors next to the "__metadata__" key.
func (h SafeTensorsHeader) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(h.Tensors)+1)
	if len(h.Metadata) > 0 {
		flat["__metadata__"] = h.Metadata
	}
	for name, info := range h.Tensors {
		flat[name] = info
	}
	return json.Marshal(flat)
}

// UnmarshalJSON splits the "__metadata__" key from the tensor entries.
func (h *SafeTensorsHeader) UnmarshalJSON(data []byte) error {
	var rawMap map[string]json.RawMessage
	if err := json.Unmarshal(data, &rawMap); err != nil {
		return err
	}

	if metadataRaw, ok := rawMap["__metadata__"]; ok {
		if err := json.Unmarshal(metadataRaw, &h.Metadata); err != nil {
			return fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	h.Tensors = make(map[string]SafeTensorInfo, len(rawMap))
	for key, value := range rawMap {
		if key == "__metadata__" {
			continue
		}
		var info SafeTensorInfo
		if err := json.Unmarshal(value, &info); err != nil {
			return fmt.Errorf("failed to unmarshal tensor %s: %w", key, err)
		}
		h.Tensors[key] = info
	}
	return nil
}

// parameters returns the tensor holding the parameter list: ParametersTensor,
// or the only tensor of a single-tensor file.
func (h *SafeTensorsHeader) parameters() (SafeTensorInfo, error) {
	if info, ok := h.Tensors[ParametersTensor]; ok {
		return info, nil
	}
	if len(h.Tensors) == 1 {
		for _, info := range h.Tensors {
			return info, nil
		}
	}
	return SafeTensorInfo{}, fmt.Errorf("%w: no %q tensor among %d", ErrInvalidFormat, ParametersTensor, len(h.Tensors))
}

// EncodeSafeTensors writes values to w as a single F64 tensor.
//
// Returns a *ValidationError wrapping ErrNonFinite for NaN or infinite
// values, so both formats accept the same lists.
func EncodeSafeTensors(w io.Writer, values []float64) error {
	if err := validate(values); err != nil {
		return err
	}

	size := int64(len(values)) * 8
	header, err := json.Marshal(SafeTensorsHeader{
		Metadata: map[string]string{"count": strconv.Itoa(len(values))},
		Tensors: map[string]SafeTensorInfo{
			ParametersTensor: {DType: SafeTensorsF64, Shape: []int{len(values)}, DataOffsets: [2]int64{0, size}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}
	// Pad with spaces so tensor data starts 8-byte aligned.
	if pad := len(header) % 8; pad != 0 {
		header = append(header, bytes.Repeat([]byte{' '}, 8-pad)...)
	}

	buf := make([]byte, 8, 8+len(header)+int(size))
	binary.LittleEndian.PutUint64(buf, uint64(len(header)))
	buf = append(buf, header...)
	for _, v := range values {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("failed to encode parameters: %w", err)
	}
	return nil
}

// DecodeSafeTensors reads a parameter list stored as a rank-1 F64 or F32
// tensor from r.
func DecodeSafeTensors(r io.Reader) ([]float64, error) {
	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, fmt.Errorf("%w: failed to read header size: %v", ErrInvalidFormat, err)
	}
	if headerSize > maxHeaderSize {
		return nil, fmt.Errorf("%w: invalid header size: %d (too large)", ErrInvalidFormat, headerSize)
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, fmt.Errorf("%w: failed to read header: %v", ErrInvalidFormat, err)
	}
	var header SafeTensorsHeader
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("%w: failed to parse header JSON: %v", ErrInvalidFormat, err)
	}

	info, err := header.parameters()
	if err != nil {
		return nil, err
	}
	width, err := info.DType.size()
	if err != nil {
		return nil, err
	}
	if len(info.Shape) != 1 {
		return nil, fmt.Errorf("%w: parameter tensor has shape %v, want rank 1", ErrInvalidFormat, info.Shape)
	}
	count := int64(info.Shape[0])
	start, end := info.DataOffsets[0], info.DataOffsets[1]
	if count < 0 || count > maxTensorBytes/width {
		return nil, fmt.Errorf("%w: invalid value count %d for %s (limit %d bytes)",
			ErrInvalidFormat, count, info.DType, maxTensorBytes)
	}
	if start < 0 || start > maxTensorBytes || end-start != count*width {
		return nil, fmt.Errorf("%w: invalid data offsets [%d, %d] for %d %s values",
			ErrInvalidFormat, start, end, count, info.DType)
	}

	if _, err := io.CopyN(io.Discard, r, start); err != nil {
		return nil, fmt.Errorf("%w: failed to seek to tensor data: %v", ErrInvalidFormat, err)
	}
	data := make([]byte, end-start)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("%w: failed to read tensor data: %v", ErrInvalidFormat, err)
	}

	values := make([]float64, count)
	for i := range values {
		switch info.DType {
		case SafeTensorsF64:
			values[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[8*i:]))
		case SafeTensorsF32:
			values[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:])))
		}
	}
	return values, nil
}
