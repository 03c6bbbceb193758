package serialization

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Decode reads a JSON array of numbers from r.
func Decode(r io.Reader) ([]float64, error) {
	var values []float64
	if err := json.NewDecoder(r).Decode(&values); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty input", ErrInvalidFormat)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if values == nil {
		return nil, fmt.Errorf("%w: null", ErrInvalidFormat)
	}
	return values, nil
}

// decoderFor returns the decoder for the format selected by path's extension.
func decoderFor(path string) func(io.Reader) ([]float64, error) {
	if strings.EqualFold(filepath.Ext(path), SafeTensorsExt) {
		return DecodeSafeTensors
	}
	return Decode
}

// ReadFile reads a parameter list from path. Files ending in SafeTensorsExt
// are read as SafeTensors, anything else as a JSON array.
func ReadFile(path string) ([]float64, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for parameter loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	values, err := decoderFor(path)(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return values, nil
}
