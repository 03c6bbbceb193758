package serialization

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// Encode writes values to w as a JSON array.
//
// Returns a *ValidationError wrapping ErrNonFinite for NaN or infinite
// values, which JSON cannot represent.
func Encode(w io.Writer, values []float64) error {
	if err := validate(values); err != nil {
		return err
	}
	if values == nil {
		values = []float64{}
	}
	if err := json.NewEncoder(w).Encode(values); err != nil {
		return fmt.Errorf("failed to encode parameters: %w", err)
	}
	return nil
}

// WriteFile writes values to path, replacing any existing file. The format
// follows the extension as in ReadFile.
func WriteFile(path string, values []float64) error {
	//nolint:gosec // G304: File path comes from user input, which is expected for parameter saving
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	encode := Encode
	if strings.EqualFold(filepath.Ext(path), SafeTensorsExt) {
		encode = EncodeSafeTensors
	}
	if err := encode(file, values); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}

func validate(values []float64) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ValidationError{Index: i, Value: v, Err: ErrNonFinite}
		}
	}
	return nil
}
