package nn

import (
	"fmt"
	"io"

	"github.com/born-ml/nodegrad/internal/serialization"
)

// SaveParameters writes the parameter values to path as a flat JSON array,
// or as a SafeTensors file when path ends in ".safetensors".
//
// Returns ErrUntrainedModel if the network has no parameters.
func (n *Network) SaveParameters(path string) error {
	values := n.ParameterValues()
	if len(values) == 0 {
		return ErrUntrainedModel
	}
	if err := serialization.WriteFile(path, values); err != nil {
		return fmt.Errorf("nn: save parameters: %w", err)
	}
	return nil
}

// LoadParameters reads a flat parameter list from path into the network.
// The file must have been produced by a network of identical topology.
//
// Returns ErrUntrainedModel if the network has no parameters and
// ErrParameterCount if the list length does not match.
func (n *Network) LoadParameters(path string) error {
	if len(n.Parameters()) == 0 {
		return ErrUntrainedModel
	}
	values, err := serialization.ReadFile(path)
	if err != nil {
		return fmt.Errorf("nn: load parameters: %w", err)
	}
	return n.SetParameterValues(values)
}

// WriteParameters writes the parameter values to w.
func (n *Network) WriteParameters(w io.Writer) error {
	values := n.ParameterValues()
	if len(values) == 0 {
		return ErrUntrainedModel
	}
	return serialization.Encode(w, values)
}

// ReadParameters reads a parameter list from r into the network.
func (n *Network) ReadParameters(r io.Reader) error {
	if len(n.Parameters()) == 0 {
		return ErrUntrainedModel
	}
	values, err := serialization.Decode(r)
	if err != nil {
		return fmt.Errorf("nn: read parameters: %w", err)
	}
	return n.SetParameterValues(values)
}

// Fingerprint returns a short checksum of the current parameter values.
func (n *Network) Fingerprint() string {
	return serialization.Fingerprint(n.ParameterValues())
}
