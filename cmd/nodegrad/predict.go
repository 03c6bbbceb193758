package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/born-ml/nodegrad/internal/nn"
)

// PredictHandler loads saved parameters into the task network and prints
// its answer for the positional arguments.
func PredictHandler(cmd *cobra.Command, args []string) error {
	t, err := lookupTask(cmd.Name())
	if err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("params")
	if path == "" {
		return fmt.Errorf("--params is required")
	}

	net, err := t.Network(nil)
	if err != nil {
		return err
	}
	if err := net.LoadParameters(path); err != nil {
		if errors.Is(err, nn.ErrParameterCount) {
			return fmt.Errorf("%s was not saved by \"train %s\": %w", path, t.Name, err)
		}
		return err
	}
	slog.Debug("parameters loaded", "path", path, "fingerprint", net.Fingerprint())

	return t.Predict(cmd, net, args)
}

func newPredictCmd() *cobra.Command {
	predictCmd := &cobra.Command{
		Use:   "predict",
		Short: "Run a trained task network",
	}

	for _, t := range tasks {
		sub := &cobra.Command{
			Use:   t.PredictUse,
			Short: fmt.Sprintf("Predict with a trained %s network", t.Name),
			Args:  cobra.ExactArgs(t.PredictArgs),
			RunE:  PredictHandler,
		}
		sub.Flags().String("params", "", "Parameter file written by \"train "+t.Name+" --save\"")
		if t.PredictFlags != nil {
			t.PredictFlags(sub)
		}
		predictCmd.AddCommand(sub)
	}

	return predictCmd
}
