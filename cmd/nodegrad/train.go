package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/born-ml/nodegrad/internal/envconfig"
	"github.com/born-ml/nodegrad/internal/nn"
	"github.com/born-ml/nodegrad/internal/parallel"
	"github.com/born-ml/nodegrad/internal/train"
)

// runConfig holds the flags shared by every "train" subcommand.
type runConfig struct {
	Iterations   int
	LearningRate float64
	Seed         uint64
	Every        int    // Table row and log interval
	Workers      int    // Final evaluation workers
	Save         string // Parameter file, empty to skip saving
}

// scenario describes how to train one task.
type scenario[T any] struct {
	Factory  func() (*nn.Network, error) // Builds clones for parallel evaluation
	Data     *train.DataSet[T]
	Encoding train.Encoding[T]
	Options  train.Options[T]
	Accuracy train.AccuracyFunc
}

// runTraining trains net on sc, renders the monitor history, evaluates the
// result on the whole data set and saves the parameters if requested.
func runTraining[T any](ctx context.Context, w io.Writer, net *nn.Network, cfg runConfig, sc scenario[T]) error {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed+1))

	opts := sc.Options
	opts.Iterations = cfg.Iterations
	opts.LearningRate = cfg.LearningRate

	monitor := train.NewLossMonitor[T]()
	monitor.Accuracy = sc.Accuracy
	monitor.LogEvery = cfg.Every
	monitor.Rand = rng

	gd := train.NewGradientDescent(opts).WithRand(rng)
	res, err := gd.Train(ctx, net, sc.Data, sc.Encoding, monitor)
	if err != nil {
		return err
	}
	monitor.WriteTable(w, cfg.Every)

	ev := &train.Evaluator[T]{
		Factory:  sc.Factory,
		Encoding: sc.Encoding,
		Loss:     opts.Loss,
		Accuracy: sc.Accuracy,
		Parallel: parallel.DefaultConfig().WithWorkers(cfg.Workers),
	}
	metrics, err := ev.Evaluate(ctx, net.ParameterValues(), sc.Data)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\ntrained %d iterations (%s)\n", res.Iterations, opts.Rule())
	fmt.Fprintf(w, "loss:      %.6g\n", metrics.Loss)
	if sc.Accuracy != nil {
		fmt.Fprintf(w, "accuracy:  %.2f%%\n", 100*metrics.Accuracy)
	}

	if cfg.Save != "" {
		if err := net.SaveParameters(cfg.Save); err != nil {
			return err
		}
		slog.Info("parameters saved", "path", cfg.Save, "fingerprint", net.Fingerprint())
		fmt.Fprintf(w, "saved:     %s\n", cfg.Save)
	}
	return nil
}

// seedFromFlags returns --seed when given, then NODEGRAD_SEED, then a
// random seed.
func seedFromFlags(cmd *cobra.Command) uint64 {
	if cmd.Flags().Changed("seed") {
		seed, _ := cmd.Flags().GetUint64("seed")
		return seed
	}
	if seed, ok := envconfig.Seed(); ok {
		return seed
	}
	return rand.Uint64()
}

// TrainHandler trains the task named by the command.
func TrainHandler(cmd *cobra.Command, _ []string) error {
	t, err := lookupTask(cmd.Name())
	if err != nil {
		return err
	}

	cfg := runConfig{Seed: seedFromFlags(cmd)}
	cfg.Iterations, _ = cmd.Flags().GetInt("iterations")
	cfg.LearningRate, _ = cmd.Flags().GetFloat64("lr")
	cfg.Every, _ = cmd.Flags().GetInt("every")
	cfg.Workers, _ = cmd.Flags().GetInt("workers")
	cfg.Save, _ = cmd.Flags().GetString("save")

	if cfg.Iterations <= 0 {
		return fmt.Errorf("--iterations must be positive, got %d", cfg.Iterations)
	}
	if cfg.LearningRate <= 0 {
		return fmt.Errorf("--lr must be positive, got %v", cfg.LearningRate)
	}
	if cfg.Every <= 0 {
		cfg.Every = max(cfg.Iterations/10, 1)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = int(envconfig.Workers())
	}

	slog.Info("training", "task", t.Name, "seed", cfg.Seed, "iterations", cfg.Iterations, "lr", cfg.LearningRate)

	net, err := t.Network(rand.NewPCG(cfg.Seed, cfg.Seed))
	if err != nil {
		return err
	}
	slog.Debug("network built", "parameters", len(net.Parameters()))

	return t.Train(cmd.Context(), cmd.OutOrStdout(), net, cfg)
}

func newTrainCmd() *cobra.Command {
	trainCmd := &cobra.Command{
		Use:   "train",
		Short: "Train a built-in task",
	}

	for _, t := range tasks {
		sub := &cobra.Command{
			Use:   t.Name,
			Short: t.Short,
			Args:  cobra.NoArgs,
			RunE:  TrainHandler,
		}
		sub.Flags().Int("iterations", t.Iterations, "Number of update steps")
		sub.Flags().Float64("lr", t.LR, "Learning rate")
		sub.Flags().Uint64("seed", 0, "Random seed (default: NODEGRAD_SEED or random)")
		sub.Flags().Int("every", 0, "Report every N iterations (default: iterations/10)")
		sub.Flags().Int("workers", 0, "Evaluation workers (default: NODEGRAD_WORKERS)")
		sub.Flags().String("save", "", "Write the trained parameters to this file (.json or .safetensors)")
		trainCmd.AddCommand(sub)
	}

	return trainCmd
}
