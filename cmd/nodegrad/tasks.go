package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/nodegrad/internal/autodiff/ops"
	"github.com/born-ml/nodegrad/internal/generate"
	"github.com/born-ml/nodegrad/internal/nn"
	"github.com/born-ml/nodegrad/internal/tokenizer"
	"github.com/born-ml/nodegrad/internal/train"
)

// task is a built-in training scenario.
type task struct {
	Name       string
	Short      string
	Iterations int     // Default update steps
	LR         float64 // Default learning rate

	// Network builds the task topology. Initial values are drawn from src.
	Network func(src rand.Source) (*nn.Network, error)

	// Train trains net and reports progress to w.
	Train func(ctx context.Context, w io.Writer, net *nn.Network, cfg runConfig) error

	// PredictUse and PredictArgs describe the positional arguments of
	// "predict <task>".
	PredictUse  string
	PredictArgs int

	// PredictFlags registers extra "predict <task>" flags. Optional.
	PredictFlags func(cmd *cobra.Command)

	// Predict parses args, runs net and prints the answer.
	Predict func(cmd *cobra.Command, net *nn.Network, args []string) error
}

var tasks = []task{linearTask(), parityTask(), reverseTask()}

func lookupTask(name string) (task, error) {
	for _, t := range tasks {
		if t.Name == name {
			return t, nil
		}
	}
	return task{}, fmt.Errorf("unknown task %q", name)
}

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = v
	}
	return out, nil
}

// point is one linear regression instance.
type point struct {
	X [2]float64
	Y float64
}

var pointEncoding = train.Encoding[point]{
	Predictors: func(p point) mat.Matrix { return mat.NewDense(1, 2, p.X[:]) },
	Responses:  func(p point) mat.Matrix { return mat.NewDense(1, 1, []float64{p.Y}) },
}

// linearTask fits a 2-1-1 identity network to {(2,6)→8, (8,2)→10} with
// full-batch plain gradient descent.
func linearTask() task {
	newNetwork := func(rand.Source) (*nn.Network, error) {
		return nn.NewMultilayerPerceptron(nn.MLPConfig{
			InputWidth:        2,
			HiddenWidths:      []int{1},
			OutputWidth:       1,
			HiddenActivations: []ops.Activation{ops.Identity{}},
			Init:              nn.Fill(0.5),
		})
	}

	return task{
		Name:       "linear",
		Short:      "Fit a two-input linear model to two points",
		Iterations: 1000,
		LR:         0.001,
		Network:    newNetwork,
		Train: func(ctx context.Context, w io.Writer, net *nn.Network, cfg runConfig) error {
			opts := train.DefaultOptions[point]()
			opts.Stochastic = false
			return runTraining(ctx, w, net, cfg, scenario[point]{
				Factory:  func() (*nn.Network, error) { return newNetwork(nil) },
				Data:     train.NewDataSet(point{[2]float64{2, 6}, 8}, point{[2]float64{8, 2}, 10}),
				Encoding: pointEncoding,
				Options:  opts,
			})
		},
		PredictUse:  "linear X1 X2",
		PredictArgs: 2,
		Predict: func(cmd *cobra.Command, net *nn.Network, args []string) error {
			x, err := parseFloats(args)
			if err != nil {
				return err
			}
			y, err := net.Predict(mat.NewDense(1, 2, x))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%g\n", y.At(0, 0))
			return nil
		},
	}
}

const parityBits = 4

// parity is one odd/even classification instance.
type parity int

func (p parity) bits() mat.Matrix {
	return mat.NewDense(1, parityBits, tokenizer.BinaryDigits(int(p), parityBits))
}

func (p parity) class() mat.Matrix {
	y := mat.NewDense(1, 2, nil)
	y.Set(0, int(p)%2, 1)
	return y
}

var parityEncoding = train.Encoding[parity]{
	Predictors: parity.bits,
	Responses:  parity.class,
}

// parityTask trains a single-layer softmax classifier with Adam to tell odd
// numbers below 16 from even ones.
func parityTask() task {
	newNetwork := func(src rand.Source) (*nn.Network, error) {
		return nn.NewMultilayerPerceptron(nn.MLPConfig{
			InputWidth:    parityBits,
			OutputWidth:   2,
			OutputSoftmax: true,
			Source:        src,
		})
	}

	return task{
		Name:       "parity",
		Short:      "Classify 4-bit numbers as odd or even",
		Iterations: 200,
		LR:         0.05,
		Network:    newNetwork,
		Train: func(ctx context.Context, w io.Writer, net *nn.Network, cfg runConfig) error {
			entries := make([]parity, 1<<parityBits)
			for n := range entries {
				entries[n] = parity(n)
			}
			opts := train.DefaultOptions[parity]()
			opts.Stochastic = false
			opts.Loss = nn.CategoricalCrossEntropy{}
			opts.Adam = &train.AdamOptions{MomentumRatio: 0.999, MomentumRatio2: 0.9}
			return runTraining(ctx, w, net, cfg, scenario[parity]{
				Factory:  func() (*nn.Network, error) { return newNetwork(nil) },
				Data:     train.NewDataSet(entries...),
				Encoding: parityEncoding,
				Options:  opts,
				Accuracy: train.ArgmaxAccuracy,
			})
		},
		PredictUse:  "parity N",
		PredictArgs: 1,
		Predict: func(cmd *cobra.Command, net *nn.Network, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}
			if n < 0 || n >= 1<<parityBits {
				return fmt.Errorf("N must be in [0, %d), got %d", 1<<parityBits, n)
			}
			y, err := net.Predict(parity(n).bits())
			if err != nil {
				return err
			}
			label := "even"
			if y.At(0, 1) > y.At(0, 0) {
				label = "odd"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (even %.4f, odd %.4f)\n", label, y.At(0, 0), y.At(0, 1))
			return nil
		},
	}
}

const (
	reverseLength = 3
	reverseVocab  = 3
)

// reverseSymbols names the reverse task tokens on the command line.
var reverseSymbols = func() *tokenizer.CharTokenizer {
	tok, err := tokenizer.NewCharTokenizer(tokenizer.CharConfig{Alphabet: "012"})
	if err != nil {
		panic(err)
	}
	return tok
}()

// sequence is one sequence-reversal instance over reverseVocab symbols.
type sequence [reverseLength]int

func (s sequence) reversed() sequence {
	var out sequence
	for i, v := range s {
		out[reverseLength-1-i] = v
	}
	return out
}

// reverseInput stacks the one-hot encoder rows of s on top of the decoder
// rows: a zero start row followed by the known prefix of the answer.
func reverseInput(s sequence, prefix []int) mat.Matrix {
	x := mat.NewDense(2*reverseLength, reverseVocab, nil)
	for i, v := range s {
		x.SetRow(i, tokenizer.OneHot(v, reverseVocab))
	}
	for k, v := range prefix {
		if k+1 < reverseLength {
			x.SetRow(reverseLength+k+1, tokenizer.OneHot(v, reverseVocab))
		}
	}
	return x
}

func oneHotRows(s sequence) mat.Matrix {
	y := mat.NewDense(reverseLength, reverseVocab, nil)
	for i, v := range s {
		y.SetRow(i, tokenizer.OneHot(v, reverseVocab))
	}
	return y
}

// Training feeds the expected answer shifted by one row to the decoder.
var reverseEncoding = train.Encoding[sequence]{
	Predictors: func(s sequence) mat.Matrix {
		r := s.reversed()
		return reverseInput(s, r[:reverseLength-1])
	},
	Responses: func(s sequence) mat.Matrix { return oneHotRows(s.reversed()) },
}

// decodeReverse predicts the reversal of s one symbol at a time, feeding
// every generated symbol back into the decoder.
func decodeReverse(ctx context.Context, net *nn.Network, s sequence, sampling generate.SamplingConfig) (sequence, error) {
	var out sequence
	gen, err := generate.NewGenerator(net, generate.Config{
		EncoderLength: reverseLength,
		Sampling:      sampling,
	}, nil)
	if err != nil {
		return out, err
	}
	tokens, err := gen.Generate(ctx, oneHotRows(s))
	if err != nil {
		return out, err
	}
	copy(out[:], tokens)
	return out, nil
}

func reverseConfig(src rand.Source) nn.TransformerConfig {
	block := nn.BlockConfig{
		Heads:                 1,
		ProjectedKeyQuerySize: 3,
		ProjectedValueSize:    3,
		FeedForwardSize:       10,
		Activation:            ops.ReLU{},
		DropoutRate:           0.2,
		Temperature:           0.2,
	}
	return nn.TransformerConfig{
		Width:         reverseVocab,
		EncoderLength: reverseLength,
		DecoderLength: reverseLength,
		EncoderCount:  1,
		DecoderCount:  1,
		Encoder:       block,
		Decoder:       block,
		Unembedder:    nn.DenseUnembedder(reverseVocab, src),
		Source:        src,
	}
}

// reverseTask trains an encoder-decoder transformer to reverse sequences
// of three symbols.
func reverseTask() task {
	newNetwork := func(src rand.Source) (*nn.Network, error) {
		return nn.NewTransformer(reverseConfig(src))
	}

	return task{
		Name:       "reverse",
		Short:      "Train a transformer to reverse three-symbol sequences",
		Iterations: 500,
		LR:         0.01,
		Network:    newNetwork,
		Train: func(ctx context.Context, w io.Writer, net *nn.Network, cfg runConfig) error {
			var entries []sequence
			for n := range reverseVocab * reverseVocab * reverseVocab {
				entries = append(entries, sequence{n % reverseVocab, n / reverseVocab % reverseVocab, n / (reverseVocab * reverseVocab)})
			}
			opts := train.DefaultOptions[sequence]()
			opts.Loss = nn.CategoricalCrossEntropy{}
			opts.Adam = &train.AdamOptions{MomentumRatio: 0.999, MomentumRatio2: 0.9}
			data := train.NewDataSet(entries...)
			opts.Validation = data
			return runTraining(ctx, w, net, cfg, scenario[sequence]{
				Factory:  func() (*nn.Network, error) { return newNetwork(nil) },
				Data:     data,
				Encoding: reverseEncoding,
				Options:  opts,
				Accuracy: train.ArgmaxAccuracy,
			})
		},
		PredictUse:  "reverse S1 S2 S3",
		PredictArgs: reverseLength,
		PredictFlags: func(cmd *cobra.Command) {
			cmd.Flags().Float64("temperature", 0, "Sampling temperature (0 = greedy)")
			cmd.Flags().Int("top-k", 0, "Sample among the K most likely symbols (0 = all)")
		},
		Predict: func(cmd *cobra.Command, net *nn.Network, args []string) error {
			tokens, err := reverseSymbols.Encode(strings.Join(args, ""))
			if err != nil {
				return err
			}
			if len(tokens) != reverseLength {
				return fmt.Errorf("expected %d single-symbol arguments, got %q", reverseLength, args)
			}
			var s sequence
			copy(s[:], tokens)
			var sampling generate.SamplingConfig
			sampling.Temperature, _ = cmd.Flags().GetFloat64("temperature")
			sampling.TopK, _ = cmd.Flags().GetInt("top-k")
			out, err := decodeReverse(cmd.Context(), net, s, sampling)
			if err != nil {
				return err
			}
			text, err := reverseSymbols.Decode(out[:])
			if err != nil {
				return err
			}
			symbols := strings.Split(text, "")
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(symbols, " "))
			return nil
		},
	}
}
