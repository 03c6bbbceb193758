package train

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/born-ml/nodegrad/internal/nn"
)

// Notification describes one completed training step.
type Notification[T any] struct {
	Network     *nn.Network // Network after the update
	Iteration   int         // 1-based step number
	Loss        nn.LossFunc // Loss function used for training
	TrainingSet []T         // Instances of the step's batch
	Validation  *DataSet[T] // Options.Validation, possibly nil
	Encoding    Encoding[T] // Instance encoding used for training
}

// Decision is a monitor's answer to a notification.
type Decision struct {
	StopTraining bool
}

// Monitor observes training after every step.
type Monitor[T any] interface {
	Notify(ctx context.Context, n Notification[T]) (Decision, error)
}

// MonitorFunc adapts a function to the Monitor interface.
type MonitorFunc[T any] func(ctx context.Context, n Notification[T]) (Decision, error)

// Notify calls f.
func (f MonitorFunc[T]) Notify(ctx context.Context, n Notification[T]) (Decision, error) {
	return f(ctx, n)
}

// Snapshot records the monitor averages after one step.
type Snapshot struct {
	Iteration          int
	TrainingLoss       float64
	TrainingAccuracy   float64
	ValidationLoss     float64
	ValidationAccuracy float64
}

// LossMonitor tracks moving averages of loss and accuracy over training.
//
// After every step it evaluates the network in inference mode on the whole
// training batch and, when a validation set is available, on
// ValidationSamples instances drawn from it. Averages cover the last
// DefaultWindow steps.
type LossMonitor[T any] struct {
	// Accuracy scores a prediction. Accuracy averages stay empty without it.
	Accuracy AccuracyFunc

	// ValidationSamples is the number of validation instances evaluated
	// per step (default: 1).
	ValidationSamples int

	// LogEvery logs a summary every LogEvery steps (0 = never).
	LogEvery int

	// StopWhen, when set, ends training as soon as it returns true.
	StopWhen func(m *LossMonitor[T], iteration int) bool

	// Logger receives summaries (nil = slog.Default()).
	Logger *slog.Logger

	// Rand draws validation samples (nil = global generator).
	Rand *rand.Rand

	TrainingLoss       *MovingAverage
	TrainingAccuracy   *MovingAverage
	ValidationLoss     *MovingAverage
	ValidationAccuracy *MovingAverage

	history []Snapshot
}

// NewLossMonitor creates a monitor with empty averages.
func NewLossMonitor[T any]() *LossMonitor[T] {
	return &LossMonitor[T]{
		TrainingLoss:       NewMovingAverage(DefaultWindow),
		TrainingAccuracy:   NewMovingAverage(DefaultWindow),
		ValidationLoss:     NewMovingAverage(DefaultWindow),
		ValidationAccuracy: NewMovingAverage(DefaultWindow),
	}
}

// Notify updates the averages, records a snapshot and applies StopWhen.
func (m *LossMonitor[T]) Notify(ctx context.Context, n Notification[T]) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return Decision{}, err
	}

	training, err := evaluate(n.Network, n.TrainingSet, n.Encoding, n.Loss, m.Accuracy)
	if err != nil {
		return Decision{}, fmt.Errorf("training set: %w", err)
	}
	m.TrainingLoss.Push(training.Loss)
	if m.Accuracy != nil {
		m.TrainingAccuracy.Push(training.Accuracy)
	}

	if n.Validation != nil && n.Validation.Len() > 0 {
		sample := n.Validation.Sample(max(m.ValidationSamples, 1), m.Rand)
		validation, err := evaluate(n.Network, sample.entries, n.Encoding, n.Loss, m.Accuracy)
		if err != nil {
			return Decision{}, fmt.Errorf("validation set: %w", err)
		}
		m.ValidationLoss.Push(validation.Loss)
		if m.Accuracy != nil {
			m.ValidationAccuracy.Push(validation.Accuracy)
		}
	}

	snap := m.snapshot(n.Iteration)
	m.history = append(m.history, snap)

	if m.LogEvery > 0 && n.Iteration%m.LogEvery == 0 {
		logger := m.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Info("training progress",
			"iteration", snap.Iteration,
			"training_loss", snap.TrainingLoss,
			"training_accuracy", snap.TrainingAccuracy,
			"validation_loss", snap.ValidationLoss,
			"validation_accuracy", snap.ValidationAccuracy)
	}

	if m.StopWhen != nil && m.StopWhen(m, n.Iteration) {
		return Decision{StopTraining: true}, nil
	}
	return Decision{}, nil
}

func (m *LossMonitor[T]) snapshot(iteration int) Snapshot {
	return Snapshot{
		Iteration:          iteration,
		TrainingLoss:       m.TrainingLoss.Average(),
		TrainingAccuracy:   m.TrainingAccuracy.Average(),
		ValidationLoss:     m.ValidationLoss.Average(),
		ValidationAccuracy: m.ValidationAccuracy.Average(),
	}
}

// History returns one snapshot per notified step.
func (m *LossMonitor[T]) History() []Snapshot {
	out := make([]Snapshot, len(m.history))
	copy(out, m.history)
	return out
}

// WriteTable renders every every-th snapshot, plus the last one, as a
// table. A non-positive every renders all snapshots.
func (m *LossMonitor[T]) WriteTable(w io.Writer, every int) {
	if every <= 0 {
		every = 1
	}

	var data [][]string
	for i, s := range m.history {
		if (i+1)%every != 0 && i != len(m.history)-1 {
			continue
		}
		data = append(data, []string{
			strconv.Itoa(s.Iteration),
			formatMetric(s.TrainingLoss),
			formatMetric(s.TrainingAccuracy),
			formatMetric(s.ValidationLoss),
			formatMetric(s.ValidationAccuracy),
		})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ITERATION", "TRAIN LOSS", "TRAIN ACC", "VALID LOSS", "VALID ACC"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()
}

func formatMetric(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
