package gd

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
)

// Callback observes (and may mutate) the trainer state once per iteration.
type Callback interface {
	OnIteration(state *TrainerState) error
}

// CallbackFunc adapts a plain function to the Callback interface.
type CallbackFunc func(state *TrainerState) error

// OnIteration calls f(state).
func (f CallbackFunc) OnIteration(state *TrainerState) error {
	return f(state)
}

// CSVLogger appends one row per iteration:
//
//	iter,value,grad_norm_inf,lr,x1,...,xn
//
// The header is written on the first call. Floats keep 17 significant digits
// and every row is flushed before OnIteration returns.
type CSVLogger struct {
	w           *csv.Writer
	closer      io.Closer
	wroteHeader bool
}

// NewCSVLogger creates (or truncates) the file at path.
func NewCSVLogger(path string) (*CSVLogger, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV log: %w", err)
	}
	return &CSVLogger{w: csv.NewWriter(f), closer: f}, nil
}

// NewCSVLoggerWriter logs to w. The caller keeps ownership of w.
func NewCSVLoggerWriter(w io.Writer) *CSVLogger {
	return &CSVLogger{w: csv.NewWriter(w)}
}

// OnIteration writes the row for state.
func (l *CSVLogger) OnIteration(state *TrainerState) error {
	if !l.wroteHeader {
		header := []string{"iter", "value", "grad_norm_inf", "lr"}
		for i := range state.X {
			header = append(header, "x"+strconv.Itoa(i+1))
		}
		if err := l.w.Write(header); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
		l.wroteHeader = true
	}

	lr := math.NaN()
	if state.Config != nil {
		lr = state.Config.LearningRate
	}
	row := make([]string, 0, 4+len(state.X))
	row = append(row,
		strconv.Itoa(state.Iteration),
		formatPrecise(state.Value),
		formatPrecise(state.GradNormInf),
		formatPrecise(lr),
	)
	for _, xi := range state.X {
		row = append(row, formatPrecise(xi))
	}
	if err := l.w.Write(row); err != nil {
		return fmt.Errorf("failed to write CSV row: %w", err)
	}

	l.w.Flush()
	if err := l.w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV log: %w", err)
	}
	return nil
}

// Close flushes pending output and closes the file if the logger opened it.
func (l *CSVLogger) Close() error {
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		if l.closer != nil {
			l.closer.Close()
		}
		return fmt.Errorf("failed to flush on close: %w", err)
	}
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

func formatPrecise(v float64) string {
	return strconv.FormatFloat(v, 'g', 17, 64)
}

// ConsoleLogger prints a short human-readable line per iteration.
type ConsoleLogger struct {
	out io.Writer
}

// NewConsoleLogger logs to out, or to stdout when out is nil.
func NewConsoleLogger(out io.Writer) *ConsoleLogger {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleLogger{out: out}
}

// OnIteration prints the summary line for state.
func (l *ConsoleLogger) OnIteration(state *TrainerState) error {
	lr := math.NaN()
	if state.Config != nil {
		lr = state.Config.LearningRate
	}
	_, err := fmt.Fprintf(l.out, "iter=%d value=%.6f |grad|_inf=%.6f lr=%.6f\n",
		state.Iteration, state.Value, state.GradNormInf, lr)
	return err
}

// LearningRateDecay multiplies the learning rate by Factor every Period
// iterations (skipping iteration 0) and never lets it fall below MinLR.
type LearningRateDecay struct {
	Factor float64
	Period int
	MinLR  float64
}

// OnIteration applies the decay schedule.
func (d *LearningRateDecay) OnIteration(state *TrainerState) error {
	if d.Period <= 0 || state.Iteration == 0 || state.Config == nil {
		return nil
	}
	if state.Iteration%d.Period == 0 {
		state.Config.LearningRate = math.Max(state.Config.LearningRate*d.Factor, d.MinLR)
	}
	return nil
}

// EarlyStop stops training once the objective value reaches Target.
type EarlyStop struct {
	Target float64
}

// OnIteration requests a stop when state.Value <= Target.
func (e *EarlyStop) OnIteration(state *TrainerState) error {
	if state.Value <= e.Target {
		state.Stop()
	}
	return nil
}
