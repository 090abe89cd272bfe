package gd

import (
	"context"
	"fmt"
	"log/slog"
)

// Outcome names the terminal state of a training run.
type Outcome string

const (
	OutcomeConverged    Outcome = "converged"
	OutcomeStoppedEarly Outcome = "stopped_early"
	OutcomeExhausted    Outcome = "exhausted"
)

// TrainStats summarizes a training run.
// At most one of Converged and StoppedEarly is true.
type TrainStats struct {
	Iterations    int     `json:"iterations"`
	FinalValue    float64 `json:"finalValue"`
	FinalGradNorm float64 `json:"finalGradNorm"`
	Converged     bool    `json:"converged"`
	StoppedEarly  bool    `json:"stoppedEarly"`
}

// Outcome reports how the run terminated.
func (s TrainStats) Outcome() Outcome {
	switch {
	case s.StoppedEarly:
		return OutcomeStoppedEarly
	case s.Converged:
		return OutcomeConverged
	default:
		return OutcomeExhausted
	}
}

// Trainer drives the gradient-descent loop.
type Trainer struct {
	// Optimizer applies the parameter update; nil means GradientDescent
	Optimizer Optimizer
}

// NewTrainer creates a trainer using vanilla gradient descent.
func NewTrainer() *Trainer {
	return &Trainer{Optimizer: GradientDescent{}}
}

// Minimize runs gradient descent on obj starting from x, which is updated in place.
//
// cfg is normalized with ApplyDefaults before the first iteration and stays
// shared with the callbacks, which run in registration order every iteration.
// Training ends when a callback calls Stop, when the gradient inf-norm falls
// below cfg.Tolerance (no step is taken on that iteration in either case), or
// after cfg.MaxIterations evaluations.
//
// A dimension mismatch, an objective error or a callback error aborts the run
// and is returned together with the stats recorded so far. ctx is checked
// once per iteration.
func (t *Trainer) Minimize(ctx context.Context, obj Objective, x []float64, cfg *OptimConfig, callbacks ...Callback) (TrainStats, error) {
	var stats TrainStats

	if cfg == nil {
		def := DefaultOptimConfig()
		cfg = &def
	}
	if err := checkDim(obj.Dim(), x); err != nil {
		return stats, fmt.Errorf("failed to start training: %w", err)
	}

	cfg.ApplyDefaults()
	if s, ok := obj.(StepSetter); ok {
		s.SetStep(cfg.NumericGradientStep)
	}

	opt := t.Optimizer
	if opt == nil {
		opt = GradientDescent{}
	}

	slog.Debug("Starting gradient descent",
		"dim", obj.Dim(),
		"lr", cfg.LearningRate,
		"eps", cfg.Tolerance,
		"max_iters", cfg.MaxIterations,
		"callbacks", len(callbacks),
	)

	for iter := 0; iter < cfg.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		value, err := obj.Value(x)
		if err != nil {
			return stats, fmt.Errorf("failed to evaluate objective at iteration %d: %w", iter, err)
		}
		grad, err := obj.Gradient(x)
		if err != nil {
			return stats, fmt.Errorf("failed to compute gradient at iteration %d: %w", iter, err)
		}
		gradNorm := InfNorm(grad)

		stats.Iterations = iter + 1
		stats.FinalValue = value
		stats.FinalGradNorm = gradNorm

		state := &TrainerState{
			Iteration:   iter,
			Value:       value,
			GradNormInf: gradNorm,
			X:           x,
			Grad:        grad,
			Objective:   obj,
			Config:      cfg,
		}
		for _, cb := range callbacks {
			if cb == nil {
				continue
			}
			if err := cb.OnIteration(state); err != nil {
				return stats, fmt.Errorf("callback failed at iteration %d: %w", iter, err)
			}
		}

		if state.Stopped() {
			stats.StoppedEarly = true
			break
		}
		if gradNorm < cfg.Tolerance {
			stats.Converged = true
			break
		}

		opt.Step(cfg, x, grad)
	}

	slog.Info("Gradient descent finished",
		"outcome", stats.Outcome(),
		"iterations", stats.Iterations,
		"final_value", stats.FinalValue,
		"final_grad_norm", stats.FinalGradNorm,
	)
	return stats, nil
}
