package gd

// TrainerState is the per-iteration view handed to callbacks.
//
// A fresh state is built after each value/gradient evaluation and shared by
// all callbacks of that iteration, so mutations made by one callback are seen
// by the ones registered after it. Callbacks must not keep the state (or its
// slices) beyond their own invocation.
type TrainerState struct {
	// Iteration is the 0-based iteration index
	Iteration int

	// Value is the objective value at X
	Value float64

	// GradNormInf is the infinity norm of Grad
	GradNormInf float64

	// X is the live parameter vector; writes are visible to the trainer
	X []float64

	// Grad is the gradient at X and must be treated as read-only
	Grad []float64

	// Objective is the function being minimized
	Objective Objective

	// Config is the live optimizer config; LearningRate changes persist
	Config *OptimConfig

	stop bool
}

// Stop asks the trainer to finish after the current iteration without stepping.
func (s *TrainerState) Stop() {
	s.stop = true
}

// Stopped reports whether any callback has requested a stop.
func (s *TrainerState) Stopped() bool {
	return s.stop
}
