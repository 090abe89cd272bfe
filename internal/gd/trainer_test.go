package gd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quadraticAround3(t *testing.T) *FuncObjective {
	t.Helper()
	obj, err := NewObjective(1,
		func(x []float64) float64 { return 0.5 * (x[0] - 3) * (x[0] - 3) },
		func(x, grad []float64) { grad[0] = x[0] - 3 },
	)
	require.NoError(t, err)
	return obj
}

// linear has a constant unit gradient and therefore never converges.
func linear(t *testing.T) *FuncObjective {
	t.Helper()
	obj, err := NewObjective(1,
		func(x []float64) float64 { return x[0] },
		func(x, grad []float64) { grad[0] = 1 },
	)
	require.NoError(t, err)
	return obj
}

func TestApplyDefaults(t *testing.T) {
	cfg := OptimConfig{LearningRate: -1, Tolerance: 0, MaxIterations: -5, NumericGradientStep: 0}
	cfg.ApplyDefaults()
	assert.Equal(t, DefaultOptimConfig(), cfg)

	custom := OptimConfig{LearningRate: 0.4, Tolerance: 1e-5, MaxIterations: 7, NumericGradientStep: 1e-3}
	want := custom
	custom.ApplyDefaults()
	assert.Equal(t, want, custom)
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := OptimConfig{LearningRate: 0.3, MaxIterations: 0}
	cfg.ApplyDefaults()
	once := cfg
	cfg.ApplyDefaults()
	assert.Equal(t, once, cfg)
}

func TestGradientDescentStep(t *testing.T) {
	x := []float64{1, 2}
	GradientDescent{}.Step(&OptimConfig{LearningRate: 0.5}, x, []float64{2, -4})
	assert.Equal(t, []float64{0, 4}, x)
}

func TestMinimize_ConvergesOnQuadratic(t *testing.T) {
	x := []float64{2}
	cfg := &OptimConfig{LearningRate: 0.4, Tolerance: 1e-5, MaxIterations: 100}

	stats, err := NewTrainer().Minimize(context.Background(), quadraticAround3(t), x, cfg)
	require.NoError(t, err)

	assert.True(t, stats.Converged)
	assert.False(t, stats.StoppedEarly)
	assert.Equal(t, OutcomeConverged, stats.Outcome())
	assert.InDelta(t, 3.0, x[0], 1e-3)
	assert.Less(t, stats.FinalGradNorm, 1e-5)
	// error shrinks by 0.6 per step: 0.6^23 < 1e-5 < 0.6^22
	assert.Equal(t, 24, stats.Iterations)
}

func TestMinimize_NumericGradientConverges(t *testing.T) {
	a := []float64{1, -2}
	x := []float64{0, 0}
	cfg := &OptimConfig{LearningRate: 0.5, Tolerance: 1e-6, MaxIterations: 200}

	stats, err := NewTrainer().Minimize(context.Background(), shiftedQuadratic(t, a), x, cfg)
	require.NoError(t, err)
	assert.True(t, stats.Converged)
	assert.InDeltaSlice(t, a, x, 1e-5)
}

func TestMinimize_SyncsStepAndNormalizesConfig(t *testing.T) {
	obj := shiftedQuadratic(t, []float64{0})
	cfg := &OptimConfig{NumericGradientStep: 1e-4}

	_, err := NewTrainer().Minimize(context.Background(), obj, []float64{0}, cfg)
	require.NoError(t, err)

	assert.Equal(t, 1e-4, obj.Step())
	assert.Equal(t, DefaultLearningRate, cfg.LearningRate)
	assert.Equal(t, DefaultMaxIterations, cfg.MaxIterations)
}

func TestMinimize_Exhausted(t *testing.T) {
	cfg := &OptimConfig{LearningRate: 0.1, MaxIterations: 5}

	stats, err := NewTrainer().Minimize(context.Background(), linear(t), []float64{0}, cfg)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Iterations)
	assert.False(t, stats.Converged)
	assert.False(t, stats.StoppedEarly)
	assert.Equal(t, OutcomeExhausted, stats.Outcome())
	// value is recorded before the step of each iteration: x = -0.4 at iteration 4
	assert.InDelta(t, -0.4, stats.FinalValue, 1e-12)
}

func TestMinimize_EarlyStopTakesNoStep(t *testing.T) {
	x := []float64{2}
	cfg := &OptimConfig{LearningRate: 0.4, Tolerance: 1e-5, MaxIterations: 100}

	// f(2) = 0.5 which meets the target on the first iteration
	stats, err := NewTrainer().Minimize(context.Background(), quadraticAround3(t), x, cfg, &EarlyStop{Target: 0.5})
	require.NoError(t, err)

	assert.True(t, stats.StoppedEarly)
	assert.False(t, stats.Converged)
	assert.Equal(t, 1, stats.Iterations)
	assert.Equal(t, 0.5, stats.FinalValue)
	assert.Equal(t, []float64{2}, x)
}

func TestMinimize_EarlyStopLaterIteration(t *testing.T) {
	x := []float64{2}
	cfg := &OptimConfig{LearningRate: 0.4, Tolerance: 1e-9, MaxIterations: 100}

	var seen []float64
	recordX := CallbackFunc(func(s *TrainerState) error {
		seen = append(seen, s.X[0])
		return nil
	})

	stats, err := NewTrainer().Minimize(context.Background(), quadraticAround3(t), x, cfg, recordX, &EarlyStop{Target: 0.01})
	require.NoError(t, err)
	require.True(t, stats.StoppedEarly)
	assert.LessOrEqual(t, stats.FinalValue, 0.01)
	// x reported is the point evaluated on the stopping iteration
	assert.Equal(t, seen[len(seen)-1], x[0])
}

func TestMinimize_CallbacksRunInOrder(t *testing.T) {
	var order []string
	var lrSeenBySecond float64

	first := CallbackFunc(func(s *TrainerState) error {
		order = append(order, "first")
		s.Config.LearningRate = 0.25
		return nil
	})
	second := CallbackFunc(func(s *TrainerState) error {
		order = append(order, "second")
		lrSeenBySecond = s.Config.LearningRate
		return nil
	})

	cfg := &OptimConfig{LearningRate: 0.1, MaxIterations: 1}
	_, err := NewTrainer().Minimize(context.Background(), linear(t), []float64{0}, cfg, first, nil, second)
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, order)
	assert.Equal(t, 0.25, lrSeenBySecond)
	assert.Equal(t, 0.25, cfg.LearningRate)
}

func TestMinimize_CallbackMutationAffectsStep(t *testing.T) {
	x := []float64{0}
	halve := CallbackFunc(func(s *TrainerState) error {
		s.Config.LearningRate = 0.5
		return nil
	})

	cfg := &OptimConfig{LearningRate: 0.1, MaxIterations: 1}
	_, err := NewTrainer().Minimize(context.Background(), linear(t), x, cfg, halve)
	require.NoError(t, err)
	assert.Equal(t, -0.5, x[0])
}

func TestMinimize_DimensionMismatch(t *testing.T) {
	stats, err := NewTrainer().Minimize(context.Background(), quadraticAround3(t), []float64{1, 2}, nil)
	require.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Zero(t, stats.Iterations)
}

func TestMinimize_CallbackError(t *testing.T) {
	boom := errors.New("boom")
	failing := CallbackFunc(func(s *TrainerState) error {
		if s.Iteration == 2 {
			return boom
		}
		return nil
	})

	stats, err := NewTrainer().Minimize(context.Background(), linear(t), []float64{0}, &OptimConfig{MaxIterations: 10}, failing)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 3, stats.Iterations)
}

func TestMinimize_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancelAfterFirst := CallbackFunc(func(s *TrainerState) error {
		cancel()
		return nil
	})

	stats, err := NewTrainer().Minimize(ctx, linear(t), []float64{0}, &OptimConfig{MaxIterations: 10}, cancelAfterFirst)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, stats.Iterations)
}

func TestMinimize_NilOptimizerFallsBack(t *testing.T) {
	x := []float64{2}
	tr := &Trainer{}
	stats, err := tr.Minimize(context.Background(), quadraticAround3(t), x, &OptimConfig{LearningRate: 0.4, Tolerance: 1e-5})
	require.NoError(t, err)
	assert.True(t, stats.Converged)
}
