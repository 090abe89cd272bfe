package opt

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/cwbudde/numopt/internal/gd"
)

// ErrInvalidBounds is returned when the search box is malformed.
var ErrInvalidBounds = errors.New("invalid warm-start bounds")

// WarmStart searches [lower, upper] with optimizer and returns a starting
// point for gradient descent along with its objective value. Evaluation
// errors and NaN values count as +Inf cost.
func WarmStart(optimizer Optimizer, obj gd.Objective, lower, upper []float64) ([]float64, float64, error) {
	dim := obj.Dim()
	if len(lower) != dim || len(upper) != dim {
		return nil, 0, fmt.Errorf("%w: need %d lower and upper values, got %d and %d",
			ErrInvalidBounds, dim, len(lower), len(upper))
	}
	for i := range lower {
		if !(lower[i] < upper[i]) {
			return nil, 0, fmt.Errorf("%w: lower[%d]=%g is not below upper[%d]=%g",
				ErrInvalidBounds, i, lower[i], i, upper[i])
		}
	}

	evals := 0
	eval := func(x []float64) float64 {
		evals++
		v, err := obj.Value(x)
		if err != nil || math.IsNaN(v) {
			return math.Inf(1)
		}
		return v
	}

	best, cost := optimizer.Run(eval, lower, upper, dim)
	slog.Info("Warm start finished", "cost", cost, "evaluations", evals)

	if len(best) != dim {
		return nil, 0, fmt.Errorf("failed to warm start: optimizer returned %d values, want %d", len(best), dim)
	}
	return best, cost, nil
}
