package opt

import (
	"log/slog"
	"math/rand"

	"github.com/cwbudde/mayfly"
)

// MinPopulation is the smallest population mayfly accepts.
const MinPopulation = 20

// MayflyAdapter runs the mayfly algorithm behind the Optimizer interface.
type MayflyAdapter struct {
	maxIters int
	popSize  int
	seed     int64
}

// NewMayfly creates a mayfly optimizer. popSize is raised to MinPopulation
// when smaller.
func NewMayfly(maxIters, popSize int, seed int64) Optimizer {
	if popSize < MinPopulation {
		popSize = MinPopulation
	}
	return &MayflyAdapter{
		maxIters: maxIters,
		popSize:  popSize,
		seed:     seed,
	}
}

// Run executes mayfly. The library only takes scalar bounds, so the search
// runs over the bounding cube of [lower, upper] and the result is clamped
// back into the box.
func (m *MayflyAdapter) Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64) {
	lo, hi := lower[0], upper[0]
	for i := 1; i < dim; i++ {
		lo = min(lo, lower[i])
		hi = max(hi, upper[i])
	}

	config := mayfly.NewDefaultConfig()
	config.ObjectiveFunc = func(x []float64) float64 {
		return eval(clampToBox(x, lower, upper))
	}
	config.ProblemSize = dim
	config.MaxIterations = m.maxIters
	config.NPop = m.popSize
	config.LowerBound = lo
	config.UpperBound = hi
	config.Rand = rand.New(rand.NewSource(m.seed))

	result, err := mayfly.Optimize(config)
	if err != nil {
		slog.Warn("Mayfly failed, falling back to box center", "error", err)
		center := make([]float64, dim)
		for i := range center {
			center[i] = 0.5 * (lower[i] + upper[i])
		}
		return center, eval(center)
	}

	best := clampToBox(result.GlobalBest.Position, lower, upper)
	return best, result.GlobalBest.Cost
}

func clampToBox(x, lower, upper []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = min(max(v, lower[i]), upper[i])
	}
	return out
}
