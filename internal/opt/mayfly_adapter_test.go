package opt

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/numopt/internal/gd"
)

// Sphere function: f(x) = sum(x_i^2), minimum at origin
func sphere(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return sum
}

func TestMayflyAdapterOnSphere(t *testing.T) {
	optimizer := NewMayfly(100, 20, 42) // maxIters, popSize, seed

	dim := 3
	lower := make([]float64, dim)
	upper := make([]float64, dim)
	for i := 0; i < dim; i++ {
		lower[i] = -10
		upper[i] = 10
	}

	best, cost := optimizer.Run(sphere, lower, upper, dim)

	if len(best) != dim {
		t.Fatalf("Expected %d parameters, got %d", dim, len(best))
	}
	if cost > 0.1 {
		t.Errorf("Expected cost near 0, got %f", cost)
	}
	for i, v := range best {
		if math.Abs(v) > 1.0 {
			t.Errorf("Parameter %d = %f, expected near 0", i, v)
		}
	}
}

func TestMayflyAdapterDeterministic(t *testing.T) {
	lower := []float64{-5, -5}
	upper := []float64{5, 5}

	_, cost1 := NewMayfly(50, 20, 123).Run(sphere, lower, upper, 2)
	_, cost2 := NewMayfly(50, 20, 123).Run(sphere, lower, upper, 2)

	if cost1 != cost2 {
		t.Errorf("Non-deterministic: cost1=%f, cost2=%f", cost1, cost2)
	}
}

func TestMayflyAdapterRespectsPerDimensionBounds(t *testing.T) {
	// the unconstrained minimum at the origin lies outside the box in x2
	lower := []float64{-5, 1}
	upper := []float64{5, 2}

	best, cost := NewMayfly(60, 5, 7).Run(sphere, lower, upper, 2)

	for i, v := range best {
		if v < lower[i] || v > upper[i] {
			t.Errorf("Parameter %d = %f outside [%f, %f]", i, v, lower[i], upper[i])
		}
	}
	if cost < 1 {
		t.Errorf("Expected cost >= 1 inside the box, got %f", cost)
	}
}

func TestWarmStart(t *testing.T) {
	center := []float64{1.5, -0.5}
	obj, err := gd.NewObjective(2, func(x []float64) float64 {
		dx, dy := x[0]-center[0], x[1]-center[1]
		return dx*dx + dy*dy
	}, nil)
	if err != nil {
		t.Fatalf("NewObjective: %v", err)
	}

	x0, cost, err := WarmStart(NewMayfly(80, 20, 1), obj, []float64{-4, -4}, []float64{4, 4})
	if err != nil {
		t.Fatalf("WarmStart: %v", err)
	}
	if cost > 0.1 {
		t.Errorf("Expected warm start cost below 0.1, got %f", cost)
	}
	for i := range x0 {
		if math.Abs(x0[i]-center[i]) > 0.5 {
			t.Errorf("x0[%d] = %f, expected near %f", i, x0[i], center[i])
		}
	}
}

func TestWarmStartInvalidBounds(t *testing.T) {
	obj, err := gd.NewObjective(2, sphere, nil)
	if err != nil {
		t.Fatalf("NewObjective: %v", err)
	}

	tests := []struct {
		name         string
		lower, upper []float64
	}{
		{"short lower", []float64{0}, []float64{1, 1}},
		{"short upper", []float64{0, 0}, []float64{1}},
		{"inverted", []float64{0, 2}, []float64{1, 1}},
		{"empty box", []float64{0, 1}, []float64{1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := WarmStart(NewMayfly(10, 20, 1), obj, tt.lower, tt.upper)
			if !errors.Is(err, ErrInvalidBounds) {
				t.Errorf("Expected ErrInvalidBounds, got %v", err)
			}
		})
	}
}

type fixedOptimizer struct {
	costs []float64
	point []float64
}

func (f *fixedOptimizer) Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64) {
	f.costs = append(f.costs, eval(f.point))
	return f.point, f.costs[len(f.costs)-1]
}

func TestWarmStartMapsBadValuesToInf(t *testing.T) {
	obj, err := gd.NewObjective(1, func(x []float64) float64 { return math.NaN() }, nil)
	if err != nil {
		t.Fatalf("NewObjective: %v", err)
	}

	fixed := &fixedOptimizer{point: []float64{0.5}}
	_, cost, err := WarmStart(fixed, obj, []float64{0}, []float64{1})
	if err != nil {
		t.Fatalf("WarmStart: %v", err)
	}
	if !math.IsInf(cost, 1) {
		t.Errorf("Expected +Inf cost for NaN objective, got %f", cost)
	}
}

func TestWarmStartRejectsWrongLength(t *testing.T) {
	obj, err := gd.NewObjective(2, sphere, nil)
	if err != nil {
		t.Fatalf("NewObjective: %v", err)
	}

	// the objective rejects the 1-element point, so the cost is +Inf
	fixed := &fixedOptimizer{point: []float64{0.5}}
	_, _, err = WarmStart(fixed, obj, []float64{0, 0}, []float64{1, 1})
	if err == nil {
		t.Fatal("Expected error for wrong-length result")
	}
	if !math.IsInf(fixed.costs[0], 1) {
		t.Errorf("Expected +Inf cost for evaluation error, got %f", fixed.costs[0])
	}
}
