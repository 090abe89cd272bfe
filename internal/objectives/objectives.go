// Package objectives holds the built-in test functions the CLI can train on.
package objectives

import (
	"math"

	"github.com/cwbudde/numopt/internal/gd"
)

// Cubic1D is f(x) = a3·x³ + a2·x² + a1·x + a0.
type Cubic1D struct {
	A3, A2, A1, A0 float64
}

// Value evaluates the polynomial with Horner's scheme.
func (c Cubic1D) Value(x []float64) float64 {
	v := x[0]
	return ((c.A3*v+c.A2)*v+c.A1)*v + c.A0
}

// Gradient writes 3a3·x² + 2a2·x + a1.
func (c Cubic1D) Gradient(x, grad []float64) {
	v := x[0]
	grad[0] = 3*c.A3*v*v + 2*c.A2*v + c.A1
}

// Objective wraps c with its analytic gradient.
func (c Cubic1D) Objective() (*gd.FuncObjective, error) {
	return gd.NewObjective(1, c.Value, c.Gradient)
}

// Quadratic2D is f(x) = a11·x1² + a22·x2² + a12·x1·x2 + b1·x1 + b2·x2 + c0.
type Quadratic2D struct {
	A11, A22, A12 float64
	B1, B2        float64
	C0            float64
}

func (q Quadratic2D) Value(x []float64) float64 {
	x1, x2 := x[0], x[1]
	return q.A11*x1*x1 + q.A22*x2*x2 + q.A12*x1*x2 + q.B1*x1 + q.B2*x2 + q.C0
}

func (q Quadratic2D) Gradient(x, grad []float64) {
	x1, x2 := x[0], x[1]
	grad[0] = 2*q.A11*x1 + q.A12*x2 + q.B1
	grad[1] = 2*q.A22*x2 + q.A12*x1 + q.B2
}

// Objective wraps q with its analytic gradient.
func (q Quadratic2D) Objective() (*gd.FuncObjective, error) {
	return gd.NewObjective(2, q.Value, q.Gradient)
}

// ShiftedQuadratic is f(x) = 0.5·‖x − center‖², minimized at center.
type ShiftedQuadratic struct {
	Center []float64
}

func (s ShiftedQuadratic) Value(x []float64) float64 {
	var sum float64
	for i, c := range s.Center {
		d := x[i] - c
		sum += d * d
	}
	return 0.5 * sum
}

func (s ShiftedQuadratic) Gradient(x, grad []float64) {
	for i, c := range s.Center {
		grad[i] = x[i] - c
	}
}

// Objective wraps s with its analytic gradient. The dimension is len(Center).
func (s ShiftedQuadratic) Objective() (*gd.FuncObjective, error) {
	q := ShiftedQuadratic{Center: append([]float64(nil), s.Center...)}
	return gd.NewObjective(len(q.Center), q.Value, q.Gradient)
}

// SinCos is f(x) = sin(x1) + cos(x2). It has no analytic gradient so
// training on it exercises the finite-difference path.
type SinCos struct{}

func (SinCos) Value(x []float64) float64 {
	return math.Sin(x[0]) + math.Cos(x[1])
}

// Objective wraps the function without a gradient.
func (s SinCos) Objective() (*gd.FuncObjective, error) {
	return gd.NewObjective(2, s.Value, nil)
}
