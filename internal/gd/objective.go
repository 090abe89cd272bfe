package gd

import "math"

// DefaultStep is the default central finite-difference step.
const DefaultStep = 1e-6

// Objective is a scalar function of a fixed-length real vector to be minimized.
type Objective interface {
	// Dim returns the length every input vector must have.
	Dim() int
	// Value evaluates the objective at x.
	Value(x []float64) (float64, error)
	// Gradient returns the gradient at x in a newly allocated slice.
	Gradient(x []float64) ([]float64, error)
}

// StepSetter is implemented by objectives whose numeric gradient step can be tuned.
// The trainer syncs the configured step into any objective implementing it.
type StepSetter interface {
	SetStep(h float64)
}

// ValueFunc evaluates an objective. Implementations may assume len(x) is correct.
type ValueFunc func(x []float64) float64

// GradientFunc writes the analytic gradient of an objective at x into grad.
type GradientFunc func(x, grad []float64)

// FuncObjective adapts plain functions to the Objective interface.
// Without an analytic gradient it falls back to central finite differences.
type FuncObjective struct {
	dim   int
	value ValueFunc
	grad  GradientFunc
	step  float64
}

// NewObjective creates an objective of the given dimension. grad may be nil.
func NewObjective(dim int, value ValueFunc, grad GradientFunc) (*FuncObjective, error) {
	if dim <= 0 {
		return nil, ErrInvalidDimension
	}
	if value == nil {
		return nil, ErrNilValueFunc
	}
	return &FuncObjective{
		dim:   dim,
		value: value,
		grad:  grad,
		step:  DefaultStep,
	}, nil
}

// Dim returns the objective dimension.
func (o *FuncObjective) Dim() int {
	return o.dim
}

// HasAnalyticGradient reports whether a gradient function was supplied.
func (o *FuncObjective) HasAnalyticGradient() bool {
	return o.grad != nil
}

// Step returns the current finite-difference step.
func (o *FuncObjective) Step() float64 {
	return o.step
}

// SetStep sets the finite-difference step. Non-positive and NaN values are ignored.
func (o *FuncObjective) SetStep(h float64) {
	if h > 0 && !math.IsInf(h, 1) {
		o.step = h
	}
}

// Value evaluates the objective at x.
func (o *FuncObjective) Value(x []float64) (float64, error) {
	if err := checkDim(o.dim, x); err != nil {
		return math.NaN(), err
	}
	return o.value(x), nil
}

// Gradient returns the gradient at x. x is never modified.
//
// Without an analytic gradient every call costs 2*Dim() evaluations of the
// value function, which dominates runtime for high-dimensional objectives.
func (o *FuncObjective) Gradient(x []float64) ([]float64, error) {
	if err := checkDim(o.dim, x); err != nil {
		return nil, err
	}

	grad := make([]float64, o.dim)
	if o.grad != nil {
		o.grad(x, grad)
		return grad, nil
	}

	probe := make([]float64, o.dim)
	copy(probe, x)
	h := o.step
	for i := range probe {
		orig := probe[i]
		probe[i] = orig + h
		forward := o.value(probe)
		probe[i] = orig - h
		backward := o.value(probe)
		grad[i] = (forward - backward) / (2 * h)
		probe[i] = orig
	}
	return grad, nil
}
