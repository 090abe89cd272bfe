package simplex

import (
	"fmt"
	"math"
)

// Status classifies the result of a solve.
type Status int

const (
	// Optimal means an optimal basic solution was found.
	Optimal Status = iota
	// Unbounded means the objective can grow without limit.
	Unbounded
	// Infeasible means some b_i is negative, so the slack basis is not feasible.
	Infeasible
	// InvalidInput covers malformed problems and numerically unusable pivots.
	InvalidInput
)

// String returns the lower-case status name.
func (s Status) String() string {
	switch s {
	case Optimal:
		return "optimal"
	case Unbounded:
		return "unbounded"
	case Infeasible:
		return "infeasible"
	default:
		return "invalid_input"
	}
}

// Problem is a standard-form linear program:
//
//	maximize   cᵀx
//	subject to Ax <= b, x >= 0
//
// with m constraints and n variables. A is stored row-major.
type Problem struct {
	m, n int
	a    []float64
	b    []float64
	c    []float64
}

// NewProblem creates a problem from a row-major m×n matrix a, the right-hand
// side b (length m) and the objective c (length n). Sizes are checked by Solve.
func NewProblem(m, n int, a, b, c []float64) *Problem {
	return &Problem{m: m, n: n, a: a, b: b, c: c}
}

// NewProblemRows creates a problem from one slice per constraint row.
// The number of variables is taken from len(c).
func NewProblemRows(rows [][]float64, b, c []float64) *Problem {
	n := len(c)
	a := make([]float64, 0, len(rows)*n)
	for _, row := range rows {
		if len(row) != n {
			// ragged input never validates
			return &Problem{m: len(rows), n: n, b: b, c: c}
		}
		a = append(a, row...)
	}
	return &Problem{m: len(rows), n: n, a: a, b: b, c: c}
}

// M returns the number of constraints.
func (p *Problem) M() int { return p.m }

// N returns the number of variables.
func (p *Problem) N() int { return p.n }

// At returns A[i][j].
func (p *Problem) At(i, j int) float64 { return p.a[i*p.n+j] }

// RHS returns a copy of b.
func (p *Problem) RHS() []float64 { return append([]float64(nil), p.b...) }

// Objective returns a copy of c.
func (p *Problem) Objective() []float64 { return append([]float64(nil), p.c...) }

// Validate checks sizes and that every coefficient is finite.
func (p *Problem) Validate() error {
	if p == nil {
		return fmt.Errorf("problem is nil")
	}
	if p.m <= 0 || p.n <= 0 {
		return fmt.Errorf("invalid problem size %dx%d", p.m, p.n)
	}
	if len(p.a) != p.m*p.n {
		return fmt.Errorf("constraint matrix has %d entries, want %d", len(p.a), p.m*p.n)
	}
	if len(p.b) != p.m {
		return fmt.Errorf("right-hand side has %d entries, want %d", len(p.b), p.m)
	}
	if len(p.c) != p.n {
		return fmt.Errorf("objective has %d entries, want %d", len(p.c), p.n)
	}
	for _, vs := range [][]float64{p.a, p.b, p.c} {
		for _, v := range vs {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("non-finite coefficient %v", v)
			}
		}
	}
	return nil
}

// Solution is the outcome of a solve. Variables and Objective are only
// meaningful when Status is Optimal.
type Solution struct {
	Status    Status
	Variables []float64
	Objective float64

	// Pivots is the number of pivot operations performed
	Pivots int
}
