package simplex

import (
	"log/slog"
	"math"
)

// DefaultEps is the tolerance used for sign tests, ratio ties and pivot size.
const DefaultEps = 1e-9

// Solver runs the tableau Simplex method.
//
// Pivoting uses the most negative reduced cost and the first minimum ratio.
// There is no anti-cycling rule, so degenerate problems may cycle; set
// MaxPivots to bound the work in that case.
type Solver struct {
	// Eps is the numeric tolerance; non-positive means DefaultEps
	Eps float64

	// MaxPivots caps the number of pivots (0 = unlimited). Hitting the cap
	// reports InvalidInput.
	MaxPivots int
}

// NewSolver creates a solver with the default tolerance and no pivot cap.
func NewSolver() *Solver {
	return &Solver{Eps: DefaultEps}
}

// Solve maximizes p with a default solver.
func Solve(p *Problem) Solution {
	return NewSolver().Solve(p)
}

// Solve maximizes p. Problems with a negative right-hand side are reported
// Infeasible without building a tableau, since the origin must be feasible.
func (s *Solver) Solve(p *Problem) Solution {
	eps := s.Eps
	if !(eps > 0) {
		eps = DefaultEps
	}

	if err := p.Validate(); err != nil {
		slog.Debug("Rejected linear program", "error", err)
		return Solution{Status: InvalidInput}
	}
	for i, bi := range p.b {
		if bi < -eps {
			slog.Debug("Negative right-hand side", "row", i, "value", bi)
			return Solution{Status: Infeasible}
		}
	}

	t := NewTableau(p)
	pivots := 0
	for {
		col := t.EnteringColumn(eps)
		if col < 0 {
			break
		}

		row := t.LeavingRow(col, eps)
		if row < 0 {
			slog.Debug("Unbounded direction", "column", col, "pivots", pivots)
			return Solution{Status: Unbounded, Pivots: pivots}
		}

		if math.Abs(t.At(row, col)) < eps {
			return Solution{Status: InvalidInput, Pivots: pivots}
		}

		if s.MaxPivots > 0 && pivots >= s.MaxPivots {
			slog.Warn("Pivot limit reached, problem may be cycling", "max_pivots", s.MaxPivots)
			return Solution{Status: InvalidInput, Pivots: pivots}
		}

		t.Pivot(row, col, eps)
		pivots++
		slog.Debug("Pivot", "row", row, "column", col, "count", pivots)
	}

	x, obj := t.Solution()
	return Solution{
		Status:    Optimal,
		Variables: x,
		Objective: obj,
		Pivots:    pivots,
	}
}
