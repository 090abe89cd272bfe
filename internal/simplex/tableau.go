package simplex

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Tableau is the dense (m+1)×(n+m+1) Simplex tableau.
//
// Columns 0..n-1 hold the original variables, n..n+m-1 the slack variables
// and the last column the right-hand side. Row m is the objective row,
// holding -c so that optimality means no negative reduced cost remains.
type Tableau struct {
	m, n  int
	data  *mat.Dense
	basis []int
}

// NewTableau builds the initial tableau of p with the slack basis.
// p must already be valid.
func NewTableau(p *Problem) *Tableau {
	m, n := p.m, p.n
	width := n + m + 1
	data := mat.NewDense(m+1, width, nil)
	basis := make([]int, m)

	for i := 0; i < m; i++ {
		row := data.RawRowView(i)
		copy(row[:n], p.a[i*n:(i+1)*n])
		row[n+i] = 1
		row[width-1] = p.b[i]
		basis[i] = n + i
	}

	obj := data.RawRowView(m)
	for j := 0; j < n; j++ {
		obj[j] = -p.c[j]
	}

	return &Tableau{m: m, n: n, data: data, basis: basis}
}

// Dims returns the number of rows and columns.
func (t *Tableau) Dims() (rows, cols int) {
	return t.data.Dims()
}

// At returns the entry at row i, column j.
func (t *Tableau) At(i, j int) float64 {
	return t.data.At(i, j)
}

// Basis returns a copy of the basic column index of each constraint row.
func (t *Tableau) Basis() []int {
	return append([]int(nil), t.basis...)
}

func (t *Tableau) rhsCol() int {
	return t.n + t.m
}

// EnteringColumn returns the column with the most negative objective
// coefficient, or -1 when none is below -eps. A later column replaces the
// current choice only if it is more negative by more than eps.
func (t *Tableau) EnteringColumn(eps float64) int {
	obj := t.data.RawRowView(t.m)
	best := 0.0
	col := -1
	for j := 0; j < t.rhsCol(); j++ {
		if obj[j] < best-eps {
			best = obj[j]
			col = j
		}
	}
	return col
}

// LeavingRow runs the minimum ratio test on column col and returns the
// chosen row, or -1 when no entry in the column exceeds eps.
func (t *Tableau) LeavingRow(col int, eps float64) int {
	rhs := t.rhsCol()
	best := math.MaxFloat64
	row := -1
	for i := 0; i < t.m; i++ {
		r := t.data.RawRowView(i)
		if r[col] > eps {
			ratio := r[rhs] / r[col]
			if ratio < best-eps {
				best = ratio
				row = i
			}
		}
	}
	return row
}

// Pivot makes col basic in row: the pivot row is divided by the pivot
// element and col is eliminated from every other row.
func (t *Tableau) Pivot(row, col int, eps float64) {
	prow := t.data.RawRowView(row)
	pivot := prow[col]
	for j := range prow {
		prow[j] /= pivot
	}

	for i := 0; i <= t.m; i++ {
		if i == row {
			continue
		}
		r := t.data.RawRowView(i)
		factor := r[col]
		if math.Abs(factor) <= eps {
			continue
		}
		floats.AddScaled(r, -factor, prow)
	}

	t.basis[row] = col
}

// Solution reads the basic solution and objective value off the tableau.
func (t *Tableau) Solution() ([]float64, float64) {
	rhs := t.rhsCol()
	x := make([]float64, t.n)
	for i, v := range t.basis {
		if v < t.n {
			x[v] = t.data.At(i, rhs)
		}
	}
	return x, t.data.At(t.m, rhs)
}
