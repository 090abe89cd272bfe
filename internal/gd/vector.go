package gd

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// InfNorm returns the largest absolute component of x, or 0 for an empty vector.
func InfNorm(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return floats.Norm(x, math.Inf(1))
}

// CopyVec copies src into dst elementwise. Both slices must have the same length.
func CopyVec(dst, src []float64) {
	if len(dst) != len(src) {
		panic("gd: vector length mismatch")
	}
	copy(dst, src)
}

// axpy computes x += alpha*y in place.
func axpy(x []float64, alpha float64, y []float64) {
	floats.AddScaled(x, alpha, y)
}
