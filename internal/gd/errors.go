package gd

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDimension is returned when an objective is built with a non-positive dimension.
	ErrInvalidDimension = errors.New("gd: dimension must be positive")

	// ErrDimensionMismatch is returned when a vector's length differs from the objective dimension.
	// Use errors.Is(err, ErrDimensionMismatch) to check for it; the concrete value is a *DimensionError.
	ErrDimensionMismatch = errors.New("gd: vector dimension mismatch")

	// ErrNilValueFunc is returned when an objective is built without a value function.
	ErrNilValueFunc = errors.New("gd: value function is nil")
)

// DimensionError describes a vector whose length does not match the objective.
type DimensionError struct {
	Want int
	Got  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("gd: vector dimension mismatch: want %d, got %d", e.Want, e.Got)
}

func (e *DimensionError) Is(target error) bool {
	return target == ErrDimensionMismatch
}

func checkDim(want int, x []float64) error {
	if len(x) != want {
		return &DimensionError{Want: want, Got: len(x)}
	}
	return nil
}
