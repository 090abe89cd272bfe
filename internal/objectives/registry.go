package objectives

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cwbudde/numopt/internal/gd"
)

// Name identifies a built-in objective.
type Name string

const (
	NameCubic       Name = "cubic"
	NameQuadratic2D Name = "quadratic2d"
	NameQuadratic   Name = "quadratic"
	NameSinCos      Name = "sincos"
)

var (
	// ErrUnknownObjective is returned when the name does not match a built-in objective.
	ErrUnknownObjective = errors.New("unknown objective")
	// ErrUnknownParam is returned for a parameter the objective does not take.
	ErrUnknownParam = errors.New("unknown objective parameter")
)

// NormalizeName maps user input to a canonical objective name.
func NormalizeName(name string) Name {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "cubic", "cubic1d", "gd1d":
		return NameCubic
	case "quadratic2d", "quad2d", "gd2d":
		return NameQuadratic2D
	case "", "quadratic", "quad", "shifted":
		return NameQuadratic
	case "sincos":
		return NameSinCos
	default:
		return Name(name)
	}
}

// Supported returns the objectives understood by New.
func Supported() []Name {
	return []Name{NameCubic, NameQuadratic2D, NameQuadratic, NameSinCos}
}

// New builds the named objective from params.
//
// dim is the length of the starting point. Fixed-size objectives accept 0 or
// their own dimension. The shifted quadratic takes its size from dim and its
// center from the keys c1..cN (default 0). Unknown keys are rejected.
func New(name string, dim int, params map[string]float64) (*gd.FuncObjective, error) {
	p := newParamSet(params)

	var (
		obj *gd.FuncObjective
		err error
	)
	switch NormalizeName(name) {
	case NameCubic:
		if err := checkFixedDim(name, dim, 1); err != nil {
			return nil, err
		}
		obj, err = Cubic1D{
			A3: p.get("a3"),
			A2: p.get("a2"),
			A1: p.get("a1"),
			A0: p.get("a0"),
		}.Objective()
	case NameQuadratic2D:
		if err := checkFixedDim(name, dim, 2); err != nil {
			return nil, err
		}
		obj, err = Quadratic2D{
			A11: p.get("a11"),
			A22: p.get("a22"),
			A12: p.get("a12"),
			B1:  p.get("b1"),
			B2:  p.get("b2"),
			C0:  p.get("c0"),
		}.Objective()
	case NameQuadratic:
		if dim <= 0 {
			dim = 1
		}
		center := make([]float64, dim)
		for i := range center {
			center[i] = p.get("c" + strconv.Itoa(i+1))
		}
		obj, err = ShiftedQuadratic{Center: center}.Objective()
	case NameSinCos:
		if err := checkFixedDim(name, dim, 2); err != nil {
			return nil, err
		}
		obj, err = SinCos{}.Objective()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownObjective, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build objective %s: %w", name, err)
	}

	if unused := p.unused(); len(unused) > 0 {
		return nil, fmt.Errorf("%w for %s: %s", ErrUnknownParam, name, strings.Join(unused, ", "))
	}
	return obj, nil
}

func checkFixedDim(name string, dim, want int) error {
	if dim != 0 && dim != want {
		return fmt.Errorf("objective %s is %d-dimensional, got starting point of length %d: %w",
			name, want, dim, gd.ErrDimensionMismatch)
	}
	return nil
}

// paramSet records which keys were read so leftovers can be reported.
type paramSet struct {
	values map[string]float64
	used   map[string]bool
}

func newParamSet(values map[string]float64) *paramSet {
	return &paramSet{values: values, used: make(map[string]bool)}
}

func (p *paramSet) get(key string) float64 {
	p.used[key] = true
	return p.values[key]
}

func (p *paramSet) unused() []string {
	var keys []string
	for k := range p.values {
		if !p.used[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// ParseParams parses "key=value" pairs as given on the command line.
func ParseParams(pairs map[string]string) (map[string]float64, error) {
	params := make(map[string]float64, len(pairs))
	for k, v := range pairs {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for parameter %s: %q", k, v)
		}
		params[strings.ToLower(strings.TrimSpace(k))] = f
	}
	return params, nil
}
