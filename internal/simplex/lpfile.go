package simplex

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ParseLP reads a problem in the plain text LP format:
//
//	m n
//	c_1 ... c_n
//	a_11 ... a_1n b_1
//	...
//	a_m1 ... a_mn b_m
//
// Blank lines and lines starting with '#' are ignored.
func ParseLP(r io.Reader) (*Problem, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0

	next := func() ([]string, int, bool) {
		for sc.Scan() {
			lineNo++
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			return strings.Fields(line), lineNo, true
		}
		return nil, lineNo, false
	}

	fields, line, ok := next()
	if !ok {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("failed to read LP input: %w", err)
		}
		return nil, fmt.Errorf("missing problem size line")
	}
	if len(fields) != 2 {
		return nil, fmt.Errorf("line %d: expected \"m n\", got %d fields", line, len(fields))
	}
	m, err := strconv.Atoi(fields[0])
	if err != nil || m < 0 {
		return nil, fmt.Errorf("line %d: invalid constraint count %q", line, fields[0])
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("line %d: invalid variable count %q", line, fields[1])
	}

	fields, line, ok = next()
	if !ok {
		return nil, fmt.Errorf("missing objective coefficients")
	}
	c, err := parseRow(fields, n, line, "objective")
	if err != nil {
		return nil, err
	}

	a := make([]float64, 0, m*n)
	b := make([]float64, m)
	for i := 0; i < m; i++ {
		fields, line, ok = next()
		if !ok {
			return nil, fmt.Errorf("missing constraint row %d", i+1)
		}
		row, err := parseRow(fields, n+1, line, fmt.Sprintf("constraint %d", i+1))
		if err != nil {
			return nil, err
		}
		a = append(a, row[:n]...)
		b[i] = row[n]
	}

	if fields, line, ok = next(); ok {
		return nil, fmt.Errorf("line %d: unexpected trailing data %q", line, strings.Join(fields, " "))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read LP input: %w", err)
	}

	return NewProblem(m, n, a, b, c), nil
}

func parseRow(fields []string, want, line int, what string) ([]float64, error) {
	if len(fields) != want {
		return nil, fmt.Errorf("line %d: %s has %d values, want %d", line, what, len(fields), want)
	}
	row := make([]float64, want)
	for j, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad %s coefficient %d %q", line, what, j+1, f)
		}
		row[j] = v
	}
	return row, nil
}

// LoadLP parses the LP file at path.
func LoadLP(path string) (*Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open LP file: %w", err)
	}
	defer f.Close()

	p, err := ParseLP(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return p, nil
}
