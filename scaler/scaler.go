package scaler

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Kind selects the scaling statistics.
type Kind uint8

const (
	// Standard centers on the mean and divides by the population standard deviation.
	Standard Kind = iota + 1
	// MinMax subtracts the minimum and divides by the range.
	MinMax
)

func (k Kind) String() string {
	switch k {
	case Standard:
		return "standard"
	case MinMax:
		return "minmax"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind resolves "standard" or "minmax".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "std", "zscore":
		return Standard, nil
	case "minmax", "min_max", "range":
		return MinMax, nil
	}
	return 0, fmt.Errorf("scaler: unknown kind %q", s)
}

// DegeneratePolicy decides what happens to a column whose spread is zero.
type DegeneratePolicy uint8

const (
	// PolicyIdentity keeps the center but uses a spread of 1 for the column.
	PolicyIdentity DegeneratePolicy = iota
	// PolicyFail rejects the fit with a *DegenerateColumnError.
	PolicyFail
)

// ParsePolicy resolves "identity" or "fail".
func ParsePolicy(s string) (DegeneratePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "identity":
		return PolicyIdentity, nil
	case "fail", "error":
		return PolicyFail, nil
	}
	return 0, fmt.Errorf("scaler: unknown degenerate policy %q", s)
}

// Params holds fitted per-column statistics. A Params value is immutable
// once returned by Fit.
type Params struct {
	Kind   Kind
	Center []float64
	Spread []float64
	// Degenerate lists columns that fell back to a spread of 1.
	Degenerate []int
}

// Dim returns the number of columns.
func (p *Params) Dim() int { return len(p.Center) }

// Clone returns a deep copy.
func (p *Params) Clone() *Params {
	if p == nil {
		return nil
	}
	return &Params{
		Kind:       p.Kind,
		Center:     slices.Clone(p.Center),
		Spread:     slices.Clone(p.Spread),
		Degenerate: slices.Clone(p.Degenerate),
	}
}

// Fit computes parameters from column-major data. Every column must hold the
// same, non-zero number of values.
func Fit(columns [][]float64, kind Kind, policy DegeneratePolicy) (*Params, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("scaler: no columns")
	}
	n := len(columns[0])
	if n == 0 {
		return nil, fmt.Errorf("scaler: no rows")
	}
	p := &Params{
		Kind:   kind,
		Center: make([]float64, len(columns)),
		Spread: make([]float64, len(columns)),
	}
	for j, col := range columns {
		if len(col) != n {
			return nil, fmt.Errorf("scaler: column %d has %d rows, want %d", j, len(col), n)
		}
		var center, spread float64
		switch kind {
		case Standard:
			center, spread = stat.PopMeanStdDev(col, nil)
		case MinMax:
			center = floats.Min(col)
			spread = floats.Max(col) - center
		default:
			return nil, fmt.Errorf("scaler: unsupported kind %v", kind)
		}
		if spread == 0 || math.IsNaN(spread) || isConstant(col) {
			if policy == PolicyFail {
				return nil, &DegenerateColumnError{Column: j, Kind: kind}
			}
			spread = 1
			p.Degenerate = append(p.Degenerate, j)
		}
		p.Center[j] = center
		p.Spread[j] = spread
	}
	return p, nil
}

// Transform applies (x - center) / spread element-wise.
func (p *Params) Transform(raw []float64) ([]float64, error) {
	if len(raw) != len(p.Center) {
		return nil, fmt.Errorf("scaler: vector dim %d != fitted dim %d", len(raw), len(p.Center))
	}
	out := make([]float64, len(raw))
	for j, x := range raw {
		out[j] = (x - p.Center[j]) / p.Spread[j]
	}
	return out, nil
}

// TransformRows transforms each row with Transform.
func (p *Params) TransformRows(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		v, err := p.Transform(row)
		if err != nil {
			return nil, fmt.Errorf("scaler: row %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// isConstant catches columns whose float standard deviation comes out as a
// tiny non-zero residue.
func isConstant(col []float64) bool {
	for _, v := range col[1:] {
		if v != col[0] {
			return false
		}
	}
	return true
}
