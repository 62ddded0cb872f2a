package scaler

import (
	"errors"
	"fmt"
)

// ErrDegenerateColumn is matched by every *DegenerateColumnError.
var ErrDegenerateColumn = errors.New("scaler: degenerate column")

// DegenerateColumnError reports a column with zero spread under PolicyFail.
type DegenerateColumnError struct {
	Column int
	Kind   Kind
}

func (e *DegenerateColumnError) Error() string {
	return fmt.Sprintf("scaler: column %d has zero %s spread", e.Column, e.Kind)
}

// Is reports whether target is ErrDegenerateColumn.
func (e *DegenerateColumnError) Is(target error) bool { return target == ErrDegenerateColumn }
