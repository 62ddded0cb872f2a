package index

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidK is matched by every *InvalidKError.
	ErrInvalidK = errors.New("index: invalid k")
	// ErrEmpty is returned when building from no vectors.
	ErrEmpty = errors.New("index: no vectors")
)

// InvalidKError reports a neighbor count below 1, or above Max when a cap
// is configured.
type InvalidKError struct {
	K int
	// Max is the configured cap; 0 when k was rejected for being below 1.
	Max int
}

func (e *InvalidKError) Error() string {
	if e.Max > 0 {
		return fmt.Sprintf("index: k must be <= %d, got %d", e.Max, e.K)
	}
	return fmt.Sprintf("index: k must be >= 1, got %d", e.K)
}

// Is reports whether target is ErrInvalidK.
func (e *InvalidKError) Is(target error) bool { return target == ErrInvalidK }
