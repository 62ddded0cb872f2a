package match

import (
	"errors"
	"fmt"
)

// ErrInvalidQuery is matched by every *InvalidQueryError.
var ErrInvalidQuery = errors.New("match: invalid query")

// InvalidQueryError reports a query vector that cannot be scored. Attribute
// is the offending position, or -1 when the vector as a whole is wrong.
type InvalidQueryError struct {
	Attribute int
	Reason    string
}

func (e *InvalidQueryError) Error() string {
	if e.Attribute < 0 {
		return fmt.Sprintf("match: invalid query: %s", e.Reason)
	}
	return fmt.Sprintf("match: invalid query: attribute %d: %s", e.Attribute, e.Reason)
}

// Is reports whether target is ErrInvalidQuery.
func (e *InvalidQueryError) Is(target error) bool { return target == ErrInvalidQuery }
