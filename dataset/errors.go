package dataset

import (
	"errors"
	"fmt"
)

// ErrLoad is matched by every *LoadError via errors.Is.
var ErrLoad = errors.New("dataset: load failed")

// LoadError reports malformed or missing reference data. It is fatal at
// startup: no partial dataset is ever returned alongside it.
type LoadError struct {
	// Record is the 1-based data record number, 0 when not record specific.
	Record int
	// Field names the offending column, if any.
	Field string
	Err   error
}

func (e *LoadError) Error() string {
	switch {
	case e.Record > 0 && e.Field != "":
		return fmt.Sprintf("dataset: record %d, field %q: %v", e.Record, e.Field, e.Err)
	case e.Record > 0:
		return fmt.Sprintf("dataset: record %d: %v", e.Record, e.Err)
	case e.Field != "":
		return fmt.Sprintf("dataset: field %q: %v", e.Field, e.Err)
	default:
		return fmt.Sprintf("dataset: %v", e.Err)
	}
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is reports whether target is ErrLoad.
func (e *LoadError) Is(target error) bool { return target == ErrLoad }
