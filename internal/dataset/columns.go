package dataset

import (
	"errors"
	"fmt"
)

// ErrInvalidSelection is wrapped by ValidateSelection failures.
var ErrInvalidSelection = errors.New("dataset: invalid column selection")

// Columns returns the column names of a dataset, taken from the key order of
// its first record. Later records are not consulted.
func Columns(d Dataset) []string {
	if d.Len() == 0 {
		return []string{}
	}
	return d.Row(0).Keys()
}

// DefaultSelection picks the first two columns, or fewer when fewer exist.
func DefaultSelection(columns []string) []string {
	n := len(columns)
	if n > 2 {
		n = 2
	}
	out := make([]string, n)
	copy(out, columns[:n])
	return out
}

// ValidateSelection checks that sel is non-empty, has no repeats, and names
// only discovered columns.
func ValidateSelection(columns, sel []string) error {
	if len(sel) == 0 {
		return fmt.Errorf("%w: no columns selected", ErrInvalidSelection)
	}
	known := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		known[c] = struct{}{}
	}
	seen := make(map[string]struct{}, len(sel))
	for _, c := range sel {
		if _, ok := known[c]; !ok {
			return fmt.Errorf("%w: unknown column %q", ErrInvalidSelection, c)
		}
		if _, dup := seen[c]; dup {
			return fmt.Errorf("%w: column %q selected twice", ErrInvalidSelection, c)
		}
		seen[c] = struct{}{}
	}
	return nil
}
