package candidate

import "errors"

var (
	// ErrInvalidStrokes is returned for a malformed stroke list.
	ErrInvalidStrokes = errors.New("invalid stroke counts")

	// ErrNoNames is returned when a list page yields no names.
	ErrNoNames = errors.New("no names found")
)
