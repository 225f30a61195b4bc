package analyzer

import "errors"

var (
	// ErrInvalidArgument is wrapped by every request validation error.
	// Nothing is sent to the oracles when it is returned.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEmptySurname is returned when the surname is empty after trimming.
	ErrEmptySurname = errors.New("surname is empty")

	// ErrSurnameTooLong is returned for surnames over 10 characters.
	ErrSurnameTooLong = errors.New("surname is longer than 10 characters")

	// ErrRunTimeout is returned when the run timeout fires before every
	// candidate was evaluated.
	ErrRunTimeout = errors.New("analysis run timed out")
)
