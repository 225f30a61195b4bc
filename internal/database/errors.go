package database

import "errors"

var (
	// ErrDatabaseNotFound is returned by Open when CreateIfNotExists is
	// false and there is no database file.
	ErrDatabaseNotFound = errors.New("database not found")

	// ErrRunNotFound is returned by GetRun for an unknown run ID.
	ErrRunNotFound = errors.New("analysis run not found")
)
