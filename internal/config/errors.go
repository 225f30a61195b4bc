package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and describe exactly which
// option is wrong so the CLI can print a useful message.
//
// Design decision: sentinel errors let callers use errors.Is() while the
// message stays human-readable. None of them need dynamic values, so they
// are plain errors.New() values.
var (
	// ErrInvalidTimeout is returned when the per-request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidRunTimeout is returned when the run timeout is negative.
	// Zero disables the run timeout.
	ErrInvalidRunTimeout = errors.New("invalid run timeout: must be non-negative")

	// ErrInvalidConcurrency is returned when the concurrency is outside 1..MaxConcurrency.
	// The oracles are third-party sites; more than MaxConcurrency parallel
	// evaluations is not allowed.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be between 1 and 4")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidRequestDelay is returned when the request delay is negative.
	// Use 0 for no delay between requests to the same site.
	ErrInvalidRequestDelay = errors.New("invalid request delay: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidCacheTTL is returned when the verdict cache TTL is negative.
	ErrInvalidCacheTTL = errors.New("invalid cache ttl: must be non-negative")
)
