package oracle

import "errors"

var (
	// ErrOracleUnavailable wraps transport failures and non-2xx responses.
	ErrOracleUnavailable = errors.New("oracle unavailable")

	// ErrNoVerdicts is returned when a page was fetched but nothing could be
	// extracted from it, usually because the markup changed.
	ErrNoVerdicts = errors.New("no verdicts found in oracle response")
)
