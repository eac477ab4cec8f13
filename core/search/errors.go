package search

import "errors"

var (
	// ErrBackendUnavailable reports a transport failure (connection refused, timeout,
	// overloaded node). It is the only kind the connectivity check retries.
	ErrBackendUnavailable = errors.New("search: backend unavailable")

	// ErrQuery reports a request the backend rejected (malformed filter, unknown index).
	ErrQuery = errors.New("search: query rejected")

	// ErrCursorExpired reports a scroll cursor whose keep-alive lapsed between fetches.
	// Cursors are never reopened automatically: pagination would restart from the beginning.
	ErrCursorExpired = errors.New("search: scroll cursor expired")
)

// IsRetryable reports whether err is a transient backend failure.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrBackendUnavailable)
}
