package kickertool

import (
	"errors"
	"fmt"
)

// Every call against the remote platform resolves to exactly one outcome of
// this taxonomy. Nothing else leaks past the client boundary.
var (
	// ErrAPIKeyMissing is a configuration error, not a transient failure.
	// It is reported before any network attempt.
	ErrAPIKeyMissing = errors.New("kickertool API key is not configured")

	ErrNotFound          = errors.New("resource not found on kickertool API")
	ErrUnauthorized      = errors.New("kickertool API authentication failed")
	ErrMatchNotRunning   = errors.New("match is not in running state")
	ErrTimeout           = errors.New("kickertool API request timed out")
	ErrMalformedResponse = errors.New("kickertool API returned malformed JSON")
)

// RemoteError covers any other non-200 answer from the platform.
type RemoteError struct {
	StatusCode int
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("kickertool API error: HTTP %d", e.StatusCode)
}

// TransportError covers network-level failures below HTTP.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("kickertool API transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
