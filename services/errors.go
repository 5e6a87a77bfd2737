package services

import "errors"

// Service-level sentinels. Handlers map these onto HTTP statuses; nothing
// below the handler layer knows about HTTP.
var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrGroupNotFound      = errors.New("group not found")
	ErrCourtNotFound      = errors.New("court not found")

	// ErrMatchNotRunning guards result submission: only a running match may
	// receive a result, checked locally before any remote call.
	ErrMatchNotRunning = errors.New("match is not running")

	ErrValidationFailed   = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDuplicateWebhook is returned under the reject-duplicates policy for
	// a webhook id that was already processed successfully.
	ErrDuplicateWebhook = errors.New("webhook already processed")

	// ErrRemoteUnavailable wraps upstream failures that are not the
	// caller's fault (timeouts, 5xx, transport errors).
	ErrRemoteUnavailable = errors.New("remote tournament API unavailable")
)
