package ws

import "errors"

var (
	// ErrMissingToken is returned when the upgrade request carries no bearer
	// token.
	ErrMissingToken = errors.New("missing bearer token")

	// ErrAuthenticationFailed wraps handler authentication failures.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrConnectRejected wraps OnConnect and subscription resolution
	// failures that abort a session before the pumps start.
	ErrConnectRejected = errors.New("connection rejected")
)
