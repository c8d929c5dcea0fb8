package jwt

import "errors"

var (
	// ErrEmptySigningKey is returned when a service is created without a key.
	ErrEmptySigningKey = errors.New("jwt: signing key is empty")

	// ErrInvalidToken is returned for malformed or badly signed tokens.
	ErrInvalidToken = errors.New("jwt: invalid token")

	// ErrExpiredToken is returned for structurally valid but expired tokens.
	ErrExpiredToken = errors.New("jwt: token expired")
)
