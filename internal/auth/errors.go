package auth

import "errors"

var (
	// ErrMissingAPIKey is returned when the request carries no Authorization header
	ErrMissingAPIKey = errors.New("missing Authorization header")

	// ErrMalformedAuthHeader is returned when the header is not "Bearer <api_key>"
	ErrMalformedAuthHeader = errors.New("invalid Authorization header format, expected 'Bearer <api_key>'")

	// ErrInvalidAPIKey is returned when no authorizer recognizes the key
	ErrInvalidAPIKey = errors.New("invalid API key")
)
