package auth

import "errors"

// Common authentication service errors. Every token failure is reported to
// clients the same way; the distinct values exist for logging and tests.
var (
	// ErrInvalidToken indicates the token structure is malformed or the signature doesn't match.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrUnsupportedToken indicates the token was signed with an algorithm other than HS256.
	ErrUnsupportedToken = errors.New("unsupported authentication token")

	// ErrEmptyClaims indicates the token verified but carries no subject.
	ErrEmptyClaims = errors.New("authentication token has empty claims")

	// ErrMissingToken indicates a token was expected but not provided.
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrInvalidCredentials indicates a login with an unknown username or wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Failure categories attached to token validation log records.
const (
	FailureSignature   = "signature"
	FailureMalformed   = "malformed"
	FailureExpired     = "expired"
	FailureUnsupported = "unsupported"
	FailureEmptyClaims = "empty_claims"
)
