package auth

import "errors"

// Sentinel errors for token verification.
var (
	ErrMissingCredentials = errors.New("auth: missing credentials")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrTokenExpired       = errors.New("auth: token expired")
	ErrTokenMalformed     = errors.New("auth: token malformed")
	ErrKeyNotFound        = errors.New("auth: signing key not found")
)

// Denial reasons. They are for logs and OnAuthFailure callbacks only and
// must never be returned to the caller.
const (
	ReasonNotConfigured      = "authentication required but not configured"
	ReasonCustomRejected     = "custom validator rejected request"
	ReasonTokenNotConfigured = "token required but not configured"
	ReasonNoToken            = "no token provided"
	ReasonInvalidToken       = "invalid token"
)
