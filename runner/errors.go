package runner

import "errors"

var (
	// ErrUnauthorized is returned when the auth gate denies the request.
	// Adapters should run the gate themselves first and never see it.
	ErrUnauthorized = errors.New("runner: unauthorized")

	// ErrInvalidConfig is returned for a structurally invalid Config.
	ErrInvalidConfig = errors.New("runner: invalid config")
)
