package config

import "errors"

var (
	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("config: invalid")

	// ErrMissingEnv is returned when a ${VAR} reference is not set.
	ErrMissingEnv = errors.New("config: missing required environment variables")

	// ErrUnknownSecretRef is returned for an unsupported secretref source.
	ErrUnknownSecretRef = errors.New("config: unknown secret reference")
)
