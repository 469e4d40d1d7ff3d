package health

import "errors"

var (
	// ErrInvalidStatus indicates a status name outside the known set.
	ErrInvalidStatus = errors.New("health: invalid status")

	// ErrCheckPanicked indicates a check panicked instead of returning.
	ErrCheckPanicked = errors.New("health: check panicked")
)
