package actions

import "errors"

var (
	// ErrNotFound is returned when an action is not registered.
	ErrNotFound = errors.New("actions: action not found")

	// ErrUnknownMode is returned when a definition names an unsupported mode.
	ErrUnknownMode = errors.New("actions: unknown mode")

	// ErrInvalidDefinition is returned when a definition is malformed.
	ErrInvalidDefinition = errors.New("actions: invalid definition")
)
