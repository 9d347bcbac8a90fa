package workflow

import "errors"

var (
	// ErrInvalidState is returned when a state is not one of the workflow states
	ErrInvalidState = errors.New("invalid state")

	// ErrUnknownKind is returned for a record kind outside the registry
	ErrUnknownKind = errors.New("unknown record kind")
)
