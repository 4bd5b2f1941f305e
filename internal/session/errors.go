package session

import "errors"

var (
	// ErrInvalidState is returned when an operation is not valid in the current status.
	ErrInvalidState = errors.New("invalid state transition")

	// ErrOutOfRange is returned for answer indexes or values outside the session shape.
	ErrOutOfRange = errors.New("value out of range")
)
