package graph

import "errors"

// Sentinel errors returned by Store write operations.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrDuplicateEntity indicates an attempt to register a user ID that
	// already exists in the store.
	ErrDuplicateEntity = errors.New("duplicate entity")

	// ErrUnknownUser indicates a connection or interaction referenced a
	// user ID that has not been registered.
	ErrUnknownUser = errors.New("unknown user")
)
