package session

import "errors"

var (
	// ErrSessionNotFound indicates the session doesn't exist or isn't owned by the caller.
	ErrSessionNotFound = errors.New("session not found")
	// ErrProjectNotFound indicates the parent project doesn't exist or isn't owned by the caller.
	ErrProjectNotFound = errors.New("project not found")
	// ErrInvalidInput indicates invalid session input.
	ErrInvalidInput = errors.New("invalid session input")
)
