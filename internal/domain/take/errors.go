package take

import "errors"

var (
	// ErrTakeNotFound indicates the take doesn't exist or isn't owned by the caller.
	ErrTakeNotFound = errors.New("take not found")
	// ErrSessionNotFound indicates the parent session doesn't exist or isn't owned by the caller.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidInput indicates invalid take input.
	ErrInvalidInput = errors.New("invalid take input")
)
