package project

import "errors"

var (
	// ErrProjectNotFound indicates the project doesn't exist or isn't owned by the caller.
	ErrProjectNotFound = errors.New("project not found")
	// ErrInvalidInput indicates invalid project input.
	ErrInvalidInput = errors.New("invalid project input")
)
