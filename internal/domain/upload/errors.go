package upload

import "errors"

var (
	// ErrInvalidInput indicates a missing or non-audio upload.
	ErrInvalidInput = errors.New("invalid upload")
	// ErrTooLarge indicates the upload exceeds the configured limit.
	ErrTooLarge = errors.New("upload too large")
)
