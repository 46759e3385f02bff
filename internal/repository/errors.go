package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist or isn't visible to the owner
	ErrNotFound = errors.New("not found")

	// ErrForeignKeyViolation is returned when a foreign key constraint fails
	ErrForeignKeyViolation = errors.New("foreign key violation")

	// ErrConstraint is returned when a CHECK or NOT NULL constraint rejects a row
	ErrConstraint = errors.New("constraint violation")

	// ErrDuplicate is returned when a UNIQUE constraint rejects a row
	ErrDuplicate = errors.New("duplicate value")
)
