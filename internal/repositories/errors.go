package repositories

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey is returned when an insert collides with an existing primary key.
	ErrDuplicateKey = errors.New("duplicate key")
)
