package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a write would violate a uniqueness constraint.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrConstraintViolation is returned when a write is rejected by a CHECK or NOT NULL constraint.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrForeignKeyViolation is returned when a write references a missing train or station.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")
	// ErrUnsupported is returned for operations the store deliberately does not offer.
	ErrUnsupported = errors.New("persistence: operation not supported")
)
