package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when an insert violates a uniqueness rule.
	ErrDuplicate = errors.New("persistence: duplicate")
	// ErrConflict is returned when a booking insert would overlap an existing
	// confirmed booking for the same room and day.
	ErrConflict = errors.New("persistence: slot conflict")
	// ErrConstraintViolation is returned when stored data would violate a
	// schema or domain constraint.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
)
