package sqlite

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/example/room-booking/internal/persistence"
)

// mapError translates driver level failures into persistence sentinel errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return persistence.ErrNotFound
	}

	msg := err.Error()
	switch {
	case containsAny(msg, "UNIQUE constraint failed"):
		return persistence.ErrDuplicate
	case containsAny(msg, "FOREIGN KEY constraint failed", "CHECK constraint failed"):
		return persistence.ErrConstraintViolation
	}

	return err
}

func containsAny(s string, substrings ...string) bool {
	for _, substr := range substrings {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}
