package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite store
// for integration-style persistence tests.
type SQLiteHarness struct {
	Users         persistence.UserRepository
	Rooms         persistence.RoomRepository
	Teams         persistence.TeamRepository
	Bookings      persistence.BookingRepository
	Priority      persistence.PriorityRequestRepository
	Notifications persistence.NotificationRepository
	Sessions      persistence.SessionRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness backed by a temporary file that
// is migrated automatically. Callers may optionally invoke Close, but the
// helper also registers a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dir := tb.TempDir()
	path := filepath.Join(dir, "booking.db")

	store, err := sqlite.Open(path)
	if err != nil {
		tb.Fatalf("failed to open store: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		tb.Fatalf("failed to migrate store: %v", err)
	}

	harness := &SQLiteHarness{
		Users:         store.Users,
		Rooms:         store.Rooms,
		Teams:         store.Teams,
		Bookings:      store.Bookings,
		Priority:      store.Priority,
		Notifications: store.Notifications,
		Sessions:      store.Sessions,
		cleanup: func() {
			_ = store.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
