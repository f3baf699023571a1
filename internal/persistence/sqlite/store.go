// Package sqlite implements the persistence repositories on top of a SQLite
// database accessed through modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/room-booking/internal/persistence/sqlite/migration"
)

// Store bundles the SQLite-backed repositories sharing one connection pool.
type Store struct {
	pool *ConnectionPool

	Users         *UserRepository
	Rooms         *RoomRepository
	Teams         *TeamRepository
	Bookings      *BookingRepository
	Priority      *PriorityRequestRepository
	Notifications *NotificationRepository
	Sessions      *SessionRepository
}

// Open connects to the database identified by dsn and constructs the
// repository set. Callers must invoke Migrate before first use.
func Open(dsn string) (*Store, error) {
	pool, err := NewConnectionPool(dsn)
	if err != nil {
		return nil, err
	}

	return &Store{
		pool:          pool,
		Users:         NewUserRepository(pool),
		Rooms:         NewRoomRepository(pool),
		Teams:         NewTeamRepository(pool),
		Bookings:      NewBookingRepository(pool),
		Priority:      NewPriorityRequestRepository(pool),
		Notifications: NewNotificationRepository(pool),
		Sessions:      NewSessionRepository(pool),
	}, nil
}

// Migrate brings the schema up to the latest version.
func (s *Store) Migrate(ctx context.Context) error {
	return migration.NewManager(s.pool.DB()).Apply(ctx)
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

// sqlNowUTC is an SQL expression producing the current UTC time in the same
// RFC 3339 text layout parseTime expects.
const sqlNowUTC = "strftime('%Y-%m-%dT%H:%M:%SZ', 'now')"

// --- scan helpers shared by repositories ---

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts, nil
	}
	return time.Parse(time.RFC3339, value)
}

func nullableString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func stringPointer(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	clone := value.String
	return &clone
}

func nullableTime(value *time.Time) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*value), Valid: true}
}

func timePointer(value sql.NullString) (*time.Time, error) {
	if !value.Valid {
		return nil, nil
	}
	ts, err := parseTime(value.String)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}
