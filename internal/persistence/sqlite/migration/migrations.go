// Package migration applies ordered schema migrations to the booking
// database and records progress in a schema_migrations version table.
package migration

// Migration pairs a monotonically increasing version with the SQL statements
// that bring the schema up to that version.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// All returns the full migration sequence in ascending version order.
func All() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_users_and_sessions",
			SQL: `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    first_name    TEXT NOT NULL,
    last_name     TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'employee',
    is_active     INTEGER NOT NULL DEFAULT 1,
    created_at    TEXT NOT NULL,
    updated_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
    id         TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL REFERENCES users(id),
    token      TEXT NOT NULL UNIQUE,
    expires_at TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    revoked_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
`,
		},
		{
			Version: 2,
			Name:    "create_rooms_and_teams",
			SQL: `
CREATE TABLE IF NOT EXISTS rooms (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    capacity   INTEGER NOT NULL CHECK (capacity > 0),
    is_active  INTEGER NOT NULL DEFAULT 1,
    created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS teams (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    is_active  INTEGER NOT NULL DEFAULT 1,
    created_at TEXT NOT NULL
);
`,
		},
		{
			Version: 3,
			Name:    "create_bookings",
			SQL: `
CREATE TABLE IF NOT EXISTS bookings (
    id           TEXT PRIMARY KEY,
    user_id      TEXT NOT NULL REFERENCES users(id),
    room_id      TEXT NOT NULL REFERENCES rooms(id),
    date         TEXT NOT NULL,
    start_time   TEXT NOT NULL,
    end_time     TEXT NOT NULL CHECK (start_time < end_time),
    purpose      TEXT NOT NULL,
    booking_type TEXT NOT NULL DEFAULT 'personal',
    team         TEXT,
    status       TEXT NOT NULL DEFAULT 'confirmed',
    created_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bookings_room_date_status ON bookings(room_id, date, status);
CREATE INDEX IF NOT EXISTS idx_bookings_user ON bookings(user_id);
`,
		},
		{
			Version: 4,
			Name:    "create_priority_requests_and_notifications",
			SQL: `
CREATE TABLE IF NOT EXISTS priority_requests (
    id                  TEXT PRIMARY KEY,
    requester_id        TEXT NOT NULL REFERENCES users(id),
    conflict_booking_id TEXT NOT NULL,
    reason              TEXT NOT NULL,
    status              TEXT NOT NULL DEFAULT 'pending',
    reviewed_by         TEXT,
    reviewed_at         TEXT,
    created_at          TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS admin_notifications (
    id         TEXT PRIMARY KEY,
    type       TEXT NOT NULL,
    title      TEXT NOT NULL,
    message    TEXT NOT NULL,
    related_id TEXT,
    is_read    INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_priority_requests_status ON priority_requests(status);
`,
		},
	}
}
