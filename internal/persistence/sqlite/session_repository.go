package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository using SQLite.
type SessionRepository struct {
	pool *ConnectionPool
}

// NewSessionRepository creates a new SQLite session repository.
func NewSessionRepository(pool *ConnectionPool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

const sessionColumns = "id, user_id, token, expires_at, created_at, updated_at, revoked_at"

// CreateSession persists a new session token.
func (r *SessionRepository) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	if session.ID == "" || session.Token == "" {
		return persistence.Session{}, persistence.ErrConstraintViolation
	}

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, token, expires_at, created_at, updated_at, revoked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		session.ID,
		session.UserID,
		session.Token,
		formatTime(session.ExpiresAt),
		formatTime(session.CreatedAt),
		formatTime(session.UpdatedAt),
		nullableTime(session.RevokedAt),
	)
	if err != nil {
		return persistence.Session{}, mapError(err)
	}

	return r.GetSession(ctx, session.Token)
}

// GetSession retrieves a session by its opaque token.
func (r *SessionRepository) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	if token == "" {
		return persistence.Session{}, persistence.ErrNotFound
	}

	row := r.pool.db.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE token = ?", token)
	session, err := scanSession(row)
	if err != nil {
		return persistence.Session{}, mapError(err)
	}
	return session, nil
}

// RevokeSession stamps the session revoked and returns the updated row.
// Revoking an already revoked session leaves the original timestamp.
func (r *SessionRepository) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	result, err := r.pool.db.ExecContext(ctx,
		"UPDATE sessions SET revoked_at = ?, updated_at = ? WHERE token = ? AND revoked_at IS NULL",
		formatTime(revokedAt), formatTime(revokedAt), token)
	if err != nil {
		return persistence.Session{}, mapError(err)
	}
	if _, err := result.RowsAffected(); err != nil {
		return persistence.Session{}, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return r.GetSession(ctx, token)
}

// DeleteExpiredSessions removes sessions whose expiry is at or before the
// reference time.
func (r *SessionRepository) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	_, err := r.pool.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE expires_at <= ?", formatTime(reference))
	return mapError(err)
}

func scanSession(row rowScanner) (persistence.Session, error) {
	var session persistence.Session
	var expiresAt, createdAt, updatedAt string
	var revokedAt sql.NullString

	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.Token,
		&expiresAt,
		&createdAt,
		&updatedAt,
		&revokedAt,
	)
	if err != nil {
		return persistence.Session{}, err
	}

	if session.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return persistence.Session{}, fmt.Errorf("failed to parse expires_at: %w", err)
	}
	if session.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Session{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if session.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Session{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	if session.RevokedAt, err = timePointer(revokedAt); err != nil {
		return persistence.Session{}, fmt.Errorf("failed to parse revoked_at: %w", err)
	}

	return session, nil
}
