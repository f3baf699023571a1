package sqlite

import (
	"context"
	"fmt"

	"github.com/example/room-booking/internal/persistence"
)

// UserRepository implements persistence.UserRepository using SQLite.
type UserRepository struct {
	pool *ConnectionPool
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(pool *ConnectionPool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = "id, email, first_name, last_name, password_hash, role, is_active, created_at, updated_at"

// CreateUser inserts a new account. A duplicate email yields ErrDuplicate.
func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) error {
	if user.ID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO users (id, email, first_name, last_name, password_hash, role, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		user.ID,
		user.Email,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.Role,
		user.IsActive,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
	)
	return mapError(err)
}

// GetUser retrieves a user by ID.
func (r *UserRepository) GetUser(ctx context.Context, id string) (persistence.User, error) {
	if id == "" {
		return persistence.User{}, persistence.ErrNotFound
	}
	return r.get(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
}

// GetUserByEmail retrieves a user by email address.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	if email == "" {
		return persistence.User{}, persistence.ErrNotFound
	}
	return r.get(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
}

// ListUsers returns every account ordered by email.
func (r *UserRepository) ListUsers(ctx context.Context) ([]persistence.User, error) {
	rows, err := r.pool.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY email ASC")
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var users []persistence.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, mapError(err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return users, nil
}

// UpdateUserRole changes the account role.
func (r *UserRepository) UpdateUserRole(ctx context.Context, id, role string) error {
	return r.update(ctx, "UPDATE users SET role = ?, updated_at = "+sqlNowUTC+" WHERE id = ?", role, id)
}

// UpdateUserStatus activates or deactivates the account.
func (r *UserRepository) UpdateUserStatus(ctx context.Context, id string, isActive bool) error {
	return r.update(ctx, "UPDATE users SET is_active = ?, updated_at = "+sqlNowUTC+" WHERE id = ?", isActive, id)
}

func (r *UserRepository) get(ctx context.Context, query string, arg any) (persistence.User, error) {
	user, err := scanUser(r.pool.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		return persistence.User{}, mapError(err)
	}
	return user, nil
}

func (r *UserRepository) update(ctx context.Context, query string, args ...any) error {
	result, err := r.pool.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func scanUser(row rowScanner) (persistence.User, error) {
	var user persistence.User
	var createdAt, updatedAt string

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.PasswordHash,
		&user.Role,
		&user.IsActive,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.User{}, err
	}

	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.User{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if user.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.User{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return user, nil
}
