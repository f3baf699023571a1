package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/room-booking/internal/persistence"
)

// NotificationRepository implements persistence.NotificationRepository using
// SQLite.
type NotificationRepository struct {
	pool *ConnectionPool
}

// NewNotificationRepository creates a new SQLite notification repository.
func NewNotificationRepository(pool *ConnectionPool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// CreateNotification inserts an admin notification.
func (r *NotificationRepository) CreateNotification(ctx context.Context, notification persistence.AdminNotification) error {
	if notification.ID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO admin_notifications (id, type, title, message, related_id, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		notification.ID,
		notification.Type,
		notification.Title,
		notification.Message,
		nullableString(notification.RelatedID),
		notification.IsRead,
		formatTime(notification.CreatedAt),
	)
	return mapError(err)
}

// ListNotifications returns every notification, newest first.
func (r *NotificationRepository) ListNotifications(ctx context.Context) ([]persistence.AdminNotification, error) {
	rows, err := r.pool.db.QueryContext(ctx,
		"SELECT id, type, title, message, related_id, is_read, created_at FROM admin_notifications ORDER BY created_at DESC, id ASC")
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var notifications []persistence.AdminNotification
	for rows.Next() {
		var notification persistence.AdminNotification
		var relatedID sql.NullString
		var createdAt string
		err := rows.Scan(
			&notification.ID,
			&notification.Type,
			&notification.Title,
			&notification.Message,
			&relatedID,
			&notification.IsRead,
			&createdAt,
		)
		if err != nil {
			return nil, mapError(err)
		}
		notification.RelatedID = stringPointer(relatedID)
		if notification.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		notifications = append(notifications, notification)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return notifications, nil
}

// MarkNotificationRead flags the notification as read.
func (r *NotificationRepository) MarkNotificationRead(ctx context.Context, id string) error {
	result, err := r.pool.db.ExecContext(ctx,
		"UPDATE admin_notifications SET is_read = 1 WHERE id = ?", id)
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
