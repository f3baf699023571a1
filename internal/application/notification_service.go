package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// NotificationRepository captures the persistence interactions for admin
// notifications.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification persistence.AdminNotification) error
	ListNotifications(ctx context.Context) ([]persistence.AdminNotification, error)
	MarkNotificationRead(ctx context.Context, id string) error
}

// NotificationService persists and serves the administrator inbox. It also
// acts as the NotificationSink other workflows publish into.
type NotificationService struct {
	notifications NotificationRepository
	idGenerator   func() string
	now           func() time.Time
	logger        *slog.Logger
}

// NewNotificationService wires dependencies for the notification inbox.
func NewNotificationService(notifications NotificationRepository, idGenerator func() string, now func() time.Time) *NotificationService {
	return NewNotificationServiceWithLogger(notifications, idGenerator, now, nil)
}

// NewNotificationServiceWithLogger constructs a NotificationService with a specified logger.
func NewNotificationServiceWithLogger(notifications NotificationRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *NotificationService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &NotificationService{
		notifications: notifications,
		idGenerator:   idGenerator,
		now:           now,
		logger:        defaultLogger(logger),
	}
}

// Publish stores a notification in the inbox. Missing IDs and timestamps are
// filled in so workflow callers only describe the event.
func (s *NotificationService) Publish(ctx context.Context, notification AdminNotification) error {
	if s == nil {
		return fmt.Errorf("NotificationService is nil")
	}

	if notification.ID == "" {
		notification.ID = s.idGenerator()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = s.now()
	}

	record := persistence.AdminNotification{
		ID:        notification.ID,
		Type:      notification.Type,
		Title:     notification.Title,
		Message:   notification.Message,
		RelatedID: copyStringPtr(notification.RelatedID),
		IsRead:    false,
		CreatedAt: notification.CreatedAt,
	}
	return s.notifications.CreateNotification(ctx, record)
}

// List returns the full inbox for an administrator, newest first.
func (s *NotificationService) List(ctx context.Context, principal Principal) ([]AdminNotification, error) {
	if s == nil {
		return nil, fmt.Errorf("NotificationService is nil")
	}
	if !principal.IsAdmin {
		return nil, ErrUnauthorized
	}

	records, err := s.notifications.ListNotifications(ctx)
	if err != nil {
		return nil, err
	}

	notifications := make([]AdminNotification, 0, len(records))
	for _, record := range records {
		notifications = append(notifications, notificationFromPersistence(record))
	}
	return notifications, nil
}

// MarkRead flags a notification as read. Read state is the only mutable field
// of a notification.
func (s *NotificationService) MarkRead(ctx context.Context, principal Principal, id string) (err error) {
	if s == nil {
		return fmt.Errorf("NotificationService is nil")
	}

	logger := s.loggerWith(ctx, "MarkRead", "notification_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "marking notification read failed", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if !principal.IsAdmin {
		return ErrUnauthorized
	}

	err = mapBookingRepoError(s.notifications.MarkNotificationRead(ctx, id))
	return
}

func (s *NotificationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "NotificationService", operation, attrs...)
}
