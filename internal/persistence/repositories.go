package persistence

import (
	"context"
	"time"
)

// UserRepository exposes account storage operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUserRole(ctx context.Context, id, role string) error
	UpdateUserStatus(ctx context.Context, id string, isActive bool) error
}

// RoomRepository exposes CRUD operations for the room catalog. Removal is a
// soft delete that clears the is_active flag.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context, includeInactive bool) ([]Room, error)
	UpdateRoom(ctx context.Context, room Room) error
	DeactivateRoom(ctx context.Context, id string) error
}

// TeamRepository exposes CRUD operations for teams, mirroring rooms.
type TeamRepository interface {
	CreateTeam(ctx context.Context, team Team) error
	ListTeams(ctx context.Context, includeInactive bool) ([]Team, error)
	UpdateTeam(ctx context.Context, team Team) error
	DeactivateTeam(ctx context.Context, id string) error
}

// BookingRepository stores room reservations.
//
// CreateBooking must be atomic with respect to the overlap invariant: the
// overlap re-check and the insert happen inside one transaction so that of
// two concurrent requests for the same slot exactly one succeeds and the
// other receives ErrConflict.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) (Booking, error)
	GetBooking(ctx context.Context, id string) (Booking, error)
	ListBookingsByRoomAndDate(ctx context.Context, roomID, date string) ([]Booking, error)
	ListBookingsByUser(ctx context.Context, userID string) ([]Booking, error)
	// CancelBooking sets status=cancelled when id and owner match, regardless
	// of the current status. It reports false when no such booking exists.
	CancelBooking(ctx context.Context, bookingID, userID string) (bool, error)
	// TransferBooking cancels the old booking (any owner) and creates the
	// replacement in a single transaction.
	TransferBooking(ctx context.Context, oldBookingID string, replacement Booking) (Booking, error)
}

// PriorityRequestRepository stores escalation requests.
type PriorityRequestRepository interface {
	CreatePriorityRequest(ctx context.Context, request PriorityRequest) (PriorityRequest, error)
	GetPriorityRequest(ctx context.Context, id string) (PriorityRequest, error)
	// ListPriorityRequests returns requests newest first. An empty status lists
	// all requests; otherwise only those in the given status.
	ListPriorityRequests(ctx context.Context, status string) ([]PriorityRequest, error)
	// ResolvePriorityRequest moves a pending request to a terminal status and,
	// when a replacement booking is supplied, performs the booking transfer in
	// the same transaction. It returns ErrConstraintViolation when the request
	// is no longer pending.
	ResolvePriorityRequest(ctx context.Context, requestID, status, reviewerID string, reviewedAt time.Time, transfer *BookingTransfer) error
}

// BookingTransfer couples a priority-request approval with the booking swap
// it must perform atomically.
type BookingTransfer struct {
	OldBookingID string
	Replacement  Booking
}

// NotificationRepository stores admin-facing notifications.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification AdminNotification) error
	ListNotifications(ctx context.Context) ([]AdminNotification, error)
	MarkNotificationRead(ctx context.Context, id string) error
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}
