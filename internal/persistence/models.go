package persistence

import "time"

// User represents an employee account in the booking domain.
type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Room represents a bookable meeting room catalog entry.
type Room struct {
	ID        string
	Name      string
	Capacity  int
	IsActive  bool
	CreatedAt time.Time
}

// Team represents an organizational team selectable on team bookings.
type Team struct {
	ID        string
	Name      string
	IsActive  bool
	CreatedAt time.Time
}

// Booking status values. A booking is created confirmed and moves to
// cancelled through an explicit cancel or a transfer-on-approval.
const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusPending   = "pending"
	BookingStatusCancelled = "cancelled"
)

// Booking type values.
const (
	BookingTypePersonal = "personal"
	BookingTypeTeam     = "team"
)

// Booking represents a room reservation for a single day and time range.
// Date is a "YYYY-MM-DD" calendar day; StartTime and EndTime are "HH:MM"
// times of day with minute precision, interpreted as a half-open interval.
type Booking struct {
	ID          string
	UserID      string
	RoomID      string
	Date        string
	StartTime   string
	EndTime     string
	Purpose     string
	BookingType string
	Team        *string
	Status      string
	CreatedAt   time.Time
}

// PriorityRequest status values. Once approved or rejected the status is
// terminal and immutable.
const (
	PriorityStatusPending  = "pending"
	PriorityStatusApproved = "approved"
	PriorityStatusRejected = "rejected"
)

// PriorityRequest represents an escalation asking an administrator to
// reassign a contested slot from its current holder to the requester.
type PriorityRequest struct {
	ID                string
	RequesterID       string
	ConflictBookingID string
	Reason            string
	Status            string
	ReviewedBy        *string
	ReviewedAt        *time.Time
	CreatedAt         time.Time
}

// Admin notification types.
const (
	NotificationTypePriorityRequest = "priority_request"
	NotificationTypeNewUser         = "new_user"
)

// AdminNotification is an append-only log entry surfaced to administrators.
// IsRead is the only mutable field; notifications are never deleted.
type AdminNotification struct {
	ID        string
	Type      string
	Title     string
	Message   string
	RelatedID *string
	IsRead    bool
	CreatedAt time.Time
}

// Session represents an authentication session persisted for a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}
