package application

import (
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// Role values carried by user accounts.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Principal identifies the authenticated actor for an operation.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// User is the application view of an account, without credential material.
type User struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Role      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserCredentials couples the application user with its stored password hash.
type UserCredentials struct {
	User         User
	PasswordHash string
}

// Room describes a bookable meeting room.
type Room struct {
	ID        string
	Name      string
	Capacity  int
	IsActive  bool
	CreatedAt time.Time
}

// Team is a named group that team bookings reference.
type Team struct {
	ID        string
	Name      string
	IsActive  bool
	CreatedAt time.Time
}

// Booking is a reservation of a room for a wall-clock slot on one day.
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

// PriorityRequest is an escalation raised against a conflicting booking.
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

// AdminNotification is an inbox entry surfaced to administrators.
type AdminNotification struct {
	ID        string
	Type      string
	Title     string
	Message   string
	RelatedID *string
	IsRead    bool
	CreatedAt time.Time
}

// Session represents an issued authentication token.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// BookingInput carries the caller-supplied fields of a booking.
type BookingInput struct {
	RoomID      string
	Date        string
	StartTime   string
	EndTime     string
	Purpose     string
	BookingType string
	Team        *string
}

// CheckAvailabilityParams asks whether a slot is free.
type CheckAvailabilityParams struct {
	RoomID    string
	Date      string
	StartTime string
	EndTime   string
	// ExcludeBookingID skips one booking when testing a replacement slot.
	ExcludeBookingID string
}

// AvailabilityResult reports the outcome of an availability check.
type AvailabilityResult struct {
	Available bool
	Conflicts []Booking
}

// CreateBookingParams carries a booking creation request.
type CreateBookingParams struct {
	Principal Principal
	Input     BookingInput
}

// CancelBookingParams carries a booking cancellation request.
type CancelBookingParams struct {
	Principal Principal
	BookingID string
}

// PriorityRequestInput carries the caller-supplied fields of an escalation.
type PriorityRequestInput struct {
	ConflictBookingID string
	Reason            string
}

// CreatePriorityRequestParams carries a priority request submission.
type CreatePriorityRequestParams struct {
	Principal Principal
	Input     PriorityRequestInput
}

// ApprovePriorityRequestParams carries an approval decision. NewBooking is the
// replacement the requester receives when the displaced booking is cancelled.
type ApprovePriorityRequestParams struct {
	Principal  Principal
	RequestID  string
	NewBooking BookingInput
}

// RejectPriorityRequestParams carries a rejection decision.
type RejectPriorityRequestParams struct {
	Principal Principal
	RequestID string
}

// RegisterParams carries an account registration request.
type RegisterParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// AuthenticateParams carries a login request.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult couples the issued session with its user.
type AuthenticateResult struct {
	User    User
	Session Session
}

// RoomInput carries the caller-supplied fields of a room.
type RoomInput struct {
	Name     string
	Capacity int
}

// TeamInput carries the caller-supplied fields of a team.
type TeamInput struct {
	Name string
}

func userFromPersistence(record persistence.User) User {
	return User{
		ID:        record.ID,
		Email:     record.Email,
		FirstName: record.FirstName,
		LastName:  record.LastName,
		Role:      record.Role,
		IsActive:  record.IsActive,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}

func roomFromPersistence(record persistence.Room) Room {
	return Room{
		ID:        record.ID,
		Name:      record.Name,
		Capacity:  record.Capacity,
		IsActive:  record.IsActive,
		CreatedAt: record.CreatedAt,
	}
}

func teamFromPersistence(record persistence.Team) Team {
	return Team{
		ID:        record.ID,
		Name:      record.Name,
		IsActive:  record.IsActive,
		CreatedAt: record.CreatedAt,
	}
}

func bookingFromPersistence(record persistence.Booking) Booking {
	return Booking{
		ID:          record.ID,
		UserID:      record.UserID,
		RoomID:      record.RoomID,
		Date:        record.Date,
		StartTime:   record.StartTime,
		EndTime:     record.EndTime,
		Purpose:     record.Purpose,
		BookingType: record.BookingType,
		Team:        copyStringPtr(record.Team),
		Status:      record.Status,
		CreatedAt:   record.CreatedAt,
	}
}

func bookingsFromPersistence(records []persistence.Booking) []Booking {
	bookings := make([]Booking, 0, len(records))
	for _, record := range records {
		bookings = append(bookings, bookingFromPersistence(record))
	}
	return bookings
}

func priorityRequestFromPersistence(record persistence.PriorityRequest) PriorityRequest {
	return PriorityRequest{
		ID:                record.ID,
		RequesterID:       record.RequesterID,
		ConflictBookingID: record.ConflictBookingID,
		Reason:            record.Reason,
		Status:            record.Status,
		ReviewedBy:        copyStringPtr(record.ReviewedBy),
		ReviewedAt:        copyTimePtr(record.ReviewedAt),
		CreatedAt:         record.CreatedAt,
	}
}

func notificationFromPersistence(record persistence.AdminNotification) AdminNotification {
	return AdminNotification{
		ID:        record.ID,
		Type:      record.Type,
		Title:     record.Title,
		Message:   record.Message,
		RelatedID: copyStringPtr(record.RelatedID),
		IsRead:    record.IsRead,
		CreatedAt: record.CreatedAt,
	}
}

func sessionFromPersistence(record persistence.Session) Session {
	return Session{
		ID:        record.ID,
		UserID:    record.UserID,
		Token:     record.Token,
		ExpiresAt: record.ExpiresAt,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
		RevokedAt: copyTimePtr(record.RevokedAt),
	}
}

func copyStringPtr(src *string) *string {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}

func copyTimePtr(src *time.Time) *time.Time {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}
