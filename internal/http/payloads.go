package http

import (
	"time"

	"github.com/example/room-booking/internal/application"
)

type userPayload struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
	IsActive  bool   `json:"isActive"`
	CreatedAt string `json:"createdAt"`
}

func newUserPayload(user application.User) userPayload {
	return userPayload{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: formatTimestamp(user.CreatedAt),
	}
}

type roomPayload struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Capacity  int    `json:"capacity"`
	IsActive  bool   `json:"isActive"`
	CreatedAt string `json:"createdAt"`
}

func newRoomPayload(room application.Room) roomPayload {
	return roomPayload{
		ID:        room.ID,
		Name:      room.Name,
		Capacity:  room.Capacity,
		IsActive:  room.IsActive,
		CreatedAt: formatTimestamp(room.CreatedAt),
	}
}

type teamPayload struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsActive  bool   `json:"isActive"`
	CreatedAt string `json:"createdAt"`
}

func newTeamPayload(team application.Team) teamPayload {
	return teamPayload{
		ID:        team.ID,
		Name:      team.Name,
		IsActive:  team.IsActive,
		CreatedAt: formatTimestamp(team.CreatedAt),
	}
}

type bookingPayload struct {
	ID          string  `json:"id"`
	UserID      string  `json:"userId"`
	RoomID      string  `json:"roomId"`
	RoomName    string  `json:"roomName,omitempty"`
	Date        string  `json:"date"`
	StartTime   string  `json:"startTime"`
	EndTime     string  `json:"endTime"`
	Purpose     string  `json:"purpose"`
	BookingType string  `json:"bookingType"`
	Team        *string `json:"team,omitempty"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"createdAt"`
}

func newBookingPayload(booking application.Booking, roomName string) bookingPayload {
	return bookingPayload{
		ID:          booking.ID,
		UserID:      booking.UserID,
		RoomID:      booking.RoomID,
		RoomName:    roomName,
		Date:        booking.Date,
		StartTime:   booking.StartTime,
		EndTime:     booking.EndTime,
		Purpose:     booking.Purpose,
		BookingType: booking.BookingType,
		Team:        booking.Team,
		Status:      booking.Status,
		CreatedAt:   formatTimestamp(booking.CreatedAt),
	}
}

// conflictPayload describes an existing booking that blocks a requested slot.
// The bookee is identified by display name so callers can reach out directly.
type conflictPayload struct {
	BookingID  string `json:"bookingId"`
	RoomID     string `json:"roomId"`
	RoomName   string `json:"roomName,omitempty"`
	BookedBy   string `json:"bookedBy,omitempty"`
	Date       string `json:"date"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	BookedType string `json:"bookingType"`
}

type priorityRequestPayload struct {
	ID                string  `json:"id"`
	RequesterID       string  `json:"requesterId"`
	ConflictBookingID string  `json:"conflictBookingId"`
	Reason            string  `json:"reason"`
	Status            string  `json:"status"`
	ReviewedBy        *string `json:"reviewedBy,omitempty"`
	ReviewedAt        *string `json:"reviewedAt,omitempty"`
	CreatedAt         string  `json:"createdAt"`
}

func newPriorityRequestPayload(request application.PriorityRequest) priorityRequestPayload {
	payload := priorityRequestPayload{
		ID:                request.ID,
		RequesterID:       request.RequesterID,
		ConflictBookingID: request.ConflictBookingID,
		Reason:            request.Reason,
		Status:            request.Status,
		ReviewedBy:        request.ReviewedBy,
		CreatedAt:         formatTimestamp(request.CreatedAt),
	}
	if request.ReviewedAt != nil {
		reviewed := formatTimestamp(*request.ReviewedAt)
		payload.ReviewedAt = &reviewed
	}
	return payload
}

type notificationPayload struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Title     string  `json:"title"`
	Message   string  `json:"message"`
	RelatedID *string `json:"relatedId,omitempty"`
	IsRead    bool    `json:"isRead"`
	CreatedAt string  `json:"createdAt"`
}

func newNotificationPayload(notification application.AdminNotification) notificationPayload {
	return notificationPayload{
		ID:        notification.ID,
		Type:      notification.Type,
		Title:     notification.Title,
		Message:   notification.Message,
		RelatedID: notification.RelatedID,
		IsRead:    notification.IsRead,
		CreatedAt: formatTimestamp(notification.CreatedAt),
	}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
