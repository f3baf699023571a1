package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/room-booking/internal/application"
)

type bookingService interface {
	CheckAvailability(ctx context.Context, params application.CheckAvailabilityParams) (application.AvailabilityResult, error)
	CreateBooking(ctx context.Context, params application.CreateBookingParams) (application.Booking, error)
	CancelBooking(ctx context.Context, params application.CancelBookingParams) error
	ListUserBookings(ctx context.Context, userID string) ([]application.Booking, error)
	ListRoomBookings(ctx context.Context, roomID, date string) ([]application.Booking, error)
}

type roomCatalog interface {
	Get(ctx context.Context, id string) (application.Room, error)
}

type userDirectory interface {
	Get(ctx context.Context, id string) (application.User, error)
}

type BookingHandler struct {
	service   bookingService
	rooms     roomCatalog
	users     userDirectory
	responder responder
	logger    *slog.Logger
}

func NewBookingHandler(service bookingService, rooms roomCatalog, users userDirectory, logger *slog.Logger) *BookingHandler {
	base := defaultLogger(logger)
	return &BookingHandler{
		service:   service,
		rooms:     rooms,
		users:     users,
		responder: newResponder(base),
		logger:    base,
	}
}

func (h *BookingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BookingHandler", operation, attrs...)
}

// ListBookings returns the caller's bookings, or one room's bookings for a
// day when roomId and date query parameters are both present.
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	roomID := strings.TrimSpace(r.URL.Query().Get("roomId"))
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	logger := h.log(r.Context(), "ListBookings", "user_id", principal.UserID)

	var (
		bookings []application.Booking
		err      error
	)
	if roomID != "" && date != "" {
		bookings, err = h.service.ListRoomBookings(r.Context(), roomID, date)
	} else {
		bookings, err = h.service.ListUserBookings(r.Context(), principal.UserID)
	}
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to list bookings", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	names := h.roomNames(r.Context(), bookings)
	payload := make([]bookingPayload, 0, len(bookings))
	for _, booking := range bookings {
		payload = append(payload, newBookingPayload(booking, names[booking.RoomID]))
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, payload)
}

func (h *BookingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "CheckAvailability", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode availability request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "CheckAvailability", "room_id", req.RoomID, "date", req.Date)

	result, err := h.service.CheckAvailability(r.Context(), application.CheckAvailabilityParams{
		RoomID:           strings.TrimSpace(req.RoomID),
		Date:             strings.TrimSpace(req.Date),
		StartTime:        strings.TrimSpace(req.StartTime),
		EndTime:          strings.TrimSpace(req.EndTime),
		ExcludeBookingID: strings.TrimSpace(req.ExcludeBookingID),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "availability check failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	conflicts := make([]conflictPayload, 0, len(result.Conflicts))
	names := h.roomNames(r.Context(), result.Conflicts)
	for _, conflict := range result.Conflicts {
		conflicts = append(conflicts, conflictPayload{
			BookingID:  conflict.ID,
			RoomID:     conflict.RoomID,
			RoomName:   names[conflict.RoomID],
			BookedBy:   h.bookeeName(r.Context(), conflict),
			Date:       conflict.Date,
			StartTime:  conflict.StartTime,
			EndTime:    conflict.EndTime,
			BookedType: conflict.BookingType,
		})
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, availabilityResponse{
		Available: result.Available,
		Conflicts: conflicts,
	})
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "CreateBooking", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode booking request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "CreateBooking", "user_id", principal.UserID, "room_id", req.RoomID)

	booking, err := h.service.CreateBooking(r.Context(), application.CreateBookingParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "booking creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("booking_id", booking.ID).InfoContext(r.Context(), "booking created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, newBookingPayload(booking, h.roomName(r.Context(), booking.RoomID)))
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request, bookingID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	trimmed := strings.TrimSpace(bookingID)
	if trimmed == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	logger := h.log(r.Context(), "CancelBooking", "user_id", principal.UserID, "booking_id", trimmed)

	if err := h.service.CancelBooking(r.Context(), application.CancelBookingParams{
		Principal: principal,
		BookingID: trimmed,
	}); err != nil {
		logger.ErrorContext(r.Context(), "booking cancellation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "booking cancelled")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// roomNames resolves the distinct room ids in bookings to display names.
// Lookup failures leave the name blank rather than failing the request.
func (h *BookingHandler) roomNames(ctx context.Context, bookings []application.Booking) map[string]string {
	names := make(map[string]string)
	if h.rooms == nil {
		return names
	}

	for _, booking := range bookings {
		if _, seen := names[booking.RoomID]; seen {
			continue
		}
		room, err := h.rooms.Get(ctx, booking.RoomID)
		if err != nil {
			names[booking.RoomID] = ""
			continue
		}
		names[booking.RoomID] = room.Name
	}
	return names
}

func (h *BookingHandler) roomName(ctx context.Context, roomID string) string {
	if h.rooms == nil {
		return ""
	}
	room, err := h.rooms.Get(ctx, roomID)
	if err != nil {
		return ""
	}
	return room.Name
}

// bookeeName prefers the team label for team bookings and otherwise resolves
// the booking owner's display name.
func (h *BookingHandler) bookeeName(ctx context.Context, booking application.Booking) string {
	if booking.BookingType == "team" && booking.Team != nil && *booking.Team != "" {
		return *booking.Team
	}
	if h.users == nil {
		return ""
	}
	user, err := h.users.Get(ctx, booking.UserID)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(user.LastName + " " + user.FirstName)
}

type bookingRequest struct {
	RoomID      string  `json:"roomId"`
	Date        string  `json:"date"`
	StartTime   string  `json:"startTime"`
	EndTime     string  `json:"endTime"`
	Purpose     string  `json:"purpose"`
	BookingType string  `json:"bookingType"`
	Team        *string `json:"team"`
}

func (r bookingRequest) toInput() application.BookingInput {
	return application.BookingInput{
		RoomID:      strings.TrimSpace(r.RoomID),
		Date:        strings.TrimSpace(r.Date),
		StartTime:   strings.TrimSpace(r.StartTime),
		EndTime:     strings.TrimSpace(r.EndTime),
		Purpose:     strings.TrimSpace(r.Purpose),
		BookingType: strings.TrimSpace(r.BookingType),
		Team:        r.Team,
	}
}

type availabilityRequest struct {
	RoomID           string `json:"roomId"`
	Date             string `json:"date"`
	StartTime        string `json:"startTime"`
	EndTime          string `json:"endTime"`
	ExcludeBookingID string `json:"excludeBookingId"`
}

type availabilityResponse struct {
	Available bool              `json:"available"`
	Conflicts []conflictPayload `json:"conflicts"`
}
