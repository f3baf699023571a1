package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/timeslot"
)

// BookingRepository captures the persistence interactions needed by the booking service.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking persistence.Booking) (persistence.Booking, error)
	GetBooking(ctx context.Context, id string) (persistence.Booking, error)
	ListBookingsByRoomAndDate(ctx context.Context, roomID, date string) ([]persistence.Booking, error)
	ListBookingsByUser(ctx context.Context, userID string) ([]persistence.Booking, error)
	CancelBooking(ctx context.Context, bookingID, userID string) (bool, error)
}

// RoomCatalog exposes the room lookups the booking service depends on.
type RoomCatalog interface {
	GetRoom(ctx context.Context, id string) (persistence.Room, error)
}

// BookingService orchestrates validation, conflict detection and persistence
// for booking operations.
type BookingService struct {
	bookings    BookingRepository
	rooms       RoomCatalog
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewBookingService wires dependencies for booking operations.
func NewBookingService(bookings BookingRepository, rooms RoomCatalog, idGenerator func() string, now func() time.Time) *BookingService {
	return NewBookingServiceWithLogger(bookings, rooms, idGenerator, now, nil)
}

// NewBookingServiceWithLogger constructs a BookingService with a specified logger.
func NewBookingServiceWithLogger(bookings BookingRepository, rooms RoomCatalog, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BookingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		bookings:    bookings,
		rooms:       rooms,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// CheckAvailability reports whether the requested slot is free of confirmed
// bookings and returns the conflicting bookings when it is not.
func (s *BookingService) CheckAvailability(ctx context.Context, params CheckAvailabilityParams) (AvailabilityResult, error) {
	if s == nil {
		return AvailabilityResult{}, fmt.Errorf("BookingService is nil")
	}

	vErr := &ValidationError{}
	validateSlot(params.RoomID, params.Date, params.StartTime, params.EndTime, vErr)
	if vErr.HasErrors() {
		return AvailabilityResult{}, vErr
	}

	conflicts, err := s.confirmedConflicts(ctx, params.RoomID, params.Date, params.StartTime, params.EndTime, params.ExcludeBookingID)
	if err != nil {
		return AvailabilityResult{}, err
	}

	return AvailabilityResult{
		Available: len(conflicts) == 0,
		Conflicts: bookingsFromPersistence(conflicts),
	}, nil
}

// CreateBooking validates the request and persists a confirmed booking. A
// slot lost to an existing or concurrent booking yields ErrConflict.
func (s *BookingService) CreateBooking(ctx context.Context, params CreateBookingParams) (booking Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	input := params.Input

	logger := s.loggerWith(ctx, "CreateBooking",
		"user_id", params.Principal.UserID,
		"room_id", input.RoomID,
		"date", input.Date,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "booking creation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("booking_id", booking.ID).InfoContext(ctx, "booking created")
	}()

	if params.Principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	validateSlot(input.RoomID, input.Date, input.StartTime, input.EndTime, vErr)
	validateBookingDetails(&input, vErr)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if err = s.ensureRoomBookable(ctx, input.RoomID); err != nil {
		return
	}

	record := persistence.Booking{
		ID:          s.idGenerator(),
		UserID:      params.Principal.UserID,
		RoomID:      input.RoomID,
		Date:        input.Date,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		Purpose:     strings.TrimSpace(input.Purpose),
		BookingType: input.BookingType,
		Team:        copyStringPtr(input.Team),
		Status:      persistence.BookingStatusConfirmed,
		CreatedAt:   s.now(),
	}

	persisted, createErr := s.bookings.CreateBooking(ctx, record)
	if createErr != nil {
		err = mapBookingRepoError(createErr)
		return
	}

	booking = bookingFromPersistence(persisted)
	return
}

// CancelBooking marks the caller's booking cancelled. The operation is
// idempotent: repeating it for an already cancelled booking still succeeds.
// A booking that does not exist or belongs to someone else yields
// ErrNotFound; ownership failures are indistinguishable from missing
// bookings on purpose.
func (s *BookingService) CancelBooking(ctx context.Context, params CancelBookingParams) (err error) {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}

	logger := s.loggerWith(ctx, "CancelBooking",
		"user_id", params.Principal.UserID,
		"booking_id", params.BookingID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "booking cancellation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking cancelled")
	}()

	if params.Principal.UserID == "" {
		return ErrUnauthorized
	}
	if strings.TrimSpace(params.BookingID) == "" {
		vErr := &ValidationError{}
		vErr.add("bookingId", "booking id is required")
		return vErr
	}

	cancelled, cancelErr := s.bookings.CancelBooking(ctx, params.BookingID, params.Principal.UserID)
	if cancelErr != nil {
		return mapBookingRepoError(cancelErr)
	}
	if !cancelled {
		return ErrNotFound
	}
	return nil
}

// GetBooking retrieves a booking by ID.
func (s *BookingService) GetBooking(ctx context.Context, id string) (Booking, error) {
	if s == nil {
		return Booking{}, fmt.Errorf("BookingService is nil")
	}

	record, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		return Booking{}, mapBookingRepoError(err)
	}
	return bookingFromPersistence(record), nil
}

// ListUserBookings returns the bookings owned by the given user.
func (s *BookingService) ListUserBookings(ctx context.Context, userID string) ([]Booking, error) {
	if s == nil {
		return nil, fmt.Errorf("BookingService is nil")
	}

	records, err := s.bookings.ListBookingsByUser(ctx, userID)
	if err != nil {
		return nil, mapBookingRepoError(err)
	}
	return bookingsFromPersistence(records), nil
}

// ListRoomBookings returns the bookings for a room on one day.
func (s *BookingService) ListRoomBookings(ctx context.Context, roomID, date string) ([]Booking, error) {
	if s == nil {
		return nil, fmt.Errorf("BookingService is nil")
	}

	vErr := &ValidationError{}
	validateSlotDay(roomID, date, vErr)
	if vErr.HasErrors() {
		return nil, vErr
	}

	records, err := s.bookings.ListBookingsByRoomAndDate(ctx, roomID, date)
	if err != nil {
		return nil, mapBookingRepoError(err)
	}
	return bookingsFromPersistence(records), nil
}

func (s *BookingService) ensureRoomBookable(ctx context.Context, roomID string) error {
	if s.rooms == nil {
		return nil
	}
	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			vErr := &ValidationError{}
			vErr.add("roomId", "room does not exist")
			return vErr
		}
		return err
	}
	if !room.IsActive {
		vErr := &ValidationError{}
		vErr.add("roomId", "room is not available")
		return vErr
	}
	return nil
}

func (s *BookingService) confirmedConflicts(ctx context.Context, roomID, date, startTime, endTime, excludeID string) ([]persistence.Booking, error) {
	records, err := s.bookings.ListBookingsByRoomAndDate(ctx, roomID, date)
	if err != nil {
		return nil, mapBookingRepoError(err)
	}

	var conflicts []persistence.Booking
	for _, record := range records {
		if record.Status != persistence.BookingStatusConfirmed {
			continue
		}
		if excludeID != "" && record.ID == excludeID {
			continue
		}
		overlaps, err := timeslot.ClockOverlaps(startTime, endTime, record.StartTime, record.EndTime)
		if err != nil {
			return nil, fmt.Errorf("stored booking %s has malformed times: %w", record.ID, err)
		}
		if overlaps {
			conflicts = append(conflicts, record)
		}
	}
	return conflicts, nil
}

func validateSlotDay(roomID, date string, vErr *ValidationError) {
	if strings.TrimSpace(roomID) == "" {
		vErr.add("roomId", "room id is required")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		vErr.add("date", "date must use the YYYY-MM-DD format")
	}
}

func validateSlot(roomID, date, startTime, endTime string, vErr *ValidationError) {
	validateSlotDay(roomID, date, vErr)

	startMinutes, startErr := timeslot.ParseClock(startTime)
	if startErr != nil {
		vErr.add("startTime", "start time must use the HH:MM format")
	}
	endMinutes, endErr := timeslot.ParseClock(endTime)
	if endErr != nil {
		vErr.add("endTime", "end time must use the HH:MM format")
	}
	if startErr == nil && endErr == nil && startMinutes >= endMinutes {
		vErr.add("endTime", "end time must be after start time")
	}
}

func validateBookingDetails(input *BookingInput, vErr *ValidationError) {
	if strings.TrimSpace(input.Purpose) == "" {
		vErr.add("purpose", "purpose is required")
	}
	switch input.BookingType {
	case "":
		input.BookingType = persistence.BookingTypePersonal
	case persistence.BookingTypePersonal:
	case persistence.BookingTypeTeam:
		if input.Team == nil || strings.TrimSpace(*input.Team) == "" {
			vErr.add("team", "team is required for team bookings")
		}
	default:
		vErr.add("bookingType", "booking type must be personal or team")
	}
}

func mapBookingRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrConflict):
		return ErrConflict
	case errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	default:
		return err
	}
}
