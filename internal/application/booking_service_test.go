package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

type stubBookingRepository struct {
	bookings    map[string]persistence.Booking
	createErr   error
	cancelCalls int
}

func newStubBookingRepository(bookings ...persistence.Booking) *stubBookingRepository {
	repo := &stubBookingRepository{bookings: make(map[string]persistence.Booking)}
	for _, booking := range bookings {
		repo.bookings[booking.ID] = booking
	}
	return repo
}

func (r *stubBookingRepository) CreateBooking(ctx context.Context, booking persistence.Booking) (persistence.Booking, error) {
	if r.createErr != nil {
		return persistence.Booking{}, r.createErr
	}
	r.bookings[booking.ID] = booking
	return booking, nil
}

func (r *stubBookingRepository) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	booking, ok := r.bookings[id]
	if !ok {
		return persistence.Booking{}, persistence.ErrNotFound
	}
	return booking, nil
}

func (r *stubBookingRepository) ListBookingsByRoomAndDate(ctx context.Context, roomID, date string) ([]persistence.Booking, error) {
	var matched []persistence.Booking
	for _, booking := range r.bookings {
		if booking.RoomID == roomID && booking.Date == date {
			matched = append(matched, booking)
		}
	}
	return matched, nil
}

func (r *stubBookingRepository) ListBookingsByUser(ctx context.Context, userID string) ([]persistence.Booking, error) {
	var matched []persistence.Booking
	for _, booking := range r.bookings {
		if booking.UserID == userID {
			matched = append(matched, booking)
		}
	}
	return matched, nil
}

func (r *stubBookingRepository) CancelBooking(ctx context.Context, bookingID, userID string) (bool, error) {
	r.cancelCalls++
	booking, ok := r.bookings[bookingID]
	if !ok || booking.UserID != userID {
		return false, nil
	}
	booking.Status = persistence.BookingStatusCancelled
	r.bookings[bookingID] = booking
	return true, nil
}

type stubRoomCatalog struct {
	rooms map[string]persistence.Room
}

func newStubRoomCatalog(rooms ...persistence.Room) *stubRoomCatalog {
	catalog := &stubRoomCatalog{rooms: make(map[string]persistence.Room)}
	for _, room := range rooms {
		catalog.rooms[room.ID] = room
	}
	return catalog
}

func (c *stubRoomCatalog) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	room, ok := c.rooms[id]
	if !ok {
		return persistence.Room{}, persistence.ErrNotFound
	}
	return room, nil
}

func fixedClock() func() time.Time {
	instant := time.Date(2024, time.June, 10, 8, 0, 0, 0, time.UTC)
	return func() time.Time { return instant }
}

func sequentialIDs(prefix string) func() string {
	counter := 0
	return func() string {
		counter++
		return fmt.Sprintf("%s-%d", prefix, counter)
	}
}

func activeRoom(id string) persistence.Room {
	return persistence.Room{ID: id, Name: "Room " + id, Capacity: 8, IsActive: true}
}

func storedBooking(id, userID, roomID, start, end string) persistence.Booking {
	return persistence.Booking{
		ID:          id,
		UserID:      userID,
		RoomID:      roomID,
		Date:        "2024-06-10",
		StartTime:   start,
		EndTime:     end,
		Purpose:     "Standup",
		BookingType: persistence.BookingTypePersonal,
		Status:      persistence.BookingStatusConfirmed,
	}
}

func TestBookingService_CheckAvailability(t *testing.T) {
	repo := newStubBookingRepository(
		storedBooking("booking1", "user1", "room1", "09:00", "10:00"),
		storedBooking("booking2", "user1", "room1", "13:00", "14:00"),
	)
	cancelled := storedBooking("booking3", "user1", "room1", "09:00", "12:00")
	cancelled.Status = persistence.BookingStatusCancelled
	repo.bookings["booking3"] = cancelled

	service := NewBookingService(repo, newStubRoomCatalog(activeRoom("room1")), sequentialIDs("booking"), fixedClock())
	ctx := context.Background()

	t.Run("free slot", func(t *testing.T) {
		result, err := service.CheckAvailability(ctx, CheckAvailabilityParams{
			RoomID: "room1", Date: "2024-06-10", StartTime: "10:00", EndTime: "11:00",
		})
		if err != nil {
			t.Fatalf("CheckAvailability failed: %v", err)
		}
		if !result.Available || len(result.Conflicts) != 0 {
			t.Fatalf("Expected free slot, got %+v", result)
		}
	})

	t.Run("occupied slot reports conflict", func(t *testing.T) {
		result, err := service.CheckAvailability(ctx, CheckAvailabilityParams{
			RoomID: "room1", Date: "2024-06-10", StartTime: "09:30", EndTime: "10:30",
		})
		if err != nil {
			t.Fatalf("CheckAvailability failed: %v", err)
		}
		if result.Available {
			t.Fatal("Expected slot to be unavailable")
		}
		if len(result.Conflicts) != 1 || result.Conflicts[0].ID != "booking1" {
			t.Fatalf("Expected conflict with booking1, got %+v", result.Conflicts)
		}
	})

	t.Run("cancelled bookings do not block", func(t *testing.T) {
		result, err := service.CheckAvailability(ctx, CheckAvailabilityParams{
			RoomID: "room1", Date: "2024-06-10", StartTime: "10:30", EndTime: "11:30",
		})
		if err != nil {
			t.Fatalf("CheckAvailability failed: %v", err)
		}
		if !result.Available {
			t.Fatal("Expected cancelled overlap to be ignored")
		}
	})

	t.Run("exclusion skips a booking", func(t *testing.T) {
		result, err := service.CheckAvailability(ctx, CheckAvailabilityParams{
			RoomID: "room1", Date: "2024-06-10", StartTime: "09:00", EndTime: "10:00",
			ExcludeBookingID: "booking1",
		})
		if err != nil {
			t.Fatalf("CheckAvailability failed: %v", err)
		}
		if !result.Available {
			t.Fatal("Expected excluded booking to be skipped")
		}
	})

	t.Run("malformed input", func(t *testing.T) {
		_, err := service.CheckAvailability(ctx, CheckAvailabilityParams{
			RoomID: "room1", Date: "June 10", StartTime: "9am", EndTime: "10am",
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("Expected ValidationError, got %v", err)
		}
		for _, field := range []string{"date", "startTime", "endTime"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Errorf("Expected field error for %q, got %v", field, vErr.FieldErrors)
			}
		}
	})
}

func TestBookingService_CreateBooking(t *testing.T) {
	ctx := context.Background()
	principal := Principal{UserID: "user1"}

	validInput := BookingInput{
		RoomID:    "room1",
		Date:      "2024-06-10",
		StartTime: "09:00",
		EndTime:   "10:00",
		Purpose:   "Planning",
	}

	t.Run("success", func(t *testing.T) {
		repo := newStubBookingRepository()
		service := NewBookingService(repo, newStubRoomCatalog(activeRoom("room1")), sequentialIDs("booking"), fixedClock())

		booking, err := service.CreateBooking(ctx, CreateBookingParams{Principal: principal, Input: validInput})
		if err != nil {
			t.Fatalf("CreateBooking failed: %v", err)
		}
		if booking.Status != persistence.BookingStatusConfirmed {
			t.Errorf("Expected confirmed status, got '%s'", booking.Status)
		}
		if booking.BookingType != persistence.BookingTypePersonal {
			t.Errorf("Expected default personal type, got '%s'", booking.BookingType)
		}
		if booking.UserID != "user1" {
			t.Errorf("Expected owner 'user1', got '%s'", booking.UserID)
		}
	})

	t.Run("slot conflict maps to ErrConflict", func(t *testing.T) {
		repo := newStubBookingRepository()
		repo.createErr = persistence.ErrConflict
		service := NewBookingService(repo, newStubRoomCatalog(activeRoom("room1")), sequentialIDs("booking"), fixedClock())

		_, err := service.CreateBooking(ctx, CreateBookingParams{Principal: principal, Input: validInput})
		if !errors.Is(err, ErrConflict) {
			t.Fatalf("Expected ErrConflict, got %v", err)
		}
	})

	t.Run("unknown room", func(t *testing.T) {
		repo := newStubBookingRepository()
		service := NewBookingService(repo, newStubRoomCatalog(), sequentialIDs("booking"), fixedClock())

		_, err := service.CreateBooking(ctx, CreateBookingParams{Principal: principal, Input: validInput})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("Expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["roomId"]; !ok {
			t.Errorf("Expected roomId field error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("deactivated room", func(t *testing.T) {
		room := activeRoom("room1")
		room.IsActive = false
		repo := newStubBookingRepository()
		service := NewBookingService(repo, newStubRoomCatalog(room), sequentialIDs("booking"), fixedClock())

		_, err := service.CreateBooking(ctx, CreateBookingParams{Principal: principal, Input: validInput})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("Expected ValidationError, got %v", err)
		}
	})

	t.Run("team booking requires team", func(t *testing.T) {
		repo := newStubBookingRepository()
		service := NewBookingService(repo, newStubRoomCatalog(activeRoom("room1")), sequentialIDs("booking"), fixedClock())

		input := validInput
		input.BookingType = persistence.BookingTypeTeam
		_, err := service.CreateBooking(ctx, CreateBookingParams{Principal: principal, Input: input})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("Expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["team"]; !ok {
			t.Errorf("Expected team field error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("inverted slot", func(t *testing.T) {
		repo := newStubBookingRepository()
		service := NewBookingService(repo, newStubRoomCatalog(activeRoom("room1")), sequentialIDs("booking"), fixedClock())

		input := validInput
		input.StartTime = "10:00"
		input.EndTime = "09:00"
		_, err := service.CreateBooking(ctx, CreateBookingParams{Principal: principal, Input: input})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("Expected ValidationError, got %v", err)
		}
	})

	t.Run("unauthenticated", func(t *testing.T) {
		repo := newStubBookingRepository()
		service := NewBookingService(repo, newStubRoomCatalog(activeRoom("room1")), sequentialIDs("booking"), fixedClock())

		_, err := service.CreateBooking(ctx, CreateBookingParams{Input: validInput})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("Expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestBookingService_CancelBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("owner cancels", func(t *testing.T) {
		repo := newStubBookingRepository(storedBooking("booking1", "user1", "room1", "09:00", "10:00"))
		service := NewBookingService(repo, nil, sequentialIDs("booking"), fixedClock())

		err := service.CancelBooking(ctx, CancelBookingParams{
			Principal: Principal{UserID: "user1"},
			BookingID: "booking1",
		})
		if err != nil {
			t.Fatalf("CancelBooking failed: %v", err)
		}
		if repo.bookings["booking1"].Status != persistence.BookingStatusCancelled {
			t.Error("Expected booking to be cancelled")
		}
	})

	t.Run("repeat cancel stays successful", func(t *testing.T) {
		repo := newStubBookingRepository(storedBooking("booking1", "user1", "room1", "09:00", "10:00"))
		service := NewBookingService(repo, nil, sequentialIDs("booking"), fixedClock())
		params := CancelBookingParams{Principal: Principal{UserID: "user1"}, BookingID: "booking1"}

		if err := service.CancelBooking(ctx, params); err != nil {
			t.Fatalf("CancelBooking failed: %v", err)
		}
		if err := service.CancelBooking(ctx, params); err != nil {
			t.Fatalf("Repeated CancelBooking failed: %v", err)
		}
	})

	t.Run("foreign booking looks missing", func(t *testing.T) {
		repo := newStubBookingRepository(storedBooking("booking1", "user1", "room1", "09:00", "10:00"))
		service := NewBookingService(repo, nil, sequentialIDs("booking"), fixedClock())

		err := service.CancelBooking(ctx, CancelBookingParams{
			Principal: Principal{UserID: "user2"},
			BookingID: "booking1",
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("unknown booking", func(t *testing.T) {
		repo := newStubBookingRepository()
		service := NewBookingService(repo, nil, sequentialIDs("booking"), fixedClock())

		err := service.CancelBooking(ctx, CancelBookingParams{
			Principal: Principal{UserID: "user1"},
			BookingID: "missing",
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("Expected ErrNotFound, got %v", err)
		}
	})
}
