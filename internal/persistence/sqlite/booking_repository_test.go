package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

func setupStoreTest(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate store: %v", err)
	}
	return store
}

func seedUser(t *testing.T, store *Store, id, email string) {
	t.Helper()

	now := time.Now().UTC()
	err := store.Users.CreateUser(context.Background(), persistence.User{
		ID:           id,
		Email:        email,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "hash",
		Role:         "user",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("Failed to seed user %s: %v", id, err)
	}
}

func seedRoom(t *testing.T, store *Store, id, name string) {
	t.Helper()

	err := store.Rooms.CreateRoom(context.Background(), persistence.Room{
		ID:        id,
		Name:      name,
		Capacity:  8,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Failed to seed room %s: %v", id, err)
	}
}

func confirmedBooking(id, userID, roomID, startTime, endTime string) persistence.Booking {
	return persistence.Booking{
		ID:          id,
		UserID:      userID,
		RoomID:      roomID,
		Date:        "2024-06-10",
		StartTime:   startTime,
		EndTime:     endTime,
		Purpose:     "Planning",
		BookingType: persistence.BookingTypePersonal,
		Status:      persistence.BookingStatusConfirmed,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestBookingRepository_CreateBooking(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	seedUser(t, store, "user1", "user1@example.com")
	seedRoom(t, store, "room1", "Fuji")

	created, err := store.Bookings.CreateBooking(ctx, confirmedBooking("booking1", "user1", "room1", "09:00", "10:00"))
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}
	if created.ID != "booking1" {
		t.Errorf("Expected ID 'booking1', got '%s'", created.ID)
	}
	if created.Status != persistence.BookingStatusConfirmed {
		t.Errorf("Expected status confirmed, got '%s'", created.Status)
	}

	retrieved, err := store.Bookings.GetBooking(ctx, "booking1")
	if err != nil {
		t.Fatalf("GetBooking failed: %v", err)
	}
	if retrieved.StartTime != "09:00" || retrieved.EndTime != "10:00" {
		t.Errorf("Expected slot 09:00-10:00, got %s-%s", retrieved.StartTime, retrieved.EndTime)
	}
}

func TestBookingRepository_CreateBooking_Conflict(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	seedUser(t, store, "user1", "user1@example.com")
	seedUser(t, store, "user2", "user2@example.com")
	seedRoom(t, store, "room1", "Fuji")

	if _, err := store.Bookings.CreateBooking(ctx, confirmedBooking("booking1", "user1", "room1", "09:00", "10:00")); err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	cases := []struct {
		name       string
		start, end string
	}{
		{name: "identical slot", start: "09:00", end: "10:00"},
		{name: "overlapping tail", start: "09:30", end: "10:30"},
		{name: "overlapping head", start: "08:30", end: "09:30"},
		{name: "enclosing slot", start: "08:00", end: "11:00"},
		{name: "enclosed slot", start: "09:15", end: "09:45"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := store.Bookings.CreateBooking(ctx, confirmedBooking("booking-"+tc.start, "user2", "room1", tc.start, tc.end))
			if !errors.Is(err, persistence.ErrConflict) {
				t.Fatalf("Expected ErrConflict, got %v", err)
			}
		})
	}
}

func TestBookingRepository_CreateBooking_BackToBack(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	seedUser(t, store, "user1", "user1@example.com")
	seedRoom(t, store, "room1", "Fuji")

	if _, err := store.Bookings.CreateBooking(ctx, confirmedBooking("booking1", "user1", "room1", "09:00", "10:00")); err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}
	if _, err := store.Bookings.CreateBooking(ctx, confirmedBooking("booking2", "user1", "room1", "10:00", "11:00")); err != nil {
		t.Fatalf("Back-to-back booking should succeed, got %v", err)
	}
	if _, err := store.Bookings.CreateBooking(ctx, confirmedBooking("booking3", "user1", "room1", "08:00", "09:00")); err != nil {
		t.Fatalf("Preceding adjacent booking should succeed, got %v", err)
	}
}

func TestBookingRepository_CreateBooking_IgnoresCancelled(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	seedUser(t, store, "user1", "user1@example.com")
	seedRoom(t, store, "room1", "Fuji")

	if _, err := store.Bookings.CreateBooking(ctx, confirmedBooking("booking1", "user1", "room1", "09:00", "10:00")); err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}
	if _, err := store.Bookings.CancelBooking(ctx, "booking1", "user1"); err != nil {
		t.Fatalf("CancelBooking failed: %v", err)
	}

	if _, err := store.Bookings.CreateBooking(ctx, confirmedBooking("booking2", "user1", "room1", "09:00", "10:00")); err != nil {
		t.Fatalf("Cancelled booking should not block the slot, got %v", err)
	}
}

func TestBookingRepository_CreateBooking_ConcurrentSameSlot(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	seedUser(t, store, "user1", "user1@example.com")
	seedUser(t, store, "user2", "user2@example.com")
	seedRoom(t, store, "room1", "Fuji")

	bookings := []persistence.Booking{
		confirmedBooking("booking1", "user1", "room1", "14:00", "15:00"),
		confirmedBooking("booking2", "user2", "room1", "14:00", "15:00"),
	}

	var wg sync.WaitGroup
	results := make([]error, len(bookings))
	for i, booking := range bookings {
		i, booking := i, booking
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[i] = store.Bookings.CreateBooking(ctx, booking)
		}()
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, persistence.ErrConflict):
			conflicts++
		default:
			t.Fatalf("Unexpected error: %v", err)
		}
	}
	if successes != 1 || conflicts != 1 {
		t.Fatalf("Expected exactly one success and one conflict, got %d successes and %d conflicts", successes, conflicts)
	}
}

func TestBookingRepository_CancelBooking(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	seedUser(t, store, "user1", "user1@example.com")
	seedRoom(t, store, "room1", "Fuji")

	if _, err := store.Bookings.CreateBooking(ctx, confirmedBooking("booking1", "user1", "room1", "09:00", "10:00")); err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	t.Run("owner cancels", func(t *testing.T) {
		cancelled, err := store.Bookings.CancelBooking(ctx, "booking1", "user1")
		if err != nil {
			t.Fatalf("CancelBooking failed: %v", err)
		}
		if !cancelled {
			t.Fatal("Expected cancellation to report success")
		}

		booking, err := store.Bookings.GetBooking(ctx, "booking1")
		if err != nil {
			t.Fatalf("GetBooking failed: %v", err)
		}
		if booking.Status != persistence.BookingStatusCancelled {
			t.Errorf("Expected status cancelled, got '%s'", booking.Status)
		}
	})

	t.Run("repeat cancel is idempotent", func(t *testing.T) {
		cancelled, err := store.Bookings.CancelBooking(ctx, "booking1", "user1")
		if err != nil {
			t.Fatalf("CancelBooking failed: %v", err)
		}
		if !cancelled {
			t.Fatal("Expected repeated cancellation to still report success")
		}
	})

	t.Run("wrong owner", func(t *testing.T) {
		cancelled, err := store.Bookings.CancelBooking(ctx, "booking1", "someone-else")
		if err != nil {
			t.Fatalf("CancelBooking failed: %v", err)
		}
		if cancelled {
			t.Fatal("Expected cancellation by non-owner to report no match")
		}
	})

	t.Run("unknown booking", func(t *testing.T) {
		cancelled, err := store.Bookings.CancelBooking(ctx, "missing", "user1")
		if err != nil {
			t.Fatalf("CancelBooking failed: %v", err)
		}
		if cancelled {
			t.Fatal("Expected cancellation of unknown booking to report no match")
		}
	})
}

func TestBookingRepository_TransferBooking(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	seedUser(t, store, "user1", "user1@example.com")
	seedUser(t, store, "user2", "user2@example.com")
	seedRoom(t, store, "room1", "Fuji")

	if _, err := store.Bookings.CreateBooking(ctx, confirmedBooking("booking1", "user1", "room1", "09:00", "10:00")); err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	replacement := confirmedBooking("booking2", "user2", "room1", "09:00", "10:00")
	created, err := store.Bookings.TransferBooking(ctx, "booking1", replacement)
	if err != nil {
		t.Fatalf("TransferBooking failed: %v", err)
	}
	if created.UserID != "user2" {
		t.Errorf("Expected replacement owner 'user2', got '%s'", created.UserID)
	}

	old, err := store.Bookings.GetBooking(ctx, "booking1")
	if err != nil {
		t.Fatalf("GetBooking failed: %v", err)
	}
	if old.Status != persistence.BookingStatusCancelled {
		t.Errorf("Expected displaced booking to be cancelled, got '%s'", old.Status)
	}
}

func TestBookingRepository_TransferBooking_MissingOldRollsBack(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	seedUser(t, store, "user2", "user2@example.com")
	seedRoom(t, store, "room1", "Fuji")

	replacement := confirmedBooking("booking2", "user2", "room1", "09:00", "10:00")
	_, err := store.Bookings.TransferBooking(ctx, "missing", replacement)
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	if _, err := store.Bookings.GetBooking(ctx, "booking2"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected replacement to be rolled back, got %v", err)
	}
}

func TestBookingRepository_TransferBooking_ConflictingReplacementRollsBack(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	seedUser(t, store, "user1", "user1@example.com")
	seedUser(t, store, "user2", "user2@example.com")
	seedRoom(t, store, "room1", "Fuji")

	if _, err := store.Bookings.CreateBooking(ctx, confirmedBooking("booking1", "user1", "room1", "09:00", "10:00")); err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}
	if _, err := store.Bookings.CreateBooking(ctx, confirmedBooking("blocker", "user1", "room1", "10:00", "11:00")); err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	// Replacement collides with the blocker, not with the displaced booking.
	replacement := confirmedBooking("booking2", "user2", "room1", "10:00", "11:00")
	_, err := store.Bookings.TransferBooking(ctx, "booking1", replacement)
	if !errors.Is(err, persistence.ErrConflict) {
		t.Fatalf("Expected ErrConflict, got %v", err)
	}

	// The displaced booking must survive the rollback untouched.
	old, err := store.Bookings.GetBooking(ctx, "booking1")
	if err != nil {
		t.Fatalf("GetBooking failed: %v", err)
	}
	if old.Status != persistence.BookingStatusConfirmed {
		t.Errorf("Expected displaced booking to stay confirmed after rollback, got '%s'", old.Status)
	}
}

func TestBookingRepository_ListBookingsByRoomAndDate(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	seedUser(t, store, "user1", "user1@example.com")
	seedRoom(t, store, "room1", "Fuji")
	seedRoom(t, store, "room2", "Asama")

	if _, err := store.Bookings.CreateBooking(ctx, confirmedBooking("booking1", "user1", "room1", "13:00", "14:00")); err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}
	if _, err := store.Bookings.CreateBooking(ctx, confirmedBooking("booking2", "user1", "room1", "09:00", "10:00")); err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}
	if _, err := store.Bookings.CreateBooking(ctx, confirmedBooking("booking3", "user1", "room2", "09:00", "10:00")); err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	bookings, err := store.Bookings.ListBookingsByRoomAndDate(ctx, "room1", "2024-06-10")
	if err != nil {
		t.Fatalf("ListBookingsByRoomAndDate failed: %v", err)
	}
	if len(bookings) != 2 {
		t.Fatalf("Expected 2 bookings, got %d", len(bookings))
	}
	if bookings[0].ID != "booking2" || bookings[1].ID != "booking1" {
		t.Errorf("Expected bookings ordered by start time, got %s then %s", bookings[0].ID, bookings[1].ID)
	}
}
