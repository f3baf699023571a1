package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/testfixtures"
)

// The workflow tests run the booking and escalation flows end to end against
// a real SQLite store rather than the per-service stubs.
func TestBookingWorkflowAgainstStore(t *testing.T) {
	ctx := context.Background()

	harness := testfixtures.NewSQLiteHarness(t)
	clock := testfixtures.NewClock(testfixtures.ReferenceTime())
	ids := testfixtures.NewIDGenerator("wf")

	owner := testfixtures.NewUserFixture()
	challenger := testfixtures.NewUserFixture()
	admin := testfixtures.NewUserFixture(testfixtures.WithUserRole("admin"))
	room := testfixtures.NewRoomFixture()

	for _, user := range []testfixtures.UserFixture{owner, challenger, admin} {
		if err := harness.Users.CreateUser(ctx, user.Persistence()); err != nil {
			t.Fatalf("failed to seed user %s: %v", user.ID, err)
		}
	}
	if err := harness.Rooms.CreateRoom(ctx, room.Persistence()); err != nil {
		t.Fatalf("failed to seed room: %v", err)
	}

	bookingService := NewBookingService(harness.Bookings, harness.Rooms, ids.NextFunc(), clock.NowFunc())
	sink := &recordingSink{}
	dispatcher := &recordingDispatcher{}
	priorityService := NewPriorityService(harness.Priority, harness.Rooms, sink, dispatcher, ids.NextFunc(), clock.NowFunc())

	slot := BookingInput{
		RoomID:    room.ID,
		Date:      testfixtures.ReferenceDate(),
		StartTime: "10:00",
		EndTime:   "11:00",
		Purpose:   "sprint review",
	}

	original, err := bookingService.CreateBooking(ctx, CreateBookingParams{
		Principal: Principal{UserID: owner.ID},
		Input:     slot,
	})
	if err != nil {
		t.Fatalf("failed to create the original booking: %v", err)
	}

	if _, err := bookingService.CreateBooking(ctx, CreateBookingParams{
		Principal: Principal{UserID: challenger.ID},
		Input:     slot,
	}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for the occupied slot, got %v", err)
	}

	availability, err := bookingService.CheckAvailability(ctx, CheckAvailabilityParams{
		RoomID:    room.ID,
		Date:      slot.Date,
		StartTime: "10:30",
		EndTime:   "11:30",
	})
	if err != nil {
		t.Fatalf("availability check failed: %v", err)
	}
	if availability.Available || len(availability.Conflicts) != 1 {
		t.Fatalf("expected one conflict, got %+v", availability)
	}
	if availability.Conflicts[0].ID != original.ID {
		t.Fatalf("expected the original booking to conflict, got %s", availability.Conflicts[0].ID)
	}

	request, err := priorityService.CreateRequest(ctx, CreatePriorityRequestParams{
		Principal: Principal{UserID: challenger.ID},
		Input: PriorityRequestInput{
			ConflictBookingID: original.ID,
			Reason:            "executive briefing takes precedence",
		},
	})
	if err != nil {
		t.Fatalf("failed to submit priority request: %v", err)
	}
	if len(sink.published) != 1 {
		t.Fatalf("expected one admin notification, got %d", len(sink.published))
	}
	if len(dispatcher.submitted) != 1 {
		t.Fatalf("expected one submission email, got %d", len(dispatcher.submitted))
	}

	adminPrincipal := Principal{UserID: admin.ID, IsAdmin: true}
	resolved, err := priorityService.Approve(ctx, ApprovePriorityRequestParams{
		Principal:  adminPrincipal,
		RequestID:  request.ID,
		NewBooking: slot,
	})
	if err != nil {
		t.Fatalf("failed to approve priority request: %v", err)
	}
	if resolved.Status != persistence.PriorityStatusApproved {
		t.Fatalf("expected approved status, got %s", resolved.Status)
	}
	if len(dispatcher.resolved) != 1 {
		t.Fatalf("expected one resolution email, got %d", len(dispatcher.resolved))
	}

	displaced, err := bookingService.GetBooking(ctx, original.ID)
	if err != nil {
		t.Fatalf("failed to load the displaced booking: %v", err)
	}
	if displaced.Status != persistence.BookingStatusCancelled {
		t.Fatalf("expected the displaced booking to be cancelled, got %s", displaced.Status)
	}

	transferred, err := bookingService.ListUserBookings(ctx, challenger.ID)
	if err != nil {
		t.Fatalf("failed to list the requester's bookings: %v", err)
	}
	var replacement *Booking
	for i := range transferred {
		if transferred[i].Status == persistence.BookingStatusConfirmed {
			replacement = &transferred[i]
		}
	}
	if replacement == nil {
		t.Fatalf("expected the requester to own the replacement booking, got %+v", transferred)
	}
	if replacement.StartTime != slot.StartTime || replacement.EndTime != slot.EndTime {
		t.Fatalf("replacement kept the wrong slot: %+v", replacement)
	}

	// The request is terminal now; a second decision must be rejected.
	if _, err := priorityService.Approve(ctx, ApprovePriorityRequestParams{
		Principal:  adminPrincipal,
		RequestID:  request.ID,
		NewBooking: slot,
	}); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition for a resolved request, got %v", err)
	}

	cancelParams := CancelBookingParams{
		Principal: Principal{UserID: challenger.ID},
		BookingID: replacement.ID,
	}
	if err := bookingService.CancelBooking(ctx, cancelParams); err != nil {
		t.Fatalf("failed to cancel the replacement booking: %v", err)
	}
	if err := bookingService.CancelBooking(ctx, cancelParams); err != nil {
		t.Fatalf("expected repeated cancellation to stay idempotent, got %v", err)
	}
}

func TestAuthWorkflowAgainstStore(t *testing.T) {
	ctx := context.Background()

	harness := testfixtures.NewSQLiteHarness(t)
	clock := testfixtures.NewClock(testfixtures.ReferenceTime())
	ids := testfixtures.NewIDGenerator("auth")
	tokens := testfixtures.NewIDGenerator("token")

	service := NewAuthService(AuthServiceConfig{
		Accounts:       harness.Users,
		Sessions:       harness.Sessions,
		HashPassword:   plaintextHasher,
		VerifyPassword: plaintextVerifier,
		IDGenerator:    ids.NextFunc(),
		TokenGenerator: tokens.NextFunc(),
		Now:            clock.NowFunc(),
		AdminEmail:     "admin@example.com",
	})

	registered, err := service.Register(ctx, RegisterParams{
		Email:     "hanako@example.com",
		Password:  "correct horse",
		FirstName: "Hanako",
		LastName:  "Sato",
	})
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}
	if registered.User.Role != RoleUser {
		t.Fatalf("expected regular role, got %s", registered.User.Role)
	}

	authenticated, err := service.Authenticate(ctx, AuthenticateParams{
		Email:    "hanako@example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("authentication failed: %v", err)
	}

	_, principal, err := service.ResolveSession(ctx, authenticated.Session.Token)
	if err != nil {
		t.Fatalf("session resolution failed: %v", err)
	}
	if principal.UserID != registered.User.ID || principal.IsAdmin {
		t.Fatalf("unexpected principal: %+v", principal)
	}

	if err := service.Logout(ctx, authenticated.Session.Token); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, _, err := service.ResolveSession(ctx, authenticated.Session.Token); !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("expected ErrSessionRevoked after logout, got %v", err)
	}

	expiring, err := service.Authenticate(ctx, AuthenticateParams{
		Email:    "hanako@example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("second authentication failed: %v", err)
	}
	clock.Advance(25 * time.Hour)
	if _, _, err := service.ResolveSession(ctx, expiring.Session.Token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired after the TTL elapsed, got %v", err)
	}
}
