package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

func TestUserRepository_DuplicateEmail(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	seedUser(t, store, "user1", "shared@example.com")

	now := time.Now().UTC()
	err := store.Users.CreateUser(ctx, persistence.User{
		ID:           "user2",
		Email:        "shared@example.com",
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "hash",
		Role:         "user",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("Expected ErrDuplicate, got %v", err)
	}
}

func TestUserRepository_UpdateRoleAndStatus(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	seedUser(t, store, "user1", "user1@example.com")

	if err := store.Users.UpdateUserRole(ctx, "user1", "admin"); err != nil {
		t.Fatalf("UpdateUserRole failed: %v", err)
	}
	if err := store.Users.UpdateUserStatus(ctx, "user1", false); err != nil {
		t.Fatalf("UpdateUserStatus failed: %v", err)
	}

	user, err := store.Users.GetUser(ctx, "user1")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if user.Role != "admin" {
		t.Errorf("Expected role 'admin', got '%s'", user.Role)
	}
	if user.IsActive {
		t.Error("Expected user to be deactivated")
	}

	if err := store.Users.UpdateUserRole(ctx, "missing", "admin"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestRoomRepository_SoftDelete(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	seedRoom(t, store, "room1", "Fuji")
	seedRoom(t, store, "room2", "Asama")

	if err := store.Rooms.DeactivateRoom(ctx, "room2"); err != nil {
		t.Fatalf("DeactivateRoom failed: %v", err)
	}

	active, err := store.Rooms.ListRooms(ctx, false)
	if err != nil {
		t.Fatalf("ListRooms failed: %v", err)
	}
	if len(active) != 1 || active[0].ID != "room1" {
		t.Fatalf("Expected only 'room1' active, got %v", active)
	}

	all, err := store.Rooms.ListRooms(ctx, true)
	if err != nil {
		t.Fatalf("ListRooms failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 rooms including inactive, got %d", len(all))
	}

	// The deactivated room stays resolvable for existing bookings.
	room, err := store.Rooms.GetRoom(ctx, "room2")
	if err != nil {
		t.Fatalf("GetRoom failed: %v", err)
	}
	if room.IsActive {
		t.Error("Expected room2 to be inactive")
	}
}

func TestSessionRepository_Lifecycle(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	seedUser(t, store, "user1", "user1@example.com")

	now := time.Now().UTC()
	session := persistence.Session{
		ID:        "session1",
		UserID:    "user1",
		Token:     "token-abc",
		ExpiresAt: now.Add(8 * time.Hour),
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := store.Sessions.CreateSession(ctx, session)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if created.RevokedAt != nil {
		t.Error("Expected a fresh session to be unrevoked")
	}

	revoked, err := store.Sessions.RevokeSession(ctx, "token-abc", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("RevokeSession failed: %v", err)
	}
	if revoked.RevokedAt == nil {
		t.Fatal("Expected revoked_at to be set")
	}

	// Revoking again keeps the original timestamp.
	again, err := store.Sessions.RevokeSession(ctx, "token-abc", now.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("RevokeSession failed: %v", err)
	}
	if !again.RevokedAt.Equal(*revoked.RevokedAt) {
		t.Errorf("Expected revoked_at to remain %v, got %v", revoked.RevokedAt, again.RevokedAt)
	}

	if err := store.Sessions.DeleteExpiredSessions(ctx, now.Add(9*time.Hour)); err != nil {
		t.Fatalf("DeleteExpiredSessions failed: %v", err)
	}
	if _, err := store.Sessions.GetSession(ctx, "token-abc"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected expired session to be deleted, got %v", err)
	}
}

func TestTeamRepository_SoftDelete(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	now := time.Now().UTC()
	for _, team := range []persistence.Team{
		{ID: "team1", Name: "Engineering", IsActive: true, CreatedAt: now},
		{ID: "team2", Name: "Sales", IsActive: true, CreatedAt: now},
	} {
		if err := store.Teams.CreateTeam(ctx, team); err != nil {
			t.Fatalf("CreateTeam failed: %v", err)
		}
	}

	if err := store.Teams.DeactivateTeam(ctx, "team2"); err != nil {
		t.Fatalf("DeactivateTeam failed: %v", err)
	}

	active, err := store.Teams.ListTeams(ctx, false)
	if err != nil {
		t.Fatalf("ListTeams failed: %v", err)
	}
	if len(active) != 1 || active[0].ID != "team1" {
		t.Fatalf("Expected only 'team1' active, got %v", active)
	}
}

func TestNotificationRepository_MarkRead(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	err := store.Notifications.CreateNotification(ctx, persistence.AdminNotification{
		ID:        "notification1",
		Type:      persistence.NotificationTypePriorityRequest,
		Title:     "New priority request",
		Message:   "A booking conflict needs review",
		IsRead:    false,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateNotification failed: %v", err)
	}

	if err := store.Notifications.MarkNotificationRead(ctx, "notification1"); err != nil {
		t.Fatalf("MarkNotificationRead failed: %v", err)
	}

	notifications, err := store.Notifications.ListNotifications(ctx)
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(notifications))
	}
	if !notifications[0].IsRead {
		t.Error("Expected notification to be marked read")
	}
}
