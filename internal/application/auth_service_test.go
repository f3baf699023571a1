package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

type stubAccountStore struct {
	byID    map[string]persistence.User
	byEmail map[string]persistence.User
}

func newStubAccountStore(users ...persistence.User) *stubAccountStore {
	store := &stubAccountStore{
		byID:    make(map[string]persistence.User),
		byEmail: make(map[string]persistence.User),
	}
	for _, user := range users {
		store.byID[user.ID] = user
		store.byEmail[user.Email] = user
	}
	return store
}

func (s *stubAccountStore) CreateUser(ctx context.Context, user persistence.User) error {
	if _, exists := s.byEmail[user.Email]; exists {
		return persistence.ErrDuplicate
	}
	s.byID[user.ID] = user
	s.byEmail[user.Email] = user
	return nil
}

func (s *stubAccountStore) GetUser(ctx context.Context, id string) (persistence.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return user, nil
}

func (s *stubAccountStore) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return user, nil
}

type stubSessionStore struct {
	byToken map[string]persistence.Session
}

func newStubSessionStore(sessions ...persistence.Session) *stubSessionStore {
	store := &stubSessionStore{byToken: make(map[string]persistence.Session)}
	for _, session := range sessions {
		store.byToken[session.Token] = session
	}
	return store
}

func (s *stubSessionStore) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	s.byToken[session.Token] = session
	return session, nil
}

func (s *stubSessionStore) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	session, ok := s.byToken[token]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return session, nil
}

func (s *stubSessionStore) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	session, ok := s.byToken[token]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	if session.RevokedAt == nil {
		session.RevokedAt = &revokedAt
		s.byToken[token] = session
	}
	return session, nil
}

func (s *stubSessionStore) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	for token, session := range s.byToken {
		if !session.ExpiresAt.After(reference) {
			delete(s.byToken, token)
		}
	}
	return nil
}

func plaintextHasher(password string) (string, error) {
	return "plain:" + password, nil
}

func plaintextVerifier(hashedPassword, password string) error {
	if hashedPassword == "plain:"+password {
		return nil
	}
	return ErrInvalidCredentials
}

func newTestAuthService(accounts *stubAccountStore, sessions *stubSessionStore) *AuthService {
	return NewAuthService(AuthServiceConfig{
		Accounts:       accounts,
		Sessions:       sessions,
		HashPassword:   plaintextHasher,
		VerifyPassword: plaintextVerifier,
		IDGenerator:    sequentialIDs("id"),
		TokenGenerator: sequentialIDs("token"),
		Now:            fixedClock(),
		SessionTTL:     8 * time.Hour,
		AdminEmail:     "admin@example.com",
	})
}

func activeAccount(id, email, password string) persistence.User {
	return persistence.User{
		ID:           id,
		Email:        email,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "plain:" + password,
		Role:         RoleUser,
		IsActive:     true,
	}
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	params := RegisterParams{
		Email:     "alice@example.com",
		Password:  "correct horse",
		FirstName: "Alice",
		LastName:  "Yamada",
	}

	t.Run("creates account and session", func(t *testing.T) {
		accounts := newStubAccountStore()
		sessions := newStubSessionStore()
		sink := &recordingSink{}
		service := newTestAuthService(accounts, sessions)
		service.notifications = sink

		result, err := service.Register(ctx, params)
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if result.User.Role != RoleUser {
			t.Errorf("Expected role user, got '%s'", result.User.Role)
		}
		if result.Session.Token == "" {
			t.Error("Expected a session token")
		}
		if len(sink.published) != 1 || sink.published[0].Type != persistence.NotificationTypeNewUser {
			t.Errorf("Expected one new_user notification, got %v", sink.published)
		}
	})

	t.Run("admin email gets admin role without notification", func(t *testing.T) {
		accounts := newStubAccountStore()
		sink := &recordingSink{}
		service := newTestAuthService(accounts, newStubSessionStore())
		service.notifications = sink

		adminParams := params
		adminParams.Email = "Admin@Example.com"
		result, err := service.Register(ctx, adminParams)
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if result.User.Role != RoleAdmin {
			t.Errorf("Expected admin role, got '%s'", result.User.Role)
		}
		if len(sink.published) != 0 {
			t.Errorf("Expected no notification for admin registration, got %v", sink.published)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		accounts := newStubAccountStore(activeAccount("user1", "alice@example.com", "existing"))
		service := newTestAuthService(accounts, newStubSessionStore())

		_, err := service.Register(ctx, params)
		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("Expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("short password", func(t *testing.T) {
		service := newTestAuthService(newStubAccountStore(), newStubSessionStore())

		shortParams := params
		shortParams.Password = "short"
		_, err := service.Register(ctx, shortParams)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("Expected ValidationError, got %v", err)
		}
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		accounts := newStubAccountStore(activeAccount("user1", "alice@example.com", "correct horse"))
		service := newTestAuthService(accounts, newStubSessionStore())

		result, err := service.Authenticate(ctx, AuthenticateParams{Email: "Alice@Example.com", Password: "correct horse"})
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if result.User.ID != "user1" {
			t.Errorf("Expected user1, got '%s'", result.User.ID)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		accounts := newStubAccountStore(activeAccount("user1", "alice@example.com", "correct horse"))
		service := newTestAuthService(accounts, newStubSessionStore())

		_, err := service.Authenticate(ctx, AuthenticateParams{Email: "alice@example.com", Password: "wrong"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("Expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		service := newTestAuthService(newStubAccountStore(), newStubSessionStore())

		_, err := service.Authenticate(ctx, AuthenticateParams{Email: "ghost@example.com", Password: "whatever"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("Expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("disabled account", func(t *testing.T) {
		account := activeAccount("user1", "alice@example.com", "correct horse")
		account.IsActive = false
		service := newTestAuthService(newStubAccountStore(account), newStubSessionStore())

		_, err := service.Authenticate(ctx, AuthenticateParams{Email: "alice@example.com", Password: "correct horse"})
		if !errors.Is(err, ErrAccountDisabled) {
			t.Fatalf("Expected ErrAccountDisabled, got %v", err)
		}
	})
}

func TestAuthService_ResolveSession(t *testing.T) {
	ctx := context.Background()
	now := fixedClock()()

	account := activeAccount("user1", "alice@example.com", "correct horse")
	account.Role = RoleAdmin

	validSession := persistence.Session{
		ID:        "session1",
		UserID:    "user1",
		Token:     "token-valid",
		ExpiresAt: now.Add(time.Hour),
	}

	t.Run("valid token yields admin principal", func(t *testing.T) {
		service := newTestAuthService(newStubAccountStore(account), newStubSessionStore(validSession))

		user, principal, err := service.ResolveSession(ctx, "token-valid")
		if err != nil {
			t.Fatalf("ResolveSession failed: %v", err)
		}
		if user.ID != "user1" {
			t.Errorf("Expected user1, got '%s'", user.ID)
		}
		if !principal.IsAdmin {
			t.Error("Expected admin principal")
		}
	})

	t.Run("expired token", func(t *testing.T) {
		expired := validSession
		expired.Token = "token-expired"
		expired.ExpiresAt = now.Add(-time.Minute)
		service := newTestAuthService(newStubAccountStore(account), newStubSessionStore(expired))

		_, _, err := service.ResolveSession(ctx, "token-expired")
		if !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("Expected ErrSessionExpired, got %v", err)
		}
	})

	t.Run("revoked token", func(t *testing.T) {
		revokedAt := now.Add(-time.Minute)
		revoked := validSession
		revoked.Token = "token-revoked"
		revoked.RevokedAt = &revokedAt
		service := newTestAuthService(newStubAccountStore(account), newStubSessionStore(revoked))

		_, _, err := service.ResolveSession(ctx, "token-revoked")
		if !errors.Is(err, ErrSessionRevoked) {
			t.Fatalf("Expected ErrSessionRevoked, got %v", err)
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		service := newTestAuthService(newStubAccountStore(account), newStubSessionStore())

		_, _, err := service.ResolveSession(ctx, "token-missing")
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("Expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("disabled user", func(t *testing.T) {
		disabled := account
		disabled.IsActive = false
		service := newTestAuthService(newStubAccountStore(disabled), newStubSessionStore(validSession))

		_, _, err := service.ResolveSession(ctx, "token-valid")
		if !errors.Is(err, ErrAccountDisabled) {
			t.Fatalf("Expected ErrAccountDisabled, got %v", err)
		}
	})

	t.Run("logout is idempotent", func(t *testing.T) {
		sessions := newStubSessionStore(validSession)
		service := newTestAuthService(newStubAccountStore(account), sessions)

		if err := service.Logout(ctx, "token-valid"); err != nil {
			t.Fatalf("Logout failed: %v", err)
		}
		if err := service.Logout(ctx, "token-valid"); err != nil {
			t.Fatalf("Repeated logout failed: %v", err)
		}
		if err := service.Logout(ctx, "token-missing"); err != nil {
			t.Fatalf("Logout of unknown token failed: %v", err)
		}
	})
}
