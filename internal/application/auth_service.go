package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// AccountStore exposes the account operations required by the auth service.
type AccountStore interface {
	CreateUser(ctx context.Context, user persistence.User) error
	GetUser(ctx context.Context, id string) (persistence.User, error)
	GetUserByEmail(ctx context.Context, email string) (persistence.User, error)
}

// SessionStore captures the persistence interactions for issued sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error)
	GetSession(ctx context.Context, token string) (persistence.Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (persistence.Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// PasswordHasher derives a storable hash from a plain password.
type PasswordHasher func(password string) (string, error)

// PasswordVerifier compares a stored hash with a candidate password.
type PasswordVerifier func(hashedPassword, password string) error

// AuthService coordinates registration, login and session resolution.
type AuthService struct {
	accounts       AccountStore
	sessions       SessionStore
	notifications  NotificationSink
	hashPassword   PasswordHasher
	verifyPassword PasswordVerifier
	idGenerator    func() string
	tokenGenerator func() string
	now            func() time.Time
	sessionTTL     time.Duration
	adminEmail     string
	logger         *slog.Logger
}

// AuthServiceConfig bundles the wiring for NewAuthService.
type AuthServiceConfig struct {
	Accounts       AccountStore
	Sessions       SessionStore
	Notifications  NotificationSink
	HashPassword   PasswordHasher
	VerifyPassword PasswordVerifier
	IDGenerator    func() string
	TokenGenerator func() string
	Now            func() time.Time
	SessionTTL     time.Duration
	// AdminEmail registers with the admin role.
	AdminEmail string
	Logger     *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(cfg AuthServiceConfig) *AuthService {
	if cfg.HashPassword == nil {
		cfg.HashPassword = func(password string) (string, error) {
			return CreatePasswordHash(password, DefaultArgon2idParams)
		}
	}
	if cfg.VerifyPassword == nil {
		cfg.VerifyPassword = VerifyPassword
	}
	if cfg.IDGenerator == nil {
		cfg.IDGenerator = func() string { return "" }
	}
	if cfg.TokenGenerator == nil {
		cfg.TokenGenerator = func() string { return "" }
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	return &AuthService{
		accounts:       cfg.Accounts,
		sessions:       cfg.Sessions,
		notifications:  cfg.Notifications,
		hashPassword:   cfg.HashPassword,
		verifyPassword: cfg.VerifyPassword,
		idGenerator:    cfg.IDGenerator,
		tokenGenerator: cfg.TokenGenerator,
		now:            cfg.Now,
		sessionTTL:     cfg.SessionTTL,
		adminEmail:     strings.TrimSpace(strings.ToLower(cfg.AdminEmail)),
		logger:         defaultLogger(cfg.Logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Register creates an account and logs it in. The configured admin email
// receives the admin role; everyone else registers as a regular user and
// raises a new_user notification for administrators.
func (s *AuthService) Register(ctx context.Context, params RegisterParams) (result AuthenticateResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}

	email := strings.TrimSpace(strings.ToLower(params.Email))

	logger := s.loggerWith(ctx, "Register", "email", email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "registration failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", result.User.ID).InfoContext(ctx, "registration succeeded")
	}()

	vErr := &ValidationError{}
	if email == "" || !strings.Contains(email, "@") {
		vErr.add("email", "a valid email address is required")
	}
	if len(params.Password) < 8 {
		vErr.add("password", "password must be at least 8 characters")
	}
	if strings.TrimSpace(params.FirstName) == "" {
		vErr.add("firstName", "first name is required")
	}
	if strings.TrimSpace(params.LastName) == "" {
		vErr.add("lastName", "last name is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	hash, hashErr := s.hashPassword(params.Password)
	if hashErr != nil {
		err = fmt.Errorf("failed to hash password: %w", hashErr)
		return
	}

	role := RoleUser
	if s.adminEmail != "" && email == s.adminEmail {
		role = RoleAdmin
	}

	createdAt := s.now()
	record := persistence.User{
		ID:           s.idGenerator(),
		Email:        email,
		FirstName:    strings.TrimSpace(params.FirstName),
		LastName:     strings.TrimSpace(params.LastName),
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
	if createErr := s.accounts.CreateUser(ctx, record); createErr != nil {
		err = mapDirectoryRepoError(createErr)
		return
	}

	if role != RoleAdmin && s.notifications != nil {
		notification := AdminNotification{
			Type:      persistence.NotificationTypeNewUser,
			Title:     "New user registered",
			Message:   fmt.Sprintf("%s %s (%s) registered", record.FirstName, record.LastName, record.Email),
			RelatedID: &record.ID,
		}
		if sinkErr := s.notifications.Publish(ctx, notification); sinkErr != nil {
			logger.WarnContext(ctx, "new user notification failed", "error", sinkErr)
		}
	}

	session, sessionErr := s.issueSession(ctx, record.ID)
	if sessionErr != nil {
		err = sessionErr
		return
	}

	result = AuthenticateResult{
		User:    userFromPersistence(record),
		Session: sessionFromPersistence(session),
	}
	return
}

// Authenticate validates credentials and issues a new session token.
func (s *AuthService) Authenticate(ctx context.Context, params AuthenticateParams) (result AuthenticateResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}

	email := strings.TrimSpace(strings.ToLower(params.Email))

	logger := s.loggerWith(ctx, "Authenticate", "email", email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "authentication failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"user_id", result.User.ID,
			"session_id", result.Session.ID,
		).InfoContext(ctx, "authentication succeeded")
	}()

	if email == "" || params.Password == "" {
		err = ErrInvalidCredentials
		return
	}

	record, lookupErr := s.accounts.GetUserByEmail(ctx, email)
	if lookupErr != nil {
		if errors.Is(lookupErr, persistence.ErrNotFound) {
			err = ErrInvalidCredentials
			return
		}
		err = lookupErr
		return
	}

	if !record.IsActive {
		err = ErrAccountDisabled
		return
	}

	if verifyErr := s.verifyPassword(record.PasswordHash, params.Password); verifyErr != nil {
		if errors.Is(verifyErr, ErrInvalidCredentials) {
			err = ErrInvalidCredentials
			return
		}
		err = verifyErr
		return
	}

	session, sessionErr := s.issueSession(ctx, record.ID)
	if sessionErr != nil {
		err = sessionErr
		return
	}

	result = AuthenticateResult{
		User:    userFromPersistence(record),
		Session: sessionFromPersistence(session),
	}
	return
}

// Logout revokes the session identified by token. Unknown tokens are treated
// as already logged out.
func (s *AuthService) Logout(ctx context.Context, token string) (err error) {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}

	logger := s.loggerWith(ctx, "Logout")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "logout failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "logout succeeded")
	}()

	if token == "" {
		return nil
	}
	if _, revokeErr := s.sessions.RevokeSession(ctx, token, s.now()); revokeErr != nil {
		if errors.Is(revokeErr, persistence.ErrNotFound) {
			return nil
		}
		return revokeErr
	}
	return nil
}

// ResolveSession validates a session token and returns the authenticated user
// with the Principal middleware attaches to requests.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (User, Principal, error) {
	if s == nil {
		return User{}, Principal{}, fmt.Errorf("AuthService is nil")
	}
	if token == "" {
		return User{}, Principal{}, ErrUnauthorized
	}

	session, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return User{}, Principal{}, ErrUnauthorized
		}
		return User{}, Principal{}, err
	}

	now := s.now()
	if session.RevokedAt != nil {
		return User{}, Principal{}, ErrSessionRevoked
	}
	if !session.ExpiresAt.After(now) {
		return User{}, Principal{}, ErrSessionExpired
	}

	record, err := s.accounts.GetUser(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return User{}, Principal{}, ErrUnauthorized
		}
		return User{}, Principal{}, err
	}
	if !record.IsActive {
		return User{}, Principal{}, ErrAccountDisabled
	}

	user := userFromPersistence(record)
	principal := Principal{UserID: user.ID, IsAdmin: user.Role == RoleAdmin}
	return user, principal, nil
}

// PurgeExpiredSessions removes sessions past their expiry.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	return s.sessions.DeleteExpiredSessions(ctx, s.now())
}

func (s *AuthService) issueSession(ctx context.Context, userID string) (persistence.Session, error) {
	token := s.tokenGenerator()
	if token == "" {
		return persistence.Session{}, fmt.Errorf("token generator produced an empty token")
	}

	now := s.now()
	session := persistence.Session{
		ID:        s.idGenerator(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.sessions.CreateSession(ctx, session)
}
