package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/room-booking/internal/persistence"
)

// UserRepository captures the persistence interactions needed by the user service.
type UserRepository interface {
	GetUser(ctx context.Context, id string) (persistence.User, error)
	ListUsers(ctx context.Context) ([]persistence.User, error)
	UpdateUserRole(ctx context.Context, id, role string) error
	UpdateUserStatus(ctx context.Context, id string, isActive bool) error
}

// UserService exposes account administration operations.
type UserService struct {
	users  UserRepository
	logger *slog.Logger
}

// NewUserService wires dependencies for account administration.
func NewUserService(users UserRepository) *UserService {
	return NewUserServiceWithLogger(users, nil)
}

// NewUserServiceWithLogger constructs a UserService with a specified logger.
func NewUserServiceWithLogger(users UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: defaultLogger(logger),
	}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// Get returns the account identified by id.
func (s *UserService) Get(ctx context.Context, id string) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}

	record, err := s.users.GetUser(ctx, id)
	if err != nil {
		return User{}, mapDirectoryRepoError(err)
	}
	return userFromPersistence(record), nil
}

// List returns every account for administrative review.
func (s *UserService) List(ctx context.Context, principal Principal) ([]User, error) {
	if s == nil {
		return nil, fmt.Errorf("UserService is nil")
	}
	if !principal.IsAdmin {
		return nil, ErrUnauthorized
	}

	records, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	users := make([]User, 0, len(records))
	for _, record := range records {
		users = append(users, userFromPersistence(record))
	}
	return users, nil
}

// UpdateRole changes an account's role.
func (s *UserService) UpdateRole(ctx context.Context, principal Principal, id, role string) (err error) {
	if s == nil {
		return fmt.Errorf("UserService is nil")
	}

	logger := s.loggerWith(ctx, "UpdateRole", "user_id", principal.UserID, "target_user_id", id, "role", role)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "role update failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "role updated")
	}()

	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if role != RoleUser && role != RoleAdmin {
		vErr := &ValidationError{}
		vErr.add("role", "role must be user or admin")
		return vErr
	}

	err = mapDirectoryRepoError(s.users.UpdateUserRole(ctx, id, role))
	return
}

// UpdateStatus activates or deactivates an account. Administrators cannot
// deactivate themselves.
func (s *UserService) UpdateStatus(ctx context.Context, principal Principal, id string, isActive bool) (err error) {
	if s == nil {
		return fmt.Errorf("UserService is nil")
	}

	logger := s.loggerWith(ctx, "UpdateStatus", "user_id", principal.UserID, "target_user_id", id, "is_active", isActive)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "status update failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "status updated")
	}()

	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if id == principal.UserID && !isActive {
		vErr := &ValidationError{}
		vErr.add("isActive", "cannot deactivate own account")
		return vErr
	}

	err = mapDirectoryRepoError(s.users.UpdateUserStatus(ctx, id, isActive))
	return
}
