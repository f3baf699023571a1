package http

import (
	"context"
	"log/slog"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/logging"
)

type contextKey string

const (
	principalContextKey contextKey = "principal"
	userContextKey      contextKey = "user"
)

// ContextWithPrincipal returns a derived context containing the authenticated principal.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the authenticated principal from context if available.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(application.Principal)
	return principal, ok
}

// ContextWithUser returns a derived context containing the resolved account.
func ContextWithUser(ctx context.Context, user application.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext extracts the resolved account from context if available.
func UserFromContext(ctx context.Context) (application.User, bool) {
	user, ok := ctx.Value(userContextKey).(application.User)
	return user, ok
}

// ContextWithLogger attaches a request-scoped logger to the context.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext extracts a request-scoped logger if one was attached.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
