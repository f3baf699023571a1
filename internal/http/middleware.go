package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/example/room-booking/internal/application"
)

// Middleware wraps an http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// SessionResolver validates a session token and returns the account it belongs to.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (application.User, application.Principal, error)
}

// RequireSession rejects requests without a valid session token and attaches
// the resolved account and principal to the request context.
func RequireSession(sessions SessionResolver, resp responder) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := extractTokenFromRequest(r)
			if token == "" {
				resp.writeError(ctx, w, http.StatusUnauthorized, errMissingSessionToken)
				return
			}

			user, principal, err := sessions.ResolveSession(ctx, token)
			if err != nil {
				switch {
				case errors.Is(err, application.ErrSessionExpired):
					resp.writeError(ctx, w, http.StatusUnauthorized, errors.New("セッションの有効期限が切れています。再度ログインしてください。"))
				case errors.Is(err, application.ErrSessionRevoked), errors.Is(err, application.ErrUnauthorized):
					resp.writeError(ctx, w, http.StatusUnauthorized, errors.New("認証トークンが無効です。"))
				case errors.Is(err, application.ErrAccountDisabled):
					resp.writeError(ctx, w, http.StatusForbidden, errors.New("このアカウントは無効化されています。"))
				default:
					resp.handleServiceError(ctx, w, err)
				}
				return
			}

			ctx = ContextWithUser(ctx, user)
			ctx = ContextWithPrincipal(ctx, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests whose principal lacks the admin role. It must
// run inside RequireSession.
func RequireAdmin(resp responder) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			principal, ok := PrincipalFromContext(ctx)
			if !ok || !principal.IsAdmin {
				resp.handleServiceError(ctx, w, application.ErrUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger attaches a request-scoped logger carrying a sequential request
// id and logs the start and completion of every request.
func RequestLogger(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}

	var counter atomic.Uint64

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestLogger := logger.With(
				"request_id", counter.Add(1),
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := ContextWithLogger(r.Context(), requestLogger)
			requestLogger.InfoContext(ctx, "request started")

			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r.WithContext(ctx))

			requestLogger.InfoContext(ctx, "request completed",
				"status", recorder.status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// loginRateLimiter throttles credential attempts per client address so a
// single host cannot brute-force passwords.
type loginRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newLoginRateLimiter(attemptsPerMinute int) *loginRateLimiter {
	if attemptsPerMinute <= 0 {
		attemptsPerMinute = 10
	}
	return &loginRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(float64(attemptsPerMinute) / 60.0),
		burst:    attemptsPerMinute,
	}
}

func (l *loginRateLimiter) allow(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}

	l.mu.Lock()
	limiter, ok := l.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[host] = limiter
	}
	l.mu.Unlock()

	return limiter.Allow()
}
