package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/cors"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/config"
	"github.com/example/room-booking/internal/email"
	httptransport "github.com/example/room-booking/internal/http"
	"github.com/example/room-booking/internal/logging"
	"github.com/example/room-booking/internal/persistence/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := logging.NewLogger(os.Stdout, logging.ParseLevel(cfg.LogLevel))

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	tokenGenerator := func() string { return randomHex(32) }
	now := time.Now

	notificationService := application.NewNotificationServiceWithLogger(storage.Notifications, idGenerator, now, logger)
	emailDispatcher := email.NewLogDispatcher(logger)

	bookingService := application.NewBookingServiceWithLogger(storage.Bookings, storage.Rooms, idGenerator, now, logger)
	priorityService := application.NewPriorityServiceWithLogger(storage.Priority, storage.Rooms, notificationService, emailDispatcher, idGenerator, now, logger)
	roomService := application.NewRoomServiceWithLogger(storage.Rooms, idGenerator, now, logger)
	teamService := application.NewTeamServiceWithLogger(storage.Teams, idGenerator, now, logger)
	userService := application.NewUserServiceWithLogger(storage.Users, logger)
	authService := application.NewAuthService(application.AuthServiceConfig{
		Accounts:       storage.Users,
		Sessions:       storage.Sessions,
		Notifications:  notificationService,
		IDGenerator:    idGenerator,
		TokenGenerator: tokenGenerator,
		Now:            now,
		SessionTTL:     cfg.SessionTTL,
		AdminEmail:     cfg.AdminEmail,
		Logger:         logger,
	})

	if err := roomService.Seed(context.Background(), defaultRooms()); err != nil {
		logger.Error("failed to seed rooms", "error", err)
		os.Exit(1)
	}
	if err := teamService.Seed(context.Background(), defaultTeams()); err != nil {
		logger.Error("failed to seed teams", "error", err)
		os.Exit(1)
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:     httptransport.NewAuthHandler(authService, cfg.LoginRatePerMinute, logger),
		Bookings: httptransport.NewBookingHandler(bookingService, roomService, userService, logger),
		Priority: httptransport.NewPriorityHandler(priorityService, logger),
		Rooms:    httptransport.NewRoomHandler(roomService, logger),
		Teams:    httptransport.NewTeamHandler(teamService, logger),
		Admin:    httptransport.NewAdminHandler(userService, notificationService, logger),
		Sessions: authService,
		Logger:   logger,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Session-Token"},
		ExposedHeaders:   []string{"X-Session-Token"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           corsMiddleware.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go purgeExpiredSessions(ctx, authService, logger)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("booking API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// purgeExpiredSessions removes dead sessions hourly until shutdown.
func purgeExpiredSessions(ctx context.Context, auth *application.AuthService, logger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := auth.PurgeExpiredSessions(ctx); err != nil {
				logger.Warn("failed to purge expired sessions", "error", err)
			}
		}
	}
}

func defaultRooms() []application.RoomInput {
	return []application.RoomInput{
		{Name: "会議室A", Capacity: 10},
		{Name: "会議室B", Capacity: 6},
		{Name: "会議室C", Capacity: 4},
	}
}

func defaultTeams() []application.TeamInput {
	return []application.TeamInput{
		{Name: "開発部"},
		{Name: "マーケティング部"},
		{Name: "営業部"},
		{Name: "人事部"},
		{Name: "経理部"},
	}
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
