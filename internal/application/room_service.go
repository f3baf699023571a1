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

// RoomRepository captures the persistence interactions needed by the room service.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room persistence.Room) error
	GetRoom(ctx context.Context, id string) (persistence.Room, error)
	ListRooms(ctx context.Context, includeInactive bool) ([]persistence.Room, error)
	UpdateRoom(ctx context.Context, room persistence.Room) error
	DeactivateRoom(ctx context.Context, id string) error
}

// RoomService manages the room catalog.
type RoomService struct {
	rooms       RoomRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewRoomService wires dependencies for room management.
func NewRoomService(rooms RoomRepository, idGenerator func() string, now func() time.Time) *RoomService {
	return NewRoomServiceWithLogger(rooms, idGenerator, now, nil)
}

// NewRoomServiceWithLogger constructs a RoomService with a specified logger.
func NewRoomServiceWithLogger(rooms RoomRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RoomService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &RoomService{
		rooms:       rooms,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *RoomService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RoomService", operation, attrs...)
}

// List returns the active rooms. Administrators may include deactivated rooms.
func (s *RoomService) List(ctx context.Context, principal Principal, includeInactive bool) ([]Room, error) {
	if s == nil {
		return nil, fmt.Errorf("RoomService is nil")
	}
	if includeInactive && !principal.IsAdmin {
		return nil, ErrUnauthorized
	}

	records, err := s.rooms.ListRooms(ctx, includeInactive)
	if err != nil {
		return nil, err
	}

	rooms := make([]Room, 0, len(records))
	for _, record := range records {
		rooms = append(rooms, roomFromPersistence(record))
	}
	return rooms, nil
}

// Get returns a single room, active or not.
func (s *RoomService) Get(ctx context.Context, id string) (Room, error) {
	if s == nil {
		return Room{}, fmt.Errorf("RoomService is nil")
	}

	record, err := s.rooms.GetRoom(ctx, id)
	if err != nil {
		return Room{}, mapDirectoryRepoError(err)
	}
	return roomFromPersistence(record), nil
}

// Create adds a room to the catalog.
func (s *RoomService) Create(ctx context.Context, principal Principal, input RoomInput) (room Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Create", "user_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "room creation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("room_id", room.ID).InfoContext(ctx, "room created")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if vErr := validateRoomInput(input); vErr != nil {
		err = vErr
		return
	}

	record := persistence.Room{
		ID:        s.idGenerator(),
		Name:      strings.TrimSpace(input.Name),
		Capacity:  input.Capacity,
		IsActive:  true,
		CreatedAt: s.now(),
	}
	if createErr := s.rooms.CreateRoom(ctx, record); createErr != nil {
		err = mapDirectoryRepoError(createErr)
		return
	}

	room = roomFromPersistence(record)
	return
}

// Update replaces a room's name and capacity.
func (s *RoomService) Update(ctx context.Context, principal Principal, id string, input RoomInput) (room Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Update", "user_id", principal.UserID, "room_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "room update failed", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if vErr := validateRoomInput(input); vErr != nil {
		err = vErr
		return
	}

	record, getErr := s.rooms.GetRoom(ctx, id)
	if getErr != nil {
		err = mapDirectoryRepoError(getErr)
		return
	}

	record.Name = strings.TrimSpace(input.Name)
	record.Capacity = input.Capacity
	if updateErr := s.rooms.UpdateRoom(ctx, record); updateErr != nil {
		err = mapDirectoryRepoError(updateErr)
		return
	}

	room = roomFromPersistence(record)
	return
}

// Deactivate soft-deletes a room. Existing bookings keep their reference.
func (s *RoomService) Deactivate(ctx context.Context, principal Principal, id string) (err error) {
	if s == nil {
		return fmt.Errorf("RoomService is nil")
	}

	logger := s.loggerWith(ctx, "Deactivate", "user_id", principal.UserID, "room_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "room deactivation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "room deactivated")
	}()

	if !principal.IsAdmin {
		return ErrUnauthorized
	}

	err = mapDirectoryRepoError(s.rooms.DeactivateRoom(ctx, id))
	return
}

// Seed creates the given rooms unless the catalog already has entries.
func (s *RoomService) Seed(ctx context.Context, inputs []RoomInput) error {
	if s == nil {
		return fmt.Errorf("RoomService is nil")
	}

	existing, err := s.rooms.ListRooms(ctx, true)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	for _, input := range inputs {
		record := persistence.Room{
			ID:        s.idGenerator(),
			Name:      strings.TrimSpace(input.Name),
			Capacity:  input.Capacity,
			IsActive:  true,
			CreatedAt: s.now(),
		}
		if err := s.rooms.CreateRoom(ctx, record); err != nil && !errors.Is(err, persistence.ErrDuplicate) {
			return err
		}
	}
	return nil
}

func validateRoomInput(input RoomInput) *ValidationError {
	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if input.Capacity <= 0 {
		vErr.add("capacity", "capacity must be positive")
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

func mapDirectoryRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyExists
	case errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	default:
		return err
	}
}
