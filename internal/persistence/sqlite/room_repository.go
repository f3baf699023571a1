package sqlite

import (
	"context"
	"fmt"

	"github.com/example/room-booking/internal/persistence"
)

// RoomRepository implements persistence.RoomRepository using SQLite.
type RoomRepository struct {
	pool *ConnectionPool
}

// NewRoomRepository creates a new SQLite room repository.
func NewRoomRepository(pool *ConnectionPool) *RoomRepository {
	return &RoomRepository{pool: pool}
}

const roomColumns = "id, name, capacity, is_active, created_at"

// CreateRoom inserts a new room. A duplicate name yields ErrDuplicate.
func (r *RoomRepository) CreateRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.pool.db.ExecContext(ctx,
		"INSERT INTO rooms (id, name, capacity, is_active, created_at) VALUES (?, ?, ?, ?, ?)",
		room.ID, room.Name, room.Capacity, room.IsActive, formatTime(room.CreatedAt))
	return mapError(err)
}

// GetRoom retrieves a room by ID.
func (r *RoomRepository) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	if id == "" {
		return persistence.Room{}, persistence.ErrNotFound
	}

	row := r.pool.db.QueryRowContext(ctx,
		"SELECT "+roomColumns+" FROM rooms WHERE id = ?", id)
	room, err := scanRoom(row)
	if err != nil {
		return persistence.Room{}, mapError(err)
	}
	return room, nil
}

// ListRooms returns rooms ordered by name. Deactivated rooms are included
// only when includeInactive is set.
func (r *RoomRepository) ListRooms(ctx context.Context, includeInactive bool) ([]persistence.Room, error) {
	query := "SELECT " + roomColumns + " FROM rooms WHERE is_active = 1 ORDER BY name ASC"
	if includeInactive {
		query = "SELECT " + roomColumns + " FROM rooms ORDER BY name ASC"
	}

	rows, err := r.pool.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var rooms []persistence.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, mapError(err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return rooms, nil
}

// UpdateRoom replaces the room's name and capacity.
func (r *RoomRepository) UpdateRoom(ctx context.Context, room persistence.Room) error {
	return r.exec(ctx, "UPDATE rooms SET name = ?, capacity = ? WHERE id = ?",
		room.Name, room.Capacity, room.ID)
}

// DeactivateRoom soft-deletes the room. Existing bookings keep their room
// reference.
func (r *RoomRepository) DeactivateRoom(ctx context.Context, id string) error {
	return r.exec(ctx, "UPDATE rooms SET is_active = 0 WHERE id = ?", id)
}

func (r *RoomRepository) exec(ctx context.Context, query string, args ...any) error {
	result, err := r.pool.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func scanRoom(row rowScanner) (persistence.Room, error) {
	var room persistence.Room
	var createdAt string

	err := row.Scan(&room.ID, &room.Name, &room.Capacity, &room.IsActive, &createdAt)
	if err != nil {
		return persistence.Room{}, err
	}

	if room.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Room{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return room, nil
}
