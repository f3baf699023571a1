package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/timeslot"
)

// BookingRepository implements persistence.BookingRepository using SQLite.
type BookingRepository struct {
	pool *ConnectionPool
}

// NewBookingRepository creates a new SQLite booking repository.
func NewBookingRepository(pool *ConnectionPool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

const bookingColumns = "id, user_id, room_id, date, start_time, end_time, purpose, booking_type, team, status, created_at"

// CreateBooking inserts a confirmed booking after re-checking the overlap
// invariant inside the insert transaction. Of two concurrent requests for an
// overlapping slot exactly one commits; the other receives
// persistence.ErrConflict.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking persistence.Booking) (persistence.Booking, error) {
	if booking.ID == "" {
		return persistence.Booking{}, persistence.ErrConstraintViolation
	}

	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		conflicting, err := confirmedOverlapsTx(tx, booking.RoomID, booking.Date, booking.StartTime, booking.EndTime, "")
		if err != nil {
			return err
		}
		if conflicting {
			return persistence.ErrConflict
		}
		return insertBookingTx(tx, booking)
	})
	if err != nil {
		return persistence.Booking{}, err
	}

	return r.GetBooking(ctx, booking.ID)
}

// GetBooking retrieves a booking by ID.
func (r *BookingRepository) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	if id == "" {
		return persistence.Booking{}, persistence.ErrNotFound
	}

	row := r.pool.db.QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE id = ?", id)
	booking, err := scanBooking(row)
	if err != nil {
		return persistence.Booking{}, mapError(err)
	}
	return booking, nil
}

// ListBookingsByRoomAndDate returns every booking for the room and day in any
// status, ordered by start time. Callers filter by status before overlap
// testing.
func (r *BookingRepository) ListBookingsByRoomAndDate(ctx context.Context, roomID, date string) ([]persistence.Booking, error) {
	return r.list(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE room_id = ? AND date = ? ORDER BY start_time ASC, id ASC",
		roomID, date)
}

// ListBookingsByUser returns every booking owned by the user, most recent day
// first.
func (r *BookingRepository) ListBookingsByUser(ctx context.Context, userID string) ([]persistence.Booking, error) {
	return r.list(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE user_id = ? ORDER BY date DESC, start_time ASC, id ASC",
		userID)
}

// CancelBooking marks the booking cancelled when id and owner match. The
// operation is idempotent: cancelling an already cancelled booking still
// succeeds as long as the id and owner match.
func (r *BookingRepository) CancelBooking(ctx context.Context, bookingID, userID string) (bool, error) {
	result, err := r.pool.db.ExecContext(ctx,
		"UPDATE bookings SET status = ? WHERE id = ? AND user_id = ?",
		persistence.BookingStatusCancelled, bookingID, userID)
	if err != nil {
		return false, mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}

// TransferBooking cancels the old booking and inserts the replacement in one
// transaction. A failure partway rolls back both steps.
func (r *BookingRepository) TransferBooking(ctx context.Context, oldBookingID string, replacement persistence.Booking) (persistence.Booking, error) {
	if replacement.ID == "" {
		return persistence.Booking{}, persistence.ErrConstraintViolation
	}

	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		return transferBookingTx(tx, oldBookingID, replacement)
	})
	if err != nil {
		return persistence.Booking{}, err
	}

	return r.GetBooking(ctx, replacement.ID)
}

func (r *BookingRepository) list(ctx context.Context, query string, args ...any) ([]persistence.Booking, error) {
	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var bookings []persistence.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, mapError(err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return bookings, nil
}

// transferBookingTx performs the cancel-and-recreate steps of a transfer
// inside an existing transaction. The old booking is cancelled regardless of
// its owner; a missing old booking aborts the transfer.
func transferBookingTx(tx *sql.Tx, oldBookingID string, replacement persistence.Booking) error {
	result, err := tx.Exec(
		"UPDATE bookings SET status = ? WHERE id = ?",
		persistence.BookingStatusCancelled, oldBookingID)
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

	conflicting, err := confirmedOverlapsTx(tx, replacement.RoomID, replacement.Date, replacement.StartTime, replacement.EndTime, oldBookingID)
	if err != nil {
		return err
	}
	if conflicting {
		return persistence.ErrConflict
	}

	return insertBookingTx(tx, replacement)
}

func insertBookingTx(tx *sql.Tx, booking persistence.Booking) error {
	_, err := tx.Exec(`
		INSERT INTO bookings (id, user_id, room_id, date, start_time, end_time, purpose, booking_type, team, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		booking.ID,
		booking.UserID,
		booking.RoomID,
		booking.Date,
		booking.StartTime,
		booking.EndTime,
		booking.Purpose,
		booking.BookingType,
		nullableString(booking.Team),
		booking.Status,
		formatTime(booking.CreatedAt),
	)
	return mapError(err)
}

// confirmedOverlapsTx reports whether any confirmed booking for the room and
// day overlaps the half-open [startTime, endTime) interval. excludeID skips a
// booking mid-transfer.
func confirmedOverlapsTx(tx *sql.Tx, roomID, date, startTime, endTime, excludeID string) (bool, error) {
	rows, err := tx.Query(
		"SELECT id, start_time, end_time FROM bookings WHERE room_id = ? AND date = ? AND status = ?",
		roomID, date, persistence.BookingStatusConfirmed)
	if err != nil {
		return false, mapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, existingStart, existingEnd string
		if err := rows.Scan(&id, &existingStart, &existingEnd); err != nil {
			return false, mapError(err)
		}
		if excludeID != "" && id == excludeID {
			continue
		}
		overlaps, err := timeslot.ClockOverlaps(startTime, endTime, existingStart, existingEnd)
		if err != nil {
			return false, persistence.ErrConstraintViolation
		}
		if overlaps {
			return true, nil
		}
	}

	return false, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (persistence.Booking, error) {
	var booking persistence.Booking
	var team sql.NullString
	var createdAt string

	err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.RoomID,
		&booking.Date,
		&booking.StartTime,
		&booking.EndTime,
		&booking.Purpose,
		&booking.BookingType,
		&team,
		&booking.Status,
		&createdAt,
	)
	if err != nil {
		return persistence.Booking{}, err
	}

	booking.Team = stringPointer(team)
	if booking.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Booking{}, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return booking, nil
}
