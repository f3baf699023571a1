package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// PriorityRequestRepository implements persistence.PriorityRequestRepository
// using SQLite.
type PriorityRequestRepository struct {
	pool *ConnectionPool
}

// NewPriorityRequestRepository creates a new SQLite priority request
// repository.
func NewPriorityRequestRepository(pool *ConnectionPool) *PriorityRequestRepository {
	return &PriorityRequestRepository{pool: pool}
}

const priorityColumns = "id, requester_id, conflict_booking_id, reason, status, reviewed_by, reviewed_at, created_at"

// CreatePriorityRequest inserts a pending priority request.
func (r *PriorityRequestRepository) CreatePriorityRequest(ctx context.Context, request persistence.PriorityRequest) (persistence.PriorityRequest, error) {
	if request.ID == "" {
		return persistence.PriorityRequest{}, persistence.ErrConstraintViolation
	}

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO priority_requests (id, requester_id, conflict_booking_id, reason, status, reviewed_by, reviewed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		request.ID,
		request.RequesterID,
		request.ConflictBookingID,
		request.Reason,
		request.Status,
		nullableString(request.ReviewedBy),
		nullableTime(request.ReviewedAt),
		formatTime(request.CreatedAt),
	)
	if err != nil {
		return persistence.PriorityRequest{}, mapError(err)
	}

	return r.GetPriorityRequest(ctx, request.ID)
}

// GetPriorityRequest retrieves a priority request by ID.
func (r *PriorityRequestRepository) GetPriorityRequest(ctx context.Context, id string) (persistence.PriorityRequest, error) {
	if id == "" {
		return persistence.PriorityRequest{}, persistence.ErrNotFound
	}

	row := r.pool.db.QueryRowContext(ctx,
		"SELECT "+priorityColumns+" FROM priority_requests WHERE id = ?", id)
	request, err := scanPriorityRequest(row)
	if err != nil {
		return persistence.PriorityRequest{}, mapError(err)
	}
	return request, nil
}

// ListPriorityRequests returns every priority request, newest first. An empty
// status lists all; otherwise only requests in that status.
func (r *PriorityRequestRepository) ListPriorityRequests(ctx context.Context, status string) ([]persistence.PriorityRequest, error) {
	query := "SELECT " + priorityColumns + " FROM priority_requests ORDER BY created_at DESC, id ASC"
	args := []any{}
	if status != "" {
		query = "SELECT " + priorityColumns + " FROM priority_requests WHERE status = ? ORDER BY created_at DESC, id ASC"
		args = append(args, status)
	}

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var requests []persistence.PriorityRequest
	for rows.Next() {
		request, err := scanPriorityRequest(rows)
		if err != nil {
			return nil, mapError(err)
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return requests, nil
}

// ResolvePriorityRequest moves a pending request into a terminal status and,
// when a transfer is supplied, cancels the displaced booking and inserts its
// replacement in the same transaction. A request no longer pending yields
// persistence.ErrConstraintViolation.
func (r *PriorityRequestRepository) ResolvePriorityRequest(ctx context.Context, requestID, status, reviewerID string, reviewedAt time.Time, transfer *persistence.BookingTransfer) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var current string
		err := tx.QueryRow("SELECT status FROM priority_requests WHERE id = ?", requestID).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.ErrNotFound
		}
		if err != nil {
			return mapError(err)
		}
		if current != persistence.PriorityStatusPending {
			return persistence.ErrConstraintViolation
		}

		_, err = tx.Exec(
			"UPDATE priority_requests SET status = ?, reviewed_by = ?, reviewed_at = ? WHERE id = ?",
			status, reviewerID, formatTime(reviewedAt), requestID)
		if err != nil {
			return mapError(err)
		}

		if transfer != nil {
			return transferBookingTx(tx, transfer.OldBookingID, transfer.Replacement)
		}
		return nil
	})
}

func scanPriorityRequest(row rowScanner) (persistence.PriorityRequest, error) {
	var request persistence.PriorityRequest
	var reviewedBy sql.NullString
	var reviewedAt sql.NullString
	var createdAt string

	err := row.Scan(
		&request.ID,
		&request.RequesterID,
		&request.ConflictBookingID,
		&request.Reason,
		&request.Status,
		&reviewedBy,
		&reviewedAt,
		&createdAt,
	)
	if err != nil {
		return persistence.PriorityRequest{}, err
	}

	request.ReviewedBy = stringPointer(reviewedBy)
	if request.ReviewedAt, err = timePointer(reviewedAt); err != nil {
		return persistence.PriorityRequest{}, fmt.Errorf("failed to parse reviewed_at: %w", err)
	}
	if request.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.PriorityRequest{}, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return request, nil
}
