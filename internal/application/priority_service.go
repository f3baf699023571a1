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

// PriorityRequestRepository captures the persistence interactions needed by
// the priority workflow.
type PriorityRequestRepository interface {
	CreatePriorityRequest(ctx context.Context, request persistence.PriorityRequest) (persistence.PriorityRequest, error)
	GetPriorityRequest(ctx context.Context, id string) (persistence.PriorityRequest, error)
	ListPriorityRequests(ctx context.Context, status string) ([]persistence.PriorityRequest, error)
	ResolvePriorityRequest(ctx context.Context, requestID, status, reviewerID string, reviewedAt time.Time, transfer *persistence.BookingTransfer) error
}

// NotificationSink receives admin notifications emitted by workflows. Sink
// failures must never abort the primary operation; callers log and discard
// them.
type NotificationSink interface {
	Publish(ctx context.Context, notification AdminNotification) error
}

// EmailDispatcher sends workflow emails. Like the notification sink, failures
// are logged and discarded.
type EmailDispatcher interface {
	SendPriorityRequestSubmitted(ctx context.Context, request PriorityRequest) error
	SendPriorityRequestResolved(ctx context.Context, request PriorityRequest) error
}

/// PriorityService runs the escalation workflow: submission by users, terminal
// approve/reject decisions by administrators.
type PriorityService struct {
	requests      PriorityRequestRepository
	rooms         RoomCatalog
	notifications NotificationSink
	email         EmailDispatcher
	idGenerator   func() string
	now           func() time.Time
	logger        *slog.Logger
}

// NewPriorityService wires dependencies for the priority workflow.
func NewPriorityService(requests PriorityRequestRepository, rooms RoomCatalog, notifications NotificationSink, email EmailDispatcher, idGenerator func() string, now func() time.Time) *PriorityService {
	return NewPriorityServiceWithLogger(requests, rooms, notifications, email, idGenerator, now, nil)
}

// NewPriorityServiceWithLogger constructs a PriorityService with a specified logger.
func NewPriorityServiceWithLogger(requests PriorityRequestRepository, rooms RoomCatalog, notifications NotificationSink, email EmailDispatcher, idGenerator func() string, now func() time.Time, logger *slog.Logger) *PriorityService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &PriorityService{
		requests:      requests,
		rooms:         rooms,
		notifications: notifications,
		email:         email,
		idGenerator:   idGenerator,
		now:           now,
		logger:        defaultLogger(logger),
	}
}

func (s *PriorityService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "PriorityService", operation, attrs...)
}

// CreateRequest submits a pending escalation against a conflicting booking.
// The contested booking is referenced by ID only; it may already be cancelled
// by the time an administrator reviews the request.
func (s *PriorityService) CreateRequest(ctx context.Context, params CreatePriorityRequestParams) (request PriorityRequest, err error) {
	if s == nil {
		err = fmt.Errorf("PriorityService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateRequest",
		"user_id", params.Principal.UserID,
		"conflict_booking_id", params.Input.ConflictBookingID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "priority request submission failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("request_id", request.ID).InfoContext(ctx, "priority request submitted")
	}()

	if params.Principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(params.Input.ConflictBookingID) == "" {
		vErr.add("conflictBookingId", "conflicting booking id is required")
	}
	if strings.TrimSpace(params.Input.Reason) == "" {
		vErr.add("reason", "reason is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	record := persistence.PriorityRequest{
		ID:                s.idGenerator(),
		RequesterID:       params.Principal.UserID,
		ConflictBookingID: params.Input.ConflictBookingID,
		Reason:            strings.TrimSpace(params.Input.Reason),
		Status:            persistence.PriorityStatusPending,
		CreatedAt:         s.now(),
	}

	persisted, createErr := s.requests.CreatePriorityRequest(ctx, record)
	if createErr != nil {
		err = mapBookingRepoError(createErr)
		return
	}
	request = priorityRequestFromPersistence(persisted)

	s.publishSubmission(ctx, logger, request)
	return
}

// ListRequests returns escalation requests for administrative review. An
// empty status lists all requests.
func (s *PriorityService) ListRequests(ctx context.Context, principal Principal, status string) ([]PriorityRequest, error) {
	if s == nil {
		return nil, fmt.Errorf("PriorityService is nil")
	}
	if !principal.IsAdmin {
		return nil, ErrUnauthorized
	}

	records, err := s.requests.ListPriorityRequests(ctx, status)
	if err != nil {
		return nil, err
	}

	requests := make([]PriorityRequest, 0, len(records))
	for _, record := range records {
		requests = append(requests, priorityRequestFromPersistence(record))
	}
	return requests, nil
}

// ListOwnRequests returns the requests submitted by the caller.
func (s *PriorityService) ListOwnRequests(ctx context.Context, principal Principal) ([]PriorityRequest, error) {
	if s == nil {
		return nil, fmt.Errorf("PriorityService is nil")
	}
	if principal.UserID == "" {
		return nil, ErrUnauthorized
	}

	records, err := s.requests.ListPriorityRequests(ctx, "")
	if err != nil {
		return nil, err
	}

	var requests []PriorityRequest
	for _, record := range records {
		if record.RequesterID != principal.UserID {
			continue
		}
		requests = append(requests, priorityRequestFromPersistence(record))
	}
	return requests, nil
}

// Approve resolves a pending request in the requester's favour: the contested
// booking is cancelled and the supplied replacement is created for the
// requester, all in one transaction with the status change.
func (s *PriorityService) Approve(ctx context.Context, params ApprovePriorityRequestParams) (request PriorityRequest, err error) {
	if s == nil {
		err = fmt.Errorf("PriorityService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Approve",
		"user_id", params.Principal.UserID,
		"request_id", params.RequestID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "priority request approval failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "priority request approved")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	input := params.NewBooking
	vErr := &ValidationError{}
	validateSlot(input.RoomID, input.Date, input.StartTime, input.EndTime, vErr)
	validateBookingDetails(&input, vErr)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if err = s.ensureRoomBookable(ctx, input.RoomID); err != nil {
		return
	}

	var pending persistence.PriorityRequest
	pending, err = s.requests.GetPriorityRequest(ctx, params.RequestID)
	if err != nil {
		err = mapPriorityRepoError(err)
		return
	}

	transfer := &persistence.BookingTransfer{
		OldBookingID: pending.ConflictBookingID,
		Replacement: persistence.Booking{
			ID:          s.idGenerator(),
			UserID:      pending.RequesterID,
			RoomID:      input.RoomID,
			Date:        input.Date,
			StartTime:   input.StartTime,
			EndTime:     input.EndTime,
			Purpose:     strings.TrimSpace(input.Purpose),
			BookingType: input.BookingType,
			Team:        copyStringPtr(input.Team),
			Status:      persistence.BookingStatusConfirmed,
			CreatedAt:   s.now(),
		},
	}

	err = s.requests.ResolvePriorityRequest(ctx, params.RequestID, persistence.PriorityStatusApproved, params.Principal.UserID, s.now(), transfer)
	if err != nil {
		err = mapPriorityRepoError(err)
		return
	}

	request, err = s.reloadResolved(ctx, logger, params.RequestID)
	return
}

// Reject resolves a pending request without touching any booking.
func (s *PriorityService) Reject(ctx context.Context, params RejectPriorityRequestParams) (request PriorityRequest, err error) {
	if s == nil {
		err = fmt.Errorf("PriorityService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Reject",
		"user_id", params.Principal.UserID,
		"request_id", params.RequestID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "priority request rejection failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "priority request rejected")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	err = s.requests.ResolvePriorityRequest(ctx, params.RequestID, persistence.PriorityStatusRejected, params.Principal.UserID, s.now(), nil)
	if err != nil {
		err = mapPriorityRepoError(err)
		return
	}

	request, err = s.reloadResolved(ctx, logger, params.RequestID)
	return
}

func (s *PriorityService) ensureRoomBookable(ctx context.Context, roomID string) error {
	if s.rooms == nil {
		return nil
	}
	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			vErr := &ValidationError{}
			vErr.add("roomId", "room does not exist")
			return vErr
		}
		return err
	}
	if !room.IsActive {
		vErr := &ValidationError{}
		vErr.add("roomId", "room is not available")
		return vErr
	}
	return nil
}

func (s *PriorityService) reloadResolved(ctx context.Context, logger *slog.Logger, requestID string) (PriorityRequest, error) {
	record, err := s.requests.GetPriorityRequest(ctx, requestID)
	if err != nil {
		return PriorityRequest{}, mapPriorityRepoError(err)
	}
	request := priorityRequestFromPersistence(record)

	if s.email != nil {
		if emailErr := s.email.SendPriorityRequestResolved(ctx, request); emailErr != nil {
			logger.WarnContext(ctx, "priority resolution email failed", "error", emailErr)
		}
	}
	return request, nil
}

func (s *PriorityService) publishSubmission(ctx context.Context, logger *slog.Logger, request PriorityRequest) {
	if s.notifications != nil {
		notification := AdminNotification{
			ID:        s.idGenerator(),
			Type:      persistence.NotificationTypePriorityRequest,
			Title:     "New priority request",
			Message:   fmt.Sprintf("A priority request was submitted against booking %s", request.ConflictBookingID),
			RelatedID: &request.ID,
			CreatedAt: s.now(),
		}
		if sinkErr := s.notifications.Publish(ctx, notification); sinkErr != nil {
			logger.WarnContext(ctx, "priority request notification failed", "error", sinkErr)
		}
	}

	if s.email != nil {
		if emailErr := s.email.SendPriorityRequestSubmitted(ctx, request); emailErr != nil {
			logger.WarnContext(ctx, "priority request email failed", "error", emailErr)
		}
	}
}

func mapPriorityRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrConstraintViolation):
		return ErrInvalidStateTransition
	case errors.Is(err, persistence.ErrConflict):
		return ErrConflict
	case errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	default:
		return err
	}
}
