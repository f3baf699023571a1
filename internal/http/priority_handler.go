package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/room-booking/internal/application"
)

type priorityService interface {
	CreateRequest(ctx context.Context, params application.CreatePriorityRequestParams) (application.PriorityRequest, error)
	ListRequests(ctx context.Context, principal application.Principal, status string) ([]application.PriorityRequest, error)
	ListOwnRequests(ctx context.Context, principal application.Principal) ([]application.PriorityRequest, error)
	Approve(ctx context.Context, params application.ApprovePriorityRequestParams) (application.PriorityRequest, error)
	Reject(ctx context.Context, params application.RejectPriorityRequestParams) (application.PriorityRequest, error)
}

type PriorityHandler struct {
	service   priorityService
	responder responder
	logger    *slog.Logger
}

func NewPriorityHandler(service priorityService, logger *slog.Logger) *PriorityHandler {
	base := defaultLogger(logger)
	return &PriorityHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *PriorityHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "PriorityHandler", operation, attrs...)
}

func (h *PriorityHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	var req priorityRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "CreateRequest", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode priority request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "CreateRequest", "user_id", principal.UserID, "conflict_booking_id", req.ConflictBookingID)

	request, err := h.service.CreateRequest(r.Context(), application.CreatePriorityRequestParams{
		Principal: principal,
		Input: application.PriorityRequestInput{
			ConflictBookingID: strings.TrimSpace(req.ConflictBookingID),
			Reason:            strings.TrimSpace(req.Reason),
		},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "priority request submission failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("request_id", request.ID).InfoContext(r.Context(), "priority request submitted")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, newPriorityRequestPayload(request))
}

// ListOwnRequests returns the caller's own escalations.
func (h *PriorityHandler) ListOwnRequests(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	requests, err := h.service.ListOwnRequests(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "ListOwnRequests", "user_id", principal.UserID).ErrorContext(r.Context(), "failed to list priority requests", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, newPriorityRequestPayloads(requests))
}

// ListRequests returns all escalations, optionally filtered by status.
func (h *PriorityHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	status := strings.TrimSpace(r.URL.Query().Get("status"))
	requests, err := h.service.ListRequests(r.Context(), principal, status)
	if err != nil {
		h.log(r.Context(), "ListRequests", "user_id", principal.UserID, "status", status).ErrorContext(r.Context(), "failed to list priority requests", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, newPriorityRequestPayloads(requests))
}

func (h *PriorityHandler) ApproveRequest(w http.ResponseWriter, r *http.Request, requestID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	trimmed := strings.TrimSpace(requestID)
	if trimmed == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRequestID)
		return
	}

	var req approveRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "ApproveRequest", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode approval request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "ApproveRequest", "user_id", principal.UserID, "request_id", trimmed)

	request, err := h.service.Approve(r.Context(), application.ApprovePriorityRequestParams{
		Principal:  principal,
		RequestID:  trimmed,
		NewBooking: req.NewBookingData.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "priority request approval failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "priority request approved")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, newPriorityRequestPayload(request))
}

func (h *PriorityHandler) RejectRequest(w http.ResponseWriter, r *http.Request, requestID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	trimmed := strings.TrimSpace(requestID)
	if trimmed == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRequestID)
		return
	}

	logger := h.log(r.Context(), "RejectRequest", "user_id", principal.UserID, "request_id", trimmed)

	request, err := h.service.Reject(r.Context(), application.RejectPriorityRequestParams{
		Principal: principal,
		RequestID: trimmed,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "priority request rejection failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "priority request rejected")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, newPriorityRequestPayload(request))
}

func newPriorityRequestPayloads(requests []application.PriorityRequest) []priorityRequestPayload {
	payload := make([]priorityRequestPayload, 0, len(requests))
	for _, request := range requests {
		payload = append(payload, newPriorityRequestPayload(request))
	}
	return payload
}

type priorityRequestBody struct {
	ConflictBookingID string `json:"conflictBookingId"`
	Reason            string `json:"reason"`
}

type approveRequestBody struct {
	NewBookingData bookingRequest `json:"newBookingData"`
}
