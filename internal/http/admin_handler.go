package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/room-booking/internal/application"
)

type userService interface {
	List(ctx context.Context, principal application.Principal) ([]application.User, error)
	UpdateRole(ctx context.Context, principal application.Principal, id, role string) error
	UpdateStatus(ctx context.Context, principal application.Principal, id string, isActive bool) error
}

type notificationService interface {
	List(ctx context.Context, principal application.Principal) ([]application.AdminNotification, error)
	MarkRead(ctx context.Context, principal application.Principal, id string) error
}

// AdminHandler serves the administrator-only account and notification endpoints.
type AdminHandler struct {
	users         userService
	notifications notificationService
	responder     responder
	logger        *slog.Logger
}

func NewAdminHandler(users userService, notifications notificationService, logger *slog.Logger) *AdminHandler {
	base := defaultLogger(logger)
	return &AdminHandler{
		users:         users,
		notifications: notifications,
		responder:     newResponder(base),
		logger:        base,
	}
}

func (h *AdminHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AdminHandler", operation, attrs...)
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.users == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	users, err := h.users.List(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "ListUsers", "user_id", principal.UserID).ErrorContext(r.Context(), "failed to list users", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	payload := make([]userPayload, 0, len(users))
	for _, user := range users {
		payload = append(payload, newUserPayload(user))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, payload)
}

func (h *AdminHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request, userID string) {
	if h == nil || h.users == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "UpdateUserRole", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode role request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "UpdateUserRole", "actor_id", principal.UserID, "target_id", userID, "role", req.Role)

	if err := h.users.UpdateRole(r.Context(), principal, strings.TrimSpace(userID), strings.TrimSpace(req.Role)); err != nil {
		logger.ErrorContext(r.Context(), "role update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "user role updated")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *AdminHandler) UpdateUserStatus(w http.ResponseWriter, r *http.Request, userID string) {
	if h == nil || h.users == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "UpdateUserStatus", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode status request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "UpdateUserStatus", "actor_id", principal.UserID, "target_id", userID, "is_active", req.IsActive)

	if err := h.users.UpdateStatus(r.Context(), principal, strings.TrimSpace(userID), req.IsActive); err != nil {
		logger.ErrorContext(r.Context(), "status update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "user status updated")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *AdminHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.notifications == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	notifications, err := h.notifications.List(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "ListNotifications", "user_id", principal.UserID).ErrorContext(r.Context(), "failed to list notifications", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	payload := make([]notificationPayload, 0, len(notifications))
	for _, notification := range notifications {
		payload = append(payload, newNotificationPayload(notification))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, payload)
}

func (h *AdminHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request, notificationID string) {
	if h == nil || h.notifications == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	logger := h.log(r.Context(), "MarkNotificationRead", "user_id", principal.UserID, "notification_id", notificationID)

	if err := h.notifications.MarkRead(r.Context(), principal, strings.TrimSpace(notificationID)); err != nil {
		logger.ErrorContext(r.Context(), "failed to mark notification read", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "notification marked read")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type roleRequest struct {
	Role string `json:"role"`
}

type statusRequest struct {
	IsActive bool `json:"isActive"`
}
