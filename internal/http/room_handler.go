package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/room-booking/internal/application"
)

type roomService interface {
	List(ctx context.Context, principal application.Principal, includeInactive bool) ([]application.Room, error)
	Create(ctx context.Context, principal application.Principal, input application.RoomInput) (application.Room, error)
	Update(ctx context.Context, principal application.Principal, id string, input application.RoomInput) (application.Room, error)
	Deactivate(ctx context.Context, principal application.Principal, id string) error
}

type RoomHandler struct {
	service   roomService
	responder responder
	logger    *slog.Logger
}

func NewRoomHandler(service roomService, logger *slog.Logger) *RoomHandler {
	base := defaultLogger(logger)
	return &RoomHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *RoomHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RoomHandler", operation, attrs...)
}

func (h *RoomHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	includeInactive := r.URL.Query().Get("includeInactive") == "true"
	rooms, err := h.service.List(r.Context(), principal, includeInactive)
	if err != nil {
		h.log(r.Context(), "ListRooms", "user_id", principal.UserID).ErrorContext(r.Context(), "failed to list rooms", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	payload := make([]roomPayload, 0, len(rooms))
	for _, room := range rooms {
		payload = append(payload, newRoomPayload(room))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, payload)
}

func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "CreateRoom", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode room request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "CreateRoom", "user_id", principal.UserID, "name", req.Name)

	room, err := h.service.Create(r.Context(), principal, application.RoomInput{
		Name:     strings.TrimSpace(req.Name),
		Capacity: req.Capacity,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "room creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("room_id", room.ID).InfoContext(r.Context(), "room created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, newRoomPayload(room))
}

func (h *RoomHandler) UpdateRoom(w http.ResponseWriter, r *http.Request, roomID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "UpdateRoom", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode room request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "UpdateRoom", "user_id", principal.UserID, "room_id", roomID)

	room, err := h.service.Update(r.Context(), principal, strings.TrimSpace(roomID), application.RoomInput{
		Name:     strings.TrimSpace(req.Name),
		Capacity: req.Capacity,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "room update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "room updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, newRoomPayload(room))
}

func (h *RoomHandler) DeactivateRoom(w http.ResponseWriter, r *http.Request, roomID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	logger := h.log(r.Context(), "DeactivateRoom", "user_id", principal.UserID, "room_id", roomID)

	if err := h.service.Deactivate(r.Context(), principal, strings.TrimSpace(roomID)); err != nil {
		logger.ErrorContext(r.Context(), "room deactivation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "room deactivated")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type roomRequest struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}
