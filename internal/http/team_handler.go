package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/room-booking/internal/application"
)

type teamService interface {
	List(ctx context.Context, principal application.Principal, includeInactive bool) ([]application.Team, error)
	Create(ctx context.Context, principal application.Principal, input application.TeamInput) (application.Team, error)
	Update(ctx context.Context, principal application.Principal, id string, input application.TeamInput) error
	Deactivate(ctx context.Context, principal application.Principal, id string) error
}

type TeamHandler struct {
	service   teamService
	responder responder
	logger    *slog.Logger
}

func NewTeamHandler(service teamService, logger *slog.Logger) *TeamHandler {
	base := defaultLogger(logger)
	return &TeamHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *TeamHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "TeamHandler", operation, attrs...)
}

func (h *TeamHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
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
	teams, err := h.service.List(r.Context(), principal, includeInactive)
	if err != nil {
		h.log(r.Context(), "ListTeams", "user_id", principal.UserID).ErrorContext(r.Context(), "failed to list teams", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	payload := make([]teamPayload, 0, len(teams))
	for _, team := range teams {
		payload = append(payload, newTeamPayload(team))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, payload)
}

func (h *TeamHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	var req teamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "CreateTeam", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode team request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "CreateTeam", "user_id", principal.UserID, "name", req.Name)

	team, err := h.service.Create(r.Context(), principal, application.TeamInput{Name: strings.TrimSpace(req.Name)})
	if err != nil {
		logger.ErrorContext(r.Context(), "team creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("team_id", team.ID).InfoContext(r.Context(), "team created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, newTeamPayload(team))
}

func (h *TeamHandler) UpdateTeam(w http.ResponseWriter, r *http.Request, teamID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	var req teamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "UpdateTeam", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode team request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "UpdateTeam", "user_id", principal.UserID, "team_id", teamID)

	if err := h.service.Update(r.Context(), principal, strings.TrimSpace(teamID), application.TeamInput{Name: strings.TrimSpace(req.Name)}); err != nil {
		logger.ErrorContext(r.Context(), "team update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "team updated")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *TeamHandler) DeactivateTeam(w http.ResponseWriter, r *http.Request, teamID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	logger := h.log(r.Context(), "DeactivateTeam", "user_id", principal.UserID, "team_id", teamID)

	if err := h.service.Deactivate(r.Context(), principal, strings.TrimSpace(teamID)); err != nil {
		logger.ErrorContext(r.Context(), "team deactivation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "team deactivated")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type teamRequest struct {
	Name string `json:"name"`
}
