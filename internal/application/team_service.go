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

// TeamRepository captures the persistence interactions needed by the team service.
type TeamRepository interface {
	CreateTeam(ctx context.Context, team persistence.Team) error
	ListTeams(ctx context.Context, includeInactive bool) ([]persistence.Team, error)
	UpdateTeam(ctx context.Context, team persistence.Team) error
	DeactivateTeam(ctx context.Context, id string) error
}

// TeamService manages the team directory.
type TeamService struct {
	teams       TeamRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewTeamService wires dependencies for team management.
func NewTeamService(teams TeamRepository, idGenerator func() string, now func() time.Time) *TeamService {
	return NewTeamServiceWithLogger(teams, idGenerator, now, nil)
}

// NewTeamServiceWithLogger constructs a TeamService with a specified logger.
func NewTeamServiceWithLogger(teams TeamRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *TeamService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &TeamService{
		teams:       teams,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *TeamService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "TeamService", operation, attrs...)
}

// List returns the active teams. Administrators may include deactivated teams.
func (s *TeamService) List(ctx context.Context, principal Principal, includeInactive bool) ([]Team, error) {
	if s == nil {
		return nil, fmt.Errorf("TeamService is nil")
	}
	if includeInactive && !principal.IsAdmin {
		return nil, ErrUnauthorized
	}

	records, err := s.teams.ListTeams(ctx, includeInactive)
	if err != nil {
		return nil, err
	}

	teams := make([]Team, 0, len(records))
	for _, record := range records {
		teams = append(teams, teamFromPersistence(record))
	}
	return teams, nil
}

// Create adds a team to the directory.
func (s *TeamService) Create(ctx context.Context, principal Principal, input TeamInput) (team Team, err error) {
	if s == nil {
		err = fmt.Errorf("TeamService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Create", "user_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "team creation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("team_id", team.ID).InfoContext(ctx, "team created")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if strings.TrimSpace(input.Name) == "" {
		vErr := &ValidationError{}
		vErr.add("name", "name is required")
		err = vErr
		return
	}

	record := persistence.Team{
		ID:        s.idGenerator(),
		Name:      strings.TrimSpace(input.Name),
		IsActive:  true,
		CreatedAt: s.now(),
	}
	if createErr := s.teams.CreateTeam(ctx, record); createErr != nil {
		err = mapDirectoryRepoError(createErr)
		return
	}

	team = teamFromPersistence(record)
	return
}

// Update renames a team.
func (s *TeamService) Update(ctx context.Context, principal Principal, id string, input TeamInput) (err error) {
	if s == nil {
		return fmt.Errorf("TeamService is nil")
	}

	logger := s.loggerWith(ctx, "Update", "user_id", principal.UserID, "team_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "team update failed", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if strings.TrimSpace(input.Name) == "" {
		vErr := &ValidationError{}
		vErr.add("name", "name is required")
		return vErr
	}

	err = mapDirectoryRepoError(s.teams.UpdateTeam(ctx, persistence.Team{
		ID:   id,
		Name: strings.TrimSpace(input.Name),
	}))
	return
}

// Deactivate soft-deletes a team.
func (s *TeamService) Deactivate(ctx context.Context, principal Principal, id string) (err error) {
	if s == nil {
		return fmt.Errorf("TeamService is nil")
	}

	logger := s.loggerWith(ctx, "Deactivate", "user_id", principal.UserID, "team_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "team deactivation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "team deactivated")
	}()

	if !principal.IsAdmin {
		return ErrUnauthorized
	}

	err = mapDirectoryRepoError(s.teams.DeactivateTeam(ctx, id))
	return
}

// Seed creates the given teams unless the directory already has entries.
func (s *TeamService) Seed(ctx context.Context, inputs []TeamInput) error {
	if s == nil {
		return fmt.Errorf("TeamService is nil")
	}

	existing, err := s.teams.ListTeams(ctx, true)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	for _, input := range inputs {
		record := persistence.Team{
			ID:        s.idGenerator(),
			Name:      strings.TrimSpace(input.Name),
			IsActive:  true,
			CreatedAt: s.now(),
		}
		if err := s.teams.CreateTeam(ctx, record); err != nil && !errors.Is(err, persistence.ErrDuplicate) {
			return err
		}
	}
	return nil
}
