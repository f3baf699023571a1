package sqlite

import (
	"context"
	"fmt"

	"github.com/example/room-booking/internal/persistence"
)

// TeamRepository implements persistence.TeamRepository using SQLite.
type TeamRepository struct {
	pool *ConnectionPool
}

// NewTeamRepository creates a new SQLite team repository.
func NewTeamRepository(pool *ConnectionPool) *TeamRepository {
	return &TeamRepository{pool: pool}
}

// CreateTeam inserts a new team. A duplicate name yields ErrDuplicate.
func (r *TeamRepository) CreateTeam(ctx context.Context, team persistence.Team) error {
	if team.ID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.pool.db.ExecContext(ctx,
		"INSERT INTO teams (id, name, is_active, created_at) VALUES (?, ?, ?, ?)",
		team.ID, team.Name, team.IsActive, formatTime(team.CreatedAt))
	return mapError(err)
}

// ListTeams returns teams ordered by name. Deactivated teams are included
// only when includeInactive is set.
func (r *TeamRepository) ListTeams(ctx context.Context, includeInactive bool) ([]persistence.Team, error) {
	query := "SELECT id, name, is_active, created_at FROM teams WHERE is_active = 1 ORDER BY name ASC"
	if includeInactive {
		query = "SELECT id, name, is_active, created_at FROM teams ORDER BY name ASC"
	}

	rows, err := r.pool.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var teams []persistence.Team
	for rows.Next() {
		var team persistence.Team
		var createdAt string
		if err := rows.Scan(&team.ID, &team.Name, &team.IsActive, &createdAt); err != nil {
			return nil, mapError(err)
		}
		if team.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		teams = append(teams, team)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return teams, nil
}

// UpdateTeam replaces the team's name.
func (r *TeamRepository) UpdateTeam(ctx context.Context, team persistence.Team) error {
	return r.exec(ctx, "UPDATE teams SET name = ? WHERE id = ?", team.Name, team.ID)
}

// DeactivateTeam soft-deletes the team.
func (r *TeamRepository) DeactivateTeam(ctx context.Context, id string) error {
	return r.exec(ctx, "UPDATE teams SET is_active = 0 WHERE id = ?", id)
}

func (r *TeamRepository) exec(ctx context.Context, query string, args ...any) error {
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
