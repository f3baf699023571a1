package migration

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"
)

// Manager applies pending migrations against a database handle.
type Manager struct {
	db *sql.DB
}

// NewManager creates a migration manager for the provided database.
func NewManager(db *sql.DB) *Manager {
	return &Manager{db: db}
}

// Apply runs every migration whose version is newer than the recorded schema
// version. Each migration executes inside its own transaction together with
// the version bookkeeping, so a failure leaves the schema at the last fully
// applied version.
func (m *Manager) Apply(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	current, err := m.currentVersion(ctx)
	if err != nil {
		return err
	}

	migrations := All()
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	for _, mig := range migrations {
		if mig.Version <= current {
			continue
		}
		if err := m.applyOne(ctx, mig); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", mig.Version, mig.Name, err)
		}
	}

	return nil
}

// Version reports the highest applied migration version.
func (m *Manager) Version(ctx context.Context) (int, error) {
	return m.currentVersion(ctx)
}

func (m *Manager) currentVersion(ctx context.Context) (int, error) {
	var version sql.NullInt64
	err := m.db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	if !version.Valid {
		return 0, nil
	}
	return int(version.Int64), nil
}

func (m *Manager) applyOne(ctx context.Context, mig Migration) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(mig.SQL); err != nil {
		_ = tx.Rollback()
		return err
	}

	if _, err := tx.Exec(
		"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
		mig.Version, mig.Name, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}
