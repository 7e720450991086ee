// Package runstore persists one summary row per tool invocation to a local
// sqlite database, so partial-success stats survive beyond console output.
package runstore

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/penlab-data/synth.dataset/internal/monitoring"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Run is one recorded tool invocation.
type Run struct {
	ID        string
	Tool      string
	StartedAt time.Time
	Duration  time.Duration

	ImagesOK       int
	ImagesFailed   int
	ObjectsPlaced  int
	ObjectsSkipped int

	Notes string
}

// Store wraps the runs database.
type Store struct {
	*sql.DB
}

// Open opens (creating if needed) the runs database at path and applies any
// pending schema migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open run store: %w", err)
	}

	s := &Store{db}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// migrateUp applies the embedded migrations to the latest version.
// No-op when the schema is already current.
func (s *Store) migrateUp() error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	driver, err := sqlite.WithInstance(s.DB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}

	// Not closed: closing the migrate instance would close the underlying
	// DB connection.
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	m.Log = &migrateLogger{}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// migrateLogger implements migrate.Logger.
type migrateLogger struct{}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	monitoring.Logf("[migrate] "+format, v...)
}

func (l *migrateLogger) Verbose() bool { return false }

// RecordRun inserts one run row, assigning a fresh run ID when none is set.
// Returns the run ID.
func (s *Store) RecordRun(r Run) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}

	_, err := s.Exec(`
		INSERT INTO runs (
			run_id, tool, started_at, duration_ms,
			images_ok, images_failed, objects_placed, objects_skipped, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Tool, r.StartedAt.UTC(), r.Duration.Milliseconds(),
		r.ImagesOK, r.ImagesFailed, r.ObjectsPlaced, r.ObjectsSkipped, r.Notes,
	)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	return r.ID, nil
}

// RecentRuns returns up to limit runs for a tool, newest first. An empty tool
// matches all tools.
func (s *Store) RecentRuns(tool string, limit int) ([]Run, error) {
	rows, err := s.Query(`
		SELECT run_id, tool, started_at, duration_ms,
		       images_ok, images_failed, objects_placed, objects_skipped, notes
		FROM runs
		WHERE (? = '' OR tool = ?)
		ORDER BY started_at DESC, run_id
		LIMIT ?`,
		tool, tool, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var durationMs int64
		if err := rows.Scan(
			&r.ID, &r.Tool, &r.StartedAt, &durationMs,
			&r.ImagesOK, &r.ImagesFailed, &r.ObjectsPlaced, &r.ObjectsSkipped, &r.Notes,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
