/*
Package sqlite provides a SQLite-backed implementation of project.Store.

PURPOSE:
  Keeps a library of saved projects so the API can recompute their
  schedules on demand. Each row holds the project's inputs as a JSON
  document; computed schedules are never written.

KEY TABLES:
  projects: id, name, inputs_json, created_at, updated_at

INDEXES:
  - idx_projects_created_at: newest-first listing

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. SQLite allows one writer at a time
  and the mutex keeps readers from observing a half-applied update.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/viability.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  rec, err := store.Create(ctx, inputs)

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - project/store.go: Store interface
  - store/memory: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/viability/project"
)

// timeFormat is fixed-width so created_at sorts lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z"

// Store implements project.Store using SQLite.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

var _ project.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each connection to ":memory:" is its own database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		inputs_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_projects_created_at
		ON projects(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PROJECT STORE
// =============================================================================

// Create assigns a new ID and saves the inputs.
func (s *Store) Create(ctx context.Context, in project.Inputs) (*project.Record, error) {
	doc, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("failed to encode inputs: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	rec := &project.Record{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Inputs:    in,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO projects (id, name, inputs_json, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		rec.ID, rec.Name, string(doc), now.Format(timeFormat), now.Format(timeFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert project: %w", err)
	}
	return rec, nil
}

// Update replaces the inputs of an existing project.
func (s *Store) Update(ctx context.Context, id string, in project.Inputs) (*project.Record, error) {
	doc, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("failed to encode inputs: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	res, err := s.db.ExecContext(ctx,
		"UPDATE projects SET name = ?, inputs_json = ?, updated_at = ? WHERE id = ?",
		in.Name, string(doc), now.Format(timeFormat), id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	if err := requireRow(res, id); err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

// Get retrieves a project by ID.
func (s *Store) Get(ctx context.Context, id string) (*project.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(ctx, id)
}

func (s *Store) get(ctx context.Context, id string) (*project.Record, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, inputs_json, created_at, updated_at FROM projects WHERE id = ?", id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", project.ErrProjectNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns all projects, newest first.
func (s *Store) List(ctx context.Context) ([]project.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, inputs_json, created_at, updated_at FROM projects ORDER BY created_at DESC, id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []project.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// Delete removes a project.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return requireRow(res, id)
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for tests and demos).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM projects")
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*project.Record, error) {
	var rec project.Record
	var doc, createdAt, updatedAt string
	if err := row.Scan(&rec.ID, &rec.Name, &doc, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(doc), &rec.Inputs); err != nil {
		return nil, fmt.Errorf("failed to decode inputs of project %s: %w", rec.ID, err)
	}
	rec.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	rec.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)
	return &rec, nil
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", project.ErrProjectNotFound, id)
	}
	return nil
}
