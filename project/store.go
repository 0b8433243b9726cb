/*
store.go - Persistence interface for saved project inputs

PURPOSE:
  Lets a reporting layer keep a library of projects and recompute their
  schedules on demand. Only Inputs are stored; schedules are always derived
  again from them and never persisted.

IMPLEMENTATIONS:
  - store/sqlite: SQLite, inputs kept as a JSON document per project
  - store/memory: in-memory, for tests and one-shot runs

SEE ALSO:
  - api/handlers.go: uses Store behind the /api/projects routes
*/
package project

import (
	"context"
	"errors"
	"time"
)

// ErrProjectNotFound is returned when a project ID has no stored record.
var ErrProjectNotFound = errors.New("project not found")

// Record is one saved project.
type Record struct {
	ID        string
	Name      string
	Inputs    Inputs
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store persists project records.
type Store interface {
	// Create assigns an ID and stores the inputs.
	Create(ctx context.Context, in Inputs) (*Record, error)

	// Update replaces the inputs of an existing record.
	Update(ctx context.Context, id string, in Inputs) (*Record, error)

	// Get returns ErrProjectNotFound for unknown IDs.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns every record, newest first.
	List(ctx context.Context) ([]Record, error)

	Delete(ctx context.Context, id string) error
}

// Load fetches a record and builds its project context.
func Load(ctx context.Context, s Store, id string) (*Project, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return New(rec.Inputs)
}
