// Package memory provides an in-memory project.Store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/warp/viability/project"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for tests and one-shot runs)
// =============================================================================

type Store struct {
	mu       sync.RWMutex
	records  map[string]project.Record
	sequence map[string]int
	next     int
}

var _ project.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		records:  make(map[string]project.Record),
		sequence: make(map[string]int),
	}
}

// Create assigns a new ID and keeps a copy of the inputs.
func (s *Store) Create(_ context.Context, in project.Inputs) (*project.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	rec := project.Record{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Inputs:    in.Clone(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.records[rec.ID] = rec
	s.sequence[rec.ID] = s.next
	s.next++
	return detached(rec), nil
}

func (s *Store) Update(_ context.Context, id string, in project.Inputs) (*project.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", project.ErrProjectNotFound, id)
	}
	rec.Name = in.Name
	rec.Inputs = in.Clone()
	rec.UpdatedAt = time.Now().UTC()
	s.records[id] = rec
	return detached(rec), nil
}

func (s *Store) Get(_ context.Context, id string) (*project.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", project.ErrProjectNotFound, id)
	}
	return detached(rec), nil
}

// List returns records newest first. Creation order breaks timestamp ties.
func (s *Store) List(_ context.Context) ([]project.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]project.Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, *detached(rec))
	}
	sort.Slice(out, func(i, j int) bool {
		return s.sequence[out[i].ID] > s.sequence[out[j].ID]
	})
	return out, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return fmt.Errorf("%w: %s", project.ErrProjectNotFound, id)
	}
	delete(s.records, id)
	delete(s.sequence, id)
	return nil
}

// detached copies a record so callers never share inputs with the store.
func detached(rec project.Record) *project.Record {
	rec.Inputs = rec.Inputs.Clone()
	return &rec
}
