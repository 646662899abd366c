package memory

import (
	"context"
	"sync"

	"github.com/easelhq/easel/pkg/domain"
)

// Store implements ports.SurfaceStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[domain.SurfaceID]*domain.Surface
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[domain.SurfaceID]*domain.Surface),
	}
}

// Save persists the record in memory.
func (s *Store) Save(ctx context.Context, surface *domain.Surface) error {
	// Deep copy so the stored record never shares the caller's props tree
	copied := surface.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[surface.ID] = copied
	return nil
}

// Load retrieves the record for a surface.
func (s *Store) Load(ctx context.Context, id domain.SurfaceID) (*domain.Surface, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	surface, ok := s.data[id]
	if !ok {
		return nil, domain.ErrSurfaceNotFound
	}

	// Copy on read so the caller can't mutate store state through the pointer
	return surface.Clone(), nil
}

// Delete removes the record.
func (s *Store) Delete(ctx context.Context, id domain.SurfaceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns the IDs of active surfaces.
func (s *Store) List(ctx context.Context) ([]domain.SurfaceID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]domain.SurfaceID, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}
