package middleware_test

import (
	"context"

	"github.com/easelhq/easel/pkg/domain"
	"github.com/easelhq/easel/pkg/ports"
)

// mockStore is a bare map store for observing what middleware hands to the
// backing layer.
type mockStore struct {
	data map[domain.SurfaceID]*domain.Surface
}

func newMockStore() *mockStore {
	return &mockStore{
		data: make(map[domain.SurfaceID]*domain.Surface),
	}
}

func (s *mockStore) Save(ctx context.Context, surface *domain.Surface) error {
	s.data[surface.ID] = surface
	return nil
}

func (s *mockStore) Load(ctx context.Context, id domain.SurfaceID) (*domain.Surface, error) {
	surface, ok := s.data[id]
	if !ok {
		return nil, domain.ErrSurfaceNotFound
	}
	return surface, nil
}

func (s *mockStore) Delete(ctx context.Context, id domain.SurfaceID) error {
	delete(s.data, id)
	return nil
}

func (s *mockStore) List(ctx context.Context) ([]domain.SurfaceID, error) {
	ids := make([]domain.SurfaceID, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}

var _ ports.SurfaceStore = (*mockStore)(nil)
