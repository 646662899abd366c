package binding

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/easelhq/easel/pkg/domain"
)

// Inspect returns the activity record of an active surface.
func (e *Engine) Inspect(ctx context.Context, id domain.SurfaceID) (*domain.Surface, error) {
	surface, err := e.store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("inspect surface %s: %w", id, err)
	}
	return surface, nil
}

// Active reports whether a surface identifier currently has an activity
// record.
func (e *Engine) Active(ctx context.Context, id domain.SurfaceID) (bool, error) {
	_, err := e.store.Load(ctx, id)
	if errors.Is(err, domain.ErrSurfaceNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("inspect surface %s: %w", id, err)
	}
	return true, nil
}

// List returns the records of all active surfaces, ordered by ID.
func (e *Engine) List(ctx context.Context) ([]*domain.Surface, error) {
	ids, err := e.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list surfaces: %w", err)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	surfaces := make([]*domain.Surface, 0, len(ids))
	for _, id := range ids {
		surface, err := e.store.Load(ctx, id)
		if errors.Is(err, domain.ErrSurfaceNotFound) {
			// Stopped between List and Load.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("list surfaces: %w", err)
		}
		surfaces = append(surfaces, surface)
	}
	return surfaces, nil
}
