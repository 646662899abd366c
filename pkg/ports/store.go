package ports

import (
	"context"

	"github.com/easelhq/easel/pkg/domain"
)

// SurfaceStore persists the binding's activity records: one record per active
// surface, created on start and removed on stop. The store is what turns
// lifecycle misuse into explicit errors instead of undefined behavior.
type SurfaceStore interface {
	// Save persists the record, overwriting any previous one for the same ID.
	// Implementations must not share the props tree with the caller.
	Save(ctx context.Context, surface *domain.Surface) error

	// Load retrieves the record for an ID.
	// Returns domain.ErrSurfaceNotFound if the surface is not active.
	Load(ctx context.Context, id domain.SurfaceID) (*domain.Surface, error)

	// Delete removes the record for an ID. Deleting an absent record is not
	// an error.
	Delete(ctx context.Context, id domain.SurfaceID) error

	// List returns the IDs of all active surfaces.
	List(ctx context.Context) ([]domain.SurfaceID, error)
}
