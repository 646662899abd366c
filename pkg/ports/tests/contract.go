// Package tests provides reusable contract suites for ports implementations.
package tests

import (
	"context"
	"testing"

	"github.com/easelhq/easel/pkg/domain"
	"github.com/easelhq/easel/pkg/ports"
	"github.com/easelhq/easel/pkg/props"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SurfaceStoreContract verifies that a SurfaceStore implementation adheres to
// the interface contract. Adapters run it against a fresh store.
func SurfaceStoreContract(t *testing.T, store ports.SurfaceStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("SaveAndLoad", func(t *testing.T) {
		surface := &domain.Surface{
			ID:     101,
			Module: "Main",
			Props:  props.MustParse(`{"text": "hi", "count": 2}`),
			Mode:   domain.DisplayModeVisible,
		}
		require.NoError(t, store.Save(ctx, surface))

		loaded, err := store.Load(ctx, 101)
		require.NoError(t, err)
		assert.Equal(t, surface.ID, loaded.ID)
		assert.Equal(t, surface.Module, loaded.Module)
		assert.Equal(t, surface.Mode, loaded.Mode)
		assert.True(t, props.Equal(surface.Props, loaded.Props))
	})

	t.Run("LoadMissing", func(t *testing.T) {
		_, err := store.Load(ctx, 999)
		assert.ErrorIs(t, err, domain.ErrSurfaceNotFound)
	})

	t.Run("SaveOverwrites", func(t *testing.T) {
		first := &domain.Surface{ID: 102, Module: "Main", Props: props.MustParse(`{"v": 1}`)}
		require.NoError(t, store.Save(ctx, first))

		second := &domain.Surface{ID: 102, Module: "Main", Props: props.MustParse(`{"v": 2}`), Generation: 1}
		require.NoError(t, store.Save(ctx, second))

		loaded, err := store.Load(ctx, 102)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), loaded.Generation)
		assert.True(t, props.Equal(second.Props, loaded.Props), "old props must be fully replaced")
	})

	t.Run("Isolation", func(t *testing.T) {
		surface := &domain.Surface{ID: 103, Module: "Main", Props: props.MustParse(`{"text": "original"}`)}
		require.NoError(t, store.Save(ctx, surface))

		// Mutating what the caller handed in must not affect the stored record.
		surface.Module = "Mutated"

		loaded, err := store.Load(ctx, 103)
		require.NoError(t, err)
		assert.Equal(t, "Main", loaded.Module)

		// Mutating a loaded record must not affect later loads.
		loaded.Module = "AlsoMutated"
		again, err := store.Load(ctx, 103)
		require.NoError(t, err)
		assert.Equal(t, "Main", again.Module)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, &domain.Surface{ID: 104, Module: "Main"}))
		require.NoError(t, store.Delete(ctx, 104))

		_, err := store.Load(ctx, 104)
		assert.ErrorIs(t, err, domain.ErrSurfaceNotFound)

		// Deleting an absent record is tolerated.
		assert.NoError(t, store.Delete(ctx, 104))
	})

	t.Run("List", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, &domain.Surface{ID: 105, Module: "Main"}))
		require.NoError(t, store.Save(ctx, &domain.Surface{ID: 106, Module: "Settings"}))
		defer func() {
			_ = store.Delete(ctx, 105)
			_ = store.Delete(ctx, 106)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, domain.SurfaceID(105))
		assert.Contains(t, ids, domain.SurfaceID(106))

		require.NoError(t, store.Delete(ctx, 105))
		ids, err = store.List(ctx)
		require.NoError(t, err)
		assert.NotContains(t, ids, domain.SurfaceID(105))
	})
}
