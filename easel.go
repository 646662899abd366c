package easel

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/easelhq/easel/internal/binding"
	loamAdapter "github.com/easelhq/easel/pkg/adapters/loam"
	"github.com/easelhq/easel/pkg/adapters/memory"
	"github.com/easelhq/easel/pkg/domain"
	"github.com/easelhq/easel/pkg/ports"
	"github.com/easelhq/easel/pkg/props"
	"github.com/easelhq/easel/pkg/vm"
)

// Registry is the high-level entry point for the Easel library: the surface
// lifecycle binding between a script-engine host and a render runtime.
// It wraps the internal engine and provides a simplified API for embedders.
type Registry struct {
	engine     *binding.Engine
	runtime    ports.RenderRuntime
	store      ports.SurfaceStore
	catalog    ports.ModuleCatalog
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	strict     bool
	modulesDir string
}

var _ ports.Binding = (*Registry)(nil)

// Option defines a functional option for configuring the Registry.
type Option func(*Registry)

// WithStore injects a custom SurfaceStore, bypassing the default in-memory
// records.
func WithStore(store ports.SurfaceStore) Option {
	return func(r *Registry) {
		r.store = store
	}
}

// WithCatalog injects a custom ModuleCatalog, bypassing the default Loam
// initialization.
func WithCatalog(catalog ports.ModuleCatalog) Option {
	return func(r *Registry) {
		r.catalog = catalog
	}
}

// WithModulesDir loads the module catalog from a directory of manifest
// documents. Ignored when WithCatalog is also given.
func WithModulesDir(dir string) Option {
	return func(r *Registry) {
		r.modulesDir = dir
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Registry) {
		r.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the registry.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithStrictProps makes the registry validate props against the catalog's
// manifest schemas. No-op without a catalog.
func WithStrictProps(strict bool) Option {
	return func(r *Registry) {
		r.strict = strict
	}
}

// New initializes a Registry over the given render runtime.
// By default activity records live in memory and no catalog is consulted;
// use WithModulesDir or WithCatalog to restrict module names.
func New(rt ports.RenderRuntime, opts ...Option) (*Registry, error) {
	if rt == nil {
		return nil, fmt.Errorf("render runtime is required")
	}

	reg := &Registry{runtime: rt}
	for _, opt := range opts {
		opt(reg)
	}

	// If no catalog was injected, initialize the default Loam adapter
	if reg.catalog == nil && reg.modulesDir != "" {
		catalog, err := loamAdapter.Open(reg.modulesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open modules dir: %w", err)
		}
		reg.catalog = catalog
	}

	if reg.store == nil {
		reg.store = memory.NewStore()
	}

	// Ensure logger is initialized (so we don't pass nil down, which would
	// overwrite the engine's default)
	if reg.logger == nil {
		reg.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	engineOpts := []binding.EngineOption{
		binding.WithLifecycleHooks(reg.hooks),
		binding.WithLogger(reg.logger),
		binding.WithStrictProps(reg.strict),
	}
	if reg.catalog != nil {
		engineOpts = append(engineOpts, binding.WithCatalog(reg.catalog))
	}

	reg.engine = binding.NewEngine(rt, reg.store, engineOpts...)

	return reg, nil
}

// StartSurface creates a surface and performs its first render. The surface
// ID is allocated by the caller; starting an active ID is a violation.
func (r *Registry) StartSurface(ctx context.Context, inst *vm.Instance, id domain.SurfaceID, module string, initialProps props.Value, mode domain.DisplayMode) error {
	return r.engine.StartSurface(ctx, inst, id, module, initialProps, mode)
}

// SetSurfaceProps replaces an active surface's props tree wholesale and
// re-renders it.
func (r *Registry) SetSurfaceProps(ctx context.Context, inst *vm.Instance, id domain.SurfaceID, module string, newProps props.Value, mode domain.DisplayMode) error {
	return r.engine.SetSurfaceProps(ctx, inst, id, module, newProps, mode)
}

// StopSurface tears an active surface down and releases its record.
func (r *Registry) StopSurface(ctx context.Context, inst *vm.Instance, id domain.SurfaceID) error {
	return r.engine.StopSurface(ctx, inst, id)
}

// Inspect returns the activity record for an active surface.
func (r *Registry) Inspect(ctx context.Context, id domain.SurfaceID) (*domain.Surface, error) {
	return r.engine.Inspect(ctx, id)
}

// Active reports whether the given surface identifier is currently started.
func (r *Registry) Active(ctx context.Context, id domain.SurfaceID) (bool, error) {
	return r.engine.Active(ctx, id)
}

// List returns the activity records of all active surfaces, ordered by ID.
func (r *Registry) List(ctx context.Context) ([]*domain.Surface, error) {
	return r.engine.List(ctx)
}

// Watch returns a channel that signals when the underlying module catalog
// changes. Returns an error if the catalog does not support watching.
func (r *Registry) Watch(ctx context.Context) (<-chan string, error) {
	if w, ok := r.catalog.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current catalog does not support watching")
}

// Catalog returns the module catalog in use, or nil when none is configured.
func (r *Registry) Catalog() ports.ModuleCatalog {
	return r.catalog
}

// Store returns the surface store backing the activity records.
func (r *Registry) Store() ports.SurfaceStore {
	return r.store
}
