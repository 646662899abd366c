// Package inproc provides the reference RenderRuntime: components run inside
// the host process, instantiated from factories registered by module name.
package inproc

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/easelhq/easel/pkg/domain"
	"github.com/easelhq/easel/pkg/ports"
	"github.com/easelhq/easel/pkg/registry"
	"github.com/easelhq/easel/pkg/vm"
)

// Component is one mounted module instance. Calls for one surface arrive
// serialized; distinct surfaces may run concurrently.
type Component interface {
	// Mount attaches the component with its initial record.
	Mount(ctx context.Context, surface *domain.Surface) error
	// Render draws the surface from the record's props. Called on start and
	// on every props replacement while the surface is visible.
	Render(ctx context.Context, surface *domain.Surface) error
	// Unmount releases the component's resources.
	Unmount(ctx context.Context) error
}

// ComponentFactory creates a fresh component for one surface.
type ComponentFactory func() Component

// errorOverlayEnabled is process-wide, matching the debug-overlay switch
// that development hosts flip once at boot.
var errorOverlayEnabled atomic.Bool

// SetErrorOverlayEnabled toggles the error overlay for every Runtime in the
// process. While enabled, render failures are retained on the surface and
// exposed through Overlay instead of failing the operation.
func SetErrorOverlayEnabled(enabled bool) {
	errorOverlayEnabled.Store(enabled)
}

// ErrorOverlayEnabled reports the process-wide overlay toggle.
func ErrorOverlayEnabled() bool {
	return errorOverlayEnabled.Load()
}

// JournalEntry is one completed lifecycle operation.
type JournalEntry struct {
	Op         string
	Surface    domain.SurfaceID
	Module     string
	Generation uint64
	Mode       domain.DisplayMode
}

// Option configures the Runtime.
type Option func(*Runtime)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// WithFallback sets a factory used for module names that have no registered
// component. Without a fallback, starting an unregistered module fails.
func WithFallback(factory ComponentFactory) Option {
	return func(r *Runtime) {
		r.fallback = factory
	}
}

// Runtime implements ports.RenderRuntime with in-process components. It
// keeps an append-only journal of completed operations, which
// order-sensitive tests read back through Journal.
type Runtime struct {
	factories *registry.Registry[ComponentFactory]
	fallback  ComponentFactory
	logger    *slog.Logger

	mu       sync.Mutex
	mounted  map[domain.SurfaceID]Component
	journal  []JournalEntry
	overlays map[domain.SurfaceID]string
}

var _ ports.RenderRuntime = (*Runtime)(nil)

// New creates an empty Runtime. Register components before starting
// surfaces on it.
func New(opts ...Option) *Runtime {
	r := &Runtime{
		factories: registry.New[ComponentFactory](),
		logger:    slog.New(slog.NewJSONHandler(io.Discard, nil)),
		mounted:   make(map[domain.SurfaceID]Component),
		overlays:  make(map[domain.SurfaceID]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a component factory under a module name.
func (r *Runtime) Register(module string, factory ComponentFactory) {
	r.factories.Register(module, factory)
}

// Modules returns the registered module names, sorted.
func (r *Runtime) Modules() []string {
	return r.factories.Names()
}

// StartSurface mounts a fresh component for the surface's module and renders
// it unless the display mode suppresses rendering. A failed first render
// unmounts again so the start leaves nothing behind.
func (r *Runtime) StartSurface(ctx context.Context, inst *vm.Instance, surface *domain.Surface) error {
	factory, err := r.factories.Lookup(surface.Module)
	if err != nil {
		if r.fallback == nil {
			return fmt.Errorf("no component for module %q: %w", surface.Module, err)
		}
		factory = r.fallback
	}

	r.mu.Lock()
	_, exists := r.mounted[surface.ID]
	r.mu.Unlock()
	if exists {
		return fmt.Errorf("surface %s already mounted", surface.ID)
	}

	comp := factory()
	if err := comp.Mount(ctx, surface); err != nil {
		return fmt.Errorf("mount %s failed: %w", surface.ID, err)
	}

	if surface.Mode == domain.DisplayModeVisible {
		if err := r.render(ctx, comp, surface); err != nil {
			_ = comp.Unmount(ctx)
			return err
		}
	} else {
		r.logger.Debug("Surface started without render", "surface", surface.ID, "mode", surface.Mode)
	}

	r.mu.Lock()
	r.mounted[surface.ID] = comp
	r.record("start", surface)
	r.mu.Unlock()
	return nil
}

// SetSurfaceProps re-renders the surface from its replaced props. Suspended
// and hidden surfaces skip the render but keep the new record.
func (r *Runtime) SetSurfaceProps(ctx context.Context, inst *vm.Instance, surface *domain.Surface) error {
	r.mu.Lock()
	comp, ok := r.mounted[surface.ID]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("surface %s not mounted", surface.ID)
	}

	if surface.Mode == domain.DisplayModeVisible {
		if err := r.render(ctx, comp, surface); err != nil {
			return err
		}
	} else {
		r.logger.Debug("Render skipped", "surface", surface.ID, "mode", surface.Mode)
	}

	r.mu.Lock()
	r.record("set_props", surface)
	r.mu.Unlock()
	return nil
}

// StopSurface unmounts the component and clears any retained overlay.
func (r *Runtime) StopSurface(ctx context.Context, inst *vm.Instance, id domain.SurfaceID) error {
	r.mu.Lock()
	comp, ok := r.mounted[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("surface %s not mounted", id)
	}
	delete(r.mounted, id)
	delete(r.overlays, id)
	r.mu.Unlock()

	if err := comp.Unmount(ctx); err != nil {
		return fmt.Errorf("unmount %s failed: %w", id, err)
	}

	r.mu.Lock()
	r.record("stop", &domain.Surface{ID: id})
	r.mu.Unlock()
	return nil
}

// render runs one component render. With the overlay enabled, a failure is
// retained for Overlay and the operation still succeeds; a later clean
// render clears it.
func (r *Runtime) render(ctx context.Context, comp Component, surface *domain.Surface) error {
	err := comp.Render(ctx, surface)
	if err == nil {
		r.mu.Lock()
		delete(r.overlays, surface.ID)
		r.mu.Unlock()
		return nil
	}

	if !ErrorOverlayEnabled() {
		return fmt.Errorf("render %s failed: %w", surface.ID, err)
	}

	r.mu.Lock()
	r.overlays[surface.ID] = err.Error()
	r.mu.Unlock()
	r.logger.Warn("Render failed, retained on overlay", "surface", surface.ID, "err", err)
	return nil
}

// record appends a journal entry. Caller holds r.mu.
func (r *Runtime) record(op string, surface *domain.Surface) {
	r.journal = append(r.journal, JournalEntry{
		Op:         op,
		Surface:    surface.ID,
		Module:     surface.Module,
		Generation: surface.Generation,
		Mode:       surface.Mode,
	})
}

// Journal returns a copy of every completed operation, in order.
func (r *Runtime) Journal() []JournalEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]JournalEntry, len(r.journal))
	copy(out, r.journal)
	return out
}

// Overlay returns the retained render failure for a surface, if any.
func (r *Runtime) Overlay(id domain.SurfaceID) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg, ok := r.overlays[id]
	return msg, ok
}

// Mounted reports whether a component is mounted for the surface.
func (r *Runtime) Mounted(id domain.SurfaceID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.mounted[id]
	return ok
}
