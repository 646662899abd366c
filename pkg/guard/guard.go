package guard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/easelhq/easel/internal/logging"
	"github.com/easelhq/easel/pkg/domain"
	"github.com/easelhq/easel/pkg/ports"
	"github.com/easelhq/easel/pkg/props"
	"github.com/easelhq/easel/pkg/vm"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Guard wraps a Binding and serializes lifecycle calls per surface ID. The
// binding itself never locks; hosts that drive one surface from several
// goroutines put a Guard in front to uphold the one-logical-order contract.
// It uses Reference Counting to garbage collect unused locks.
type Guard struct {
	binding ports.Binding

	mu    sync.Mutex                      // Global lock for the map
	locks map[domain.SurfaceID]*lockEntry // Map of active locks

	locker ports.DistributedLocker // Optional distributed locker
	ttl    time.Duration
	logger *slog.Logger // Logger for internal events (like deferred errors)
}

var _ ports.Binding = (*Guard)(nil)

// Option configures the Guard.
type Option func(*Guard)

// WithLocker enables distributed locking, for deployments where surfaces may
// be driven from more than one replica.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(g *Guard) {
		g.locker = locker
	}
}

// WithLockTTL overrides the distributed lock TTL (default 30s).
func WithLockTTL(ttl time.Duration) Option {
	return func(g *Guard) {
		g.ttl = ttl
	}
}

// WithLogger configures a logger for the Guard.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) {
		g.logger = logger
	}
}

// New creates a Guard around the given binding.
func New(binding ports.Binding, opts ...Option) *Guard {
	g := &Guard{
		binding: binding,
		locks:   make(map[domain.SurfaceID]*lockEntry),
		ttl:     30 * time.Second,
		logger:  logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(id) after
// unlocking.
func (g *Guard) acquire(id domain.SurfaceID) *lockEntry {
	g.mu.Lock()
	defer g.mu.Unlock()

	entry, exists := g.locks[id]
	if !exists {
		entry = &lockEntry{}
		g.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry when it
// reaches zero.
func (g *Guard) release(id domain.SurfaceID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	entry, exists := g.locks[id]
	if !exists {
		return // Should not happen if paired correctly
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(g.locks, id)
	}
}

// WithSurfaceLock executes fn while holding the lock for the surface. Use it
// for compound operations that must observe and act atomically.
func (g *Guard) WithSurfaceLock(ctx context.Context, id domain.SurfaceID, fn func(context.Context) error) error {
	entry := g.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		g.release(id)
	}()

	// Distributed Locking
	if g.locker != nil {
		unlock, err := g.locker.Lock(ctx, id.String(), g.ttl)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				g.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"surface", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// StartSurface serializes a start against other operations on the same ID.
func (g *Guard) StartSurface(ctx context.Context, inst *vm.Instance, id domain.SurfaceID, module string, initialProps props.Value, mode domain.DisplayMode) error {
	return g.WithSurfaceLock(ctx, id, func(ctx context.Context) error {
		return g.binding.StartSurface(ctx, inst, id, module, initialProps, mode)
	})
}

// SetSurfaceProps serializes a props replacement against other operations on
// the same ID.
func (g *Guard) SetSurfaceProps(ctx context.Context, inst *vm.Instance, id domain.SurfaceID, module string, newProps props.Value, mode domain.DisplayMode) error {
	return g.WithSurfaceLock(ctx, id, func(ctx context.Context) error {
		return g.binding.SetSurfaceProps(ctx, inst, id, module, newProps, mode)
	})
}

// StopSurface serializes a stop against other operations on the same ID.
func (g *Guard) StopSurface(ctx context.Context, inst *vm.Instance, id domain.SurfaceID) error {
	return g.WithSurfaceLock(ctx, id, func(ctx context.Context) error {
		return g.binding.StopSurface(ctx, inst, id)
	})
}

// Inspect delegates to the binding. Reads do not take the surface lock.
func (g *Guard) Inspect(ctx context.Context, id domain.SurfaceID) (*domain.Surface, error) {
	return g.binding.Inspect(ctx, id)
}

// List delegates to the binding.
func (g *Guard) List(ctx context.Context) ([]*domain.Surface, error) {
	return g.binding.List(ctx)
}

// Binding returns the wrapped binding.
func (g *Guard) Binding() ports.Binding {
	return g.binding
}
