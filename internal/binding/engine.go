package binding

import (
	"io"
	"log/slog"

	"github.com/easelhq/easel/pkg/domain"
	"github.com/easelhq/easel/pkg/ports"
)

// Engine is the core lifecycle forwarder. It validates each request against
// the activity records in the store, hands it to the render runtime on the
// caller's goroutine, then updates the record and fires hooks.
//
// The engine holds no lock of its own. Callers serialize operations per
// surface; concurrent use of distinct surfaces is safe as long as the store
// and runtime are.
type Engine struct {
	runtime ports.RenderRuntime
	store   ports.SurfaceStore
	catalog ports.ModuleCatalog
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	strict  bool
}

var _ ports.Binding = (*Engine)(nil)

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithCatalog restricts start requests to modules the catalog resolves, and
// applies manifest defaults to null initial props.
func WithCatalog(c ports.ModuleCatalog) EngineOption {
	return func(e *Engine) {
		e.catalog = c
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithStrictProps enables schema validation of props against the catalog
// manifest on start and on every replacement. No-op without a catalog.
func WithStrictProps(strict bool) EngineOption {
	return func(e *Engine) {
		e.strict = strict
	}
}

// NewEngine creates an engine over the given runtime and store.
func NewEngine(rt ports.RenderRuntime, store ports.SurfaceStore, opts ...EngineOption) *Engine {
	e := &Engine{
		runtime: rt,
		store:   store,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return e
}
