package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/easelhq/easel"
	"github.com/easelhq/easel/internal/adapters/file"
	"github.com/easelhq/easel/internal/metrics"
	httpadapter "github.com/easelhq/easel/pkg/adapters/http"
	"github.com/easelhq/easel/pkg/adapters/inproc"
	"github.com/easelhq/easel/pkg/adapters/memory"
	"github.com/easelhq/easel/pkg/adapters/proc"
	redisadapter "github.com/easelhq/easel/pkg/adapters/redis"
	"github.com/easelhq/easel/pkg/domain"
	"github.com/easelhq/easel/pkg/guard"
	"github.com/easelhq/easel/pkg/observability"
	"github.com/easelhq/easel/pkg/persistence/middleware"
	"github.com/easelhq/easel/pkg/ports"
	"github.com/easelhq/easel/pkg/vm"
	backend "github.com/redis/go-redis/v9"
)

// Engine bundles everything a command needs to run a binding: the registry,
// its guarded facade, and the observability plumbing the transports mount.
type Engine struct {
	Registry *easel.Registry
	Binding  ports.Binding
	Instance *vm.Instance
	Streams  *httpadapter.StreamManager
	Metrics  *metrics.Metrics

	closers []func() error
}

// Close releases the engine's resources in reverse construction order.
func (e *Engine) Close() error {
	var first error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// createEngine assembles an engine with standard CLI conventions: runtime
// from config, store with optional sealing and scrubbing, hooks fanned out
// to logs, metrics and event streams, and a guard in front of the binding.
func createEngine(ctx context.Context, cfg *Config, logger *slog.Logger) (*Engine, error) {
	e := &Engine{
		Instance: vm.New(vm.WithLabel("cli")),
		Streams:  httpadapter.NewStreamManager(),
		Metrics:  metrics.New(),
	}
	e.closers = append(e.closers, e.Instance.Close)

	rt, err := e.createRuntime(ctx, cfg, logger)
	if err != nil {
		_ = e.Close()
		return nil, err
	}

	store, client, err := e.createStore(ctx, cfg)
	if err != nil {
		_ = e.Close()
		return nil, err
	}

	hooks := observability.Combine(
		observability.Logging(logger),
		e.Metrics.Hooks(),
		e.Streams.Hooks(),
	)
	if cfg.CoalesceWindow > 0 {
		hooks = observability.Coalesce(cfg.CoalesceWindow, hooks)
	}

	opts := []easel.Option{
		easel.WithStore(store),
		easel.WithLogger(logger),
		easel.WithLifecycleHooks(hooks),
		easel.WithStrictProps(cfg.StrictProps),
	}
	if cfg.ModulesDir != "" {
		opts = append(opts, easel.WithModulesDir(cfg.ModulesDir))
	}

	registry, err := easel.New(rt, opts...)
	if err != nil {
		_ = e.Close()
		return nil, fmt.Errorf("failed to initialize engine: %w", err)
	}
	e.Registry = registry

	guardOpts := []guard.Option{guard.WithLogger(logger)}
	if client != nil {
		guardOpts = append(guardOpts, guard.WithLocker(redisadapter.NewLocker(client, "easel:")))
	}
	e.Binding = guard.New(registry, guardOpts...)

	return e, nil
}

// createRuntime picks the render runtime. With a render host configured the
// child process is spawned here and reaped on Close; otherwise components
// run in-process, with a tracing fallback so any module name renders.
func (e *Engine) createRuntime(ctx context.Context, cfg *Config, logger *slog.Logger) (ports.RenderRuntime, error) {
	if cfg.RenderHost != "" {
		rt := proc.NewRuntime(cfg.RenderHost, cfg.RenderHostArgs...)
		if err := rt.Start(ctx, proc.WithLogger(logger)); err != nil {
			return nil, fmt.Errorf("failed to start render host %q: %w", cfg.RenderHost, err)
		}
		e.closers = append(e.closers, rt.Close)
		return rt, nil
	}

	if cfg.ErrorOverlay {
		inproc.SetErrorOverlayEnabled(true)
	}
	return inproc.New(
		inproc.WithLogger(logger),
		inproc.WithFallback(func() inproc.Component {
			return &traceComponent{logger: logger}
		}),
	), nil
}

// createStore builds the surface store and wraps it with the configured
// persistence middleware. Sealing sits closest to the store so persisted
// bytes are ciphertext; scrubbing runs first so masked keys never reach the
// sealer. The Redis client is returned so the guard can share it for locks.
func (e *Engine) createStore(ctx context.Context, cfg *Config) (ports.SurfaceStore, *backend.Client, error) {
	var store ports.SurfaceStore
	var client *backend.Client

	switch {
	case cfg.RedisURL != "":
		opt, err := backend.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid redis_url: %w", err)
		}
		client = backend.NewClient(opt)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to reach redis: %w", err)
		}
		e.closers = append(e.closers, client.Close)
		store = redisadapter.NewFromClient(client, redisadapter.WithTTL(cfg.RedisTTL))
	case cfg.StateDir != "":
		store = file.New(cfg.StateDir)
	default:
		store = memory.NewStore()
	}

	if key, _ := cfg.sealKeys(); key != nil {
		fallbacks, err := cfg.sealFallbacks()
		if err != nil {
			return nil, nil, err
		}
		store = middleware.NewSealMiddleware(middleware.SealConfig{
			ActiveKey:    key,
			FallbackKeys: fallbacks,
		})(store)
	}
	if len(cfg.ScrubPatterns) > 0 {
		store = middleware.NewScrubMiddleware(cfg.ScrubPatterns)(store)
	}

	return store, client, nil
}

// traceComponent renders by logging. It backs every module the CLI runtimes
// have no dedicated component for, which keeps serve and demo usable against
// an arbitrary catalog.
type traceComponent struct {
	logger *slog.Logger
}

func (c *traceComponent) Mount(ctx context.Context, surface *domain.Surface) error {
	c.logger.Debug("Component mounted", "surface", surface.ID, "module", surface.Module)
	return nil
}

func (c *traceComponent) Render(ctx context.Context, surface *domain.Surface) error {
	c.logger.Info("Surface rendered",
		"surface", surface.ID,
		"module", surface.Module,
		"generation", surface.Generation)
	return nil
}

func (c *traceComponent) Unmount(ctx context.Context) error {
	c.logger.Debug("Component unmounted")
	return nil
}
