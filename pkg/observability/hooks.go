package observability

import (
	"context"
	"log/slog"

	"github.com/easelhq/easel/pkg/domain"
)

// Combine fans each event out to every hook set in order. Nil fields
// are skipped, so sparse hook sets compose without wrapper noise.
func Combine(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSurfaceStart: fanOut(hooks, func(h domain.LifecycleHooks) func(context.Context, *domain.SurfaceEvent) {
			return h.OnSurfaceStart
		}),
		OnSurfaceUpdate: fanOut(hooks, func(h domain.LifecycleHooks) func(context.Context, *domain.SurfaceEvent) {
			return h.OnSurfaceUpdate
		}),
		OnSurfaceStop: fanOut(hooks, func(h domain.LifecycleHooks) func(context.Context, *domain.SurfaceEvent) {
			return h.OnSurfaceStop
		}),
		OnViolation: fanOut(hooks, func(h domain.LifecycleHooks) func(context.Context, *domain.SurfaceEvent) {
			return h.OnViolation
		}),
	}
}

func fanOut(hooks []domain.LifecycleHooks, pick func(domain.LifecycleHooks) func(context.Context, *domain.SurfaceEvent)) func(context.Context, *domain.SurfaceEvent) {
	return func(ctx context.Context, e *domain.SurfaceEvent) {
		for _, h := range hooks {
			if fn := pick(h); fn != nil {
				fn(ctx, e)
			}
		}
	}
}

// Logging returns hooks that write one structured line per lifecycle
// event. Violations log at warn level so they stand out in default
// log output; everything else is info.
func Logging(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSurfaceStart: func(ctx context.Context, e *domain.SurfaceEvent) {
			logger.InfoContext(ctx, "Surface started",
				"surface", e.Surface,
				"module", e.Module,
				"mode", e.Mode,
				"instance", e.Instance)
		},
		OnSurfaceUpdate: func(ctx context.Context, e *domain.SurfaceEvent) {
			logger.InfoContext(ctx, "Surface updated",
				"surface", e.Surface,
				"module", e.Module,
				"mode", e.Mode,
				"generation", e.Generation,
				"instance", e.Instance)
		},
		OnSurfaceStop: func(ctx context.Context, e *domain.SurfaceEvent) {
			logger.InfoContext(ctx, "Surface stopped",
				"surface", e.Surface,
				"module", e.Module,
				"generation", e.Generation,
				"instance", e.Instance)
		},
		OnViolation: func(ctx context.Context, e *domain.SurfaceEvent) {
			logger.WarnContext(ctx, "Lifecycle violation",
				"surface", e.Surface,
				"op", e.Op,
				"reason", e.Reason,
				"instance", e.Instance)
		},
	}
}
