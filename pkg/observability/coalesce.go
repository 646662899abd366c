package observability

import (
	"context"
	"sync"
	"time"

	"github.com/easelhq/easel/pkg/domain"
)

type coalesceKey struct {
	typ     domain.EventType
	surface domain.SurfaceID
}

// coalescer drops events that repeat within the window, keyed by
// event type and surface. The engine delivers events synchronously
// from the caller's goroutine, and concurrent callers on distinct
// surfaces are allowed, so admission needs its own lock.
type coalescer struct {
	window time.Duration

	mu   sync.Mutex
	last map[coalesceKey]time.Time
}

// Coalesce wraps next so that repeated events of the same type for the
// same surface are delivered at most once per window. Starts, stops
// and violations always pass through; only updates are coalesced, as
// a surface under animation can update hundreds of times per second
// while starts and stops carry state transitions a sink must not miss.
// Stopping a surface clears its record, so a restarted surface's first
// update is never swallowed by the previous incarnation's timestamps.
func Coalesce(window time.Duration, next domain.LifecycleHooks) domain.LifecycleHooks {
	c := &coalescer{
		window: window,
		last:   make(map[coalesceKey]time.Time),
	}
	return domain.LifecycleHooks{
		OnSurfaceStart: next.OnSurfaceStart,
		OnSurfaceUpdate: func(ctx context.Context, e *domain.SurfaceEvent) {
			if next.OnSurfaceUpdate == nil {
				return
			}
			if c.admit(e) {
				next.OnSurfaceUpdate(ctx, e)
			}
		},
		OnSurfaceStop: func(ctx context.Context, e *domain.SurfaceEvent) {
			c.clear(e.Surface)
			if next.OnSurfaceStop != nil {
				next.OnSurfaceStop(ctx, e)
			}
		},
		OnViolation: next.OnViolation,
	}
}

func (c *coalescer) admit(e *domain.SurfaceEvent) bool {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	key := coalesceKey{typ: e.Type, surface: e.Surface}

	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.last[key]; ok && ts.Sub(prev) < c.window {
		return false
	}
	c.last[key] = ts
	return true
}

func (c *coalescer) clear(id domain.SurfaceID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.last {
		if key.surface == id {
			delete(c.last, key)
		}
	}
}
