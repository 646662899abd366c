package binding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/easelhq/easel/pkg/domain"
	"github.com/easelhq/easel/pkg/props"
	"github.com/easelhq/easel/pkg/vm"
)

// StartSurface validates the request, performs the first render through the
// runtime, then records the surface as active.
func (e *Engine) StartSurface(ctx context.Context, inst *vm.Instance, id domain.SurfaceID, module string, initialProps props.Value, mode domain.DisplayMode) error {
	if err := inst.Check(); err != nil {
		return e.violation(ctx, domain.OpStart, id, err)
	}

	resolved := initialProps
	if e.catalog != nil {
		m, err := e.catalog.Resolve(ctx, module)
		if err != nil {
			return fmt.Errorf("start surface %s: %w", id, err)
		}
		resolved = m.InitialProps(initialProps)
		if e.strict {
			if err := m.CheckProps(resolved); err != nil {
				return fmt.Errorf("start surface %s: props rejected for module %s: %w", id, module, err)
			}
		}
	}

	switch _, err := e.store.Load(ctx, id); {
	case err == nil:
		return e.violation(ctx, domain.OpStart, id, domain.ErrSurfaceAlreadyStarted)
	case !errors.Is(err, domain.ErrSurfaceNotFound):
		return fmt.Errorf("start surface %s: %w", id, err)
	}

	now := time.Now().UTC()
	surface := &domain.Surface{
		ID:         id,
		Module:     module,
		Props:      resolved,
		Mode:       mode,
		Generation: 1,
		StartedAt:  now,
		UpdatedAt:  now,
	}

	if err := e.runtime.StartSurface(ctx, inst, surface); err != nil {
		return fmt.Errorf("start surface %s: runtime rejected: %w", id, err)
	}

	if err := e.store.Save(ctx, surface); err != nil {
		return fmt.Errorf("start surface %s: failed to record: %w", id, err)
	}

	e.logger.Debug("surface started", "surface", id, "module", module, "mode", mode.String(), "instance", inst.ID())
	e.emit(ctx, e.hooks.OnSurfaceStart, domain.EventSurfaceStarted, surface, inst.ID())
	return nil
}

// SetSurfaceProps replaces the props tree of an active surface wholesale and
// re-renders it. The previous tree is discarded, never merged into.
func (e *Engine) SetSurfaceProps(ctx context.Context, inst *vm.Instance, id domain.SurfaceID, module string, newProps props.Value, mode domain.DisplayMode) error {
	if err := inst.Check(); err != nil {
		return e.violation(ctx, domain.OpSetProps, id, err)
	}

	current, err := e.store.Load(ctx, id)
	if errors.Is(err, domain.ErrSurfaceNotFound) {
		return e.violation(ctx, domain.OpSetProps, id, domain.ErrSurfaceNotFound)
	}
	if err != nil {
		return fmt.Errorf("set props on surface %s: %w", id, err)
	}

	if module != "" && module != current.Module {
		return fmt.Errorf("set props on surface %s: started as %q, got %q: %w", id, current.Module, module, domain.ErrModuleMismatch)
	}

	if e.catalog != nil && e.strict {
		// A manifest that disappeared after start must not wedge the
		// surface, so the check is skipped when resolution fails.
		if m, err := e.catalog.Resolve(ctx, current.Module); err == nil {
			if err := m.CheckProps(newProps); err != nil {
				return fmt.Errorf("set props on surface %s: props rejected for module %s: %w", id, current.Module, err)
			}
		}
	}

	current.Props = newProps
	current.Mode = mode
	current.Generation++
	current.UpdatedAt = time.Now().UTC()

	if err := e.runtime.SetSurfaceProps(ctx, inst, current); err != nil {
		return fmt.Errorf("set props on surface %s: runtime rejected: %w", id, err)
	}

	if err := e.store.Save(ctx, current); err != nil {
		return fmt.Errorf("set props on surface %s: failed to record: %w", id, err)
	}

	e.logger.Debug("surface props replaced", "surface", id, "module", current.Module, "generation", current.Generation, "instance", inst.ID())
	e.emit(ctx, e.hooks.OnSurfaceUpdate, domain.EventSurfaceUpdated, current, inst.ID())
	return nil
}

// StopSurface tears an active surface down through the runtime and releases
// its activity record. A second stop for the same ID is a violation.
func (e *Engine) StopSurface(ctx context.Context, inst *vm.Instance, id domain.SurfaceID) error {
	if err := inst.Check(); err != nil {
		return e.violation(ctx, domain.OpStop, id, err)
	}

	current, err := e.store.Load(ctx, id)
	if errors.Is(err, domain.ErrSurfaceNotFound) {
		return e.violation(ctx, domain.OpStop, id, domain.ErrSurfaceNotFound)
	}
	if err != nil {
		return fmt.Errorf("stop surface %s: %w", id, err)
	}

	if err := e.runtime.StopSurface(ctx, inst, id); err != nil {
		return fmt.Errorf("stop surface %s: runtime rejected: %w", id, err)
	}

	if err := e.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("stop surface %s: failed to release record: %w", id, err)
	}

	e.logger.Debug("surface stopped", "surface", id, "module", current.Module, "instance", inst.ID())
	e.emit(ctx, e.hooks.OnSurfaceStop, domain.EventSurfaceStopped, current, inst.ID())
	return nil
}

// violation reports a lifecycle precondition failure: it is logged, surfaced
// through the OnViolation hook, and returned as a distinct error. The runtime
// never observes the rejected operation.
func (e *Engine) violation(ctx context.Context, op string, id domain.SurfaceID, cause error) error {
	e.logger.Warn("surface lifecycle violation", "op", op, "surface", id, "reason", cause.Error())
	if e.hooks.OnViolation != nil {
		e.hooks.OnViolation(ctx, &domain.SurfaceEvent{
			Timestamp: time.Now().UTC(),
			Type:      domain.EventViolation,
			Surface:   id,
			Op:        op,
			Reason:    cause.Error(),
		})
	}
	return domain.NewInvalidState(op, id, cause)
}

func (e *Engine) emit(ctx context.Context, fn func(context.Context, *domain.SurfaceEvent), typ domain.EventType, surface *domain.Surface, instance string) {
	if fn == nil {
		return
	}
	fn(ctx, &domain.SurfaceEvent{
		Timestamp:  time.Now().UTC(),
		Type:       typ,
		Surface:    surface.ID,
		Module:     surface.Module,
		Mode:       surface.Mode,
		Generation: surface.Generation,
		Instance:   instance,
	})
}
