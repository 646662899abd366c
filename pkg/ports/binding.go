package ports

import (
	"context"

	"github.com/easelhq/easel/pkg/domain"
	"github.com/easelhq/easel/pkg/props"
	"github.com/easelhq/easel/pkg/vm"
)

// Binding is the driving port: the lifecycle operations adapters (HTTP, MCP,
// host loops) invoke. The library's Registry implements it.
//
// Calls for one surface ID must be serialized by the caller; implementations
// forward to the runtime without internal locking, reordering or buffering.
type Binding interface {
	// StartSurface requests creation and first render of a surface.
	// Fails with domain.ErrSurfaceAlreadyStarted if the ID is active.
	StartSurface(ctx context.Context, inst *vm.Instance, id domain.SurfaceID, module string, initialProps props.Value, mode domain.DisplayMode) error

	// SetSurfaceProps requests a wholesale props replacement and re-render.
	// Fails with domain.ErrSurfaceNotFound if the ID is not active.
	SetSurfaceProps(ctx context.Context, inst *vm.Instance, id domain.SurfaceID, module string, newProps props.Value, mode domain.DisplayMode) error

	// StopSurface requests teardown and releases the activity record.
	// Fails with domain.ErrSurfaceNotFound if the ID is not active.
	StopSurface(ctx context.Context, inst *vm.Instance, id domain.SurfaceID) error

	// Inspect returns the activity record for an active surface.
	Inspect(ctx context.Context, id domain.SurfaceID) (*domain.Surface, error)

	// List returns the activity records of all active surfaces.
	List(ctx context.Context) ([]*domain.Surface, error)
}
