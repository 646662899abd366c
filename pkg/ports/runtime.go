package ports

import (
	"context"

	"github.com/easelhq/easel/pkg/domain"
	"github.com/easelhq/easel/pkg/vm"
)

// RenderRuntime is the driven port for the rendering side: the component that
// actually instantiates, re-renders and tears down surfaces. The binding
// forwards lifecycle operations into it synchronously, on the caller's
// goroutine, in issuance order.
//
// Implementations own all rendering state. They may lock internally; the
// binding never does.
type RenderRuntime interface {
	// StartSurface instantiates the surface's module and performs the first
	// render with the record's props and display mode.
	StartSurface(ctx context.Context, inst *vm.Instance, surface *domain.Surface) error

	// SetSurfaceProps re-renders an active surface with the record's props
	// replacing the previous tree wholesale.
	SetSurfaceProps(ctx context.Context, inst *vm.Instance, surface *domain.Surface) error

	// StopSurface tears the surface down and releases its resources.
	StopSurface(ctx context.Context, inst *vm.Instance, id domain.SurfaceID) error
}
