package ports

import (
	"context"

	"github.com/easelhq/easel/pkg/manifest"
)

// ModuleCatalog resolves module names to their manifests. A catalog is
// optional: without one the binding accepts any module name and leaves
// resolution to the runtime.
type ModuleCatalog interface {
	// Resolve returns the manifest for a module name.
	// Returns domain.ErrModuleUnknown if the catalog has no such module.
	Resolve(ctx context.Context, name string) (*manifest.Module, error)

	// List returns all known module names, sorted.
	List(ctx context.Context) ([]string, error)
}

// Watchable is implemented by catalogs that can notify about backend changes,
// typically for hot-reload in dev mode. The channel carries the name of the
// changed module.
type Watchable interface {
	Watch(ctx context.Context) (<-chan string, error)
}
