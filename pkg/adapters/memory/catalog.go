package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/easelhq/easel/pkg/domain"
	"github.com/easelhq/easel/pkg/manifest"
)

// Catalog implements ports.ModuleCatalog over an in-memory set of manifests.
// Safe for concurrent use.
type Catalog struct {
	modules map[string]*manifest.Module
	mu      sync.RWMutex
}

// NewCatalog creates a catalog pre-populated with the given modules.
func NewCatalog(modules ...*manifest.Module) (*Catalog, error) {
	c := &Catalog{
		modules: make(map[string]*manifest.Module),
	}
	for _, m := range modules {
		if err := c.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Register adds a module to the catalog. Registering a name twice is an
// error; updates go through Replace.
func (c *Catalog) Register(m *manifest.Module) error {
	if err := m.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.modules[m.Name]; exists {
		return fmt.Errorf("module %s already registered", m.Name)
	}
	c.modules[m.Name] = m.Clone()
	return nil
}

// Replace inserts or overwrites a module manifest.
func (c *Catalog) Replace(m *manifest.Module) error {
	if err := m.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.modules[m.Name] = m.Clone()
	return nil
}

// Resolve returns the manifest for a module name.
func (c *Catalog) Resolve(ctx context.Context, name string) (*manifest.Module, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m, ok := c.modules[name]
	if !ok {
		return nil, fmt.Errorf("module %q: %w", name, domain.ErrModuleUnknown)
	}
	return m.Clone(), nil
}

// List returns all registered module names, sorted.
func (c *Catalog) List(ctx context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.modules))
	for name := range c.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
