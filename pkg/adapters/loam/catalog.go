package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"

	"github.com/easelhq/easel/pkg/domain"
	"github.com/easelhq/easel/pkg/manifest"
	"github.com/easelhq/easel/pkg/props"
	"github.com/easelhq/easel/pkg/schema"
)

// Catalog adapts a Loam document repository to ports.ModuleCatalog: a
// directory of Markdown files with YAML frontmatter, one per module. The
// file name (extension stripped) is the lookup key; the Markdown body serves
// as the description when the frontmatter declares none.
type Catalog struct {
	Repo *loam.TypedRepository[ModuleMetadata]
}

// New creates a new Loam catalog adapter.
func New(repo *loam.TypedRepository[ModuleMetadata]) *Catalog {
	return &Catalog{
		Repo: repo,
	}
}

// Open initializes a Loam repository at dir and wraps it in a Catalog.
// Strict mode keeps numeric frontmatter as json.Number; read-only mode keeps
// Loam from sandboxing the directory, since the catalog never writes.
func Open(dir string) (*Catalog, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}

	return New(loam.NewTypedRepository[ModuleMetadata](repo)), nil
}

// Resolve retrieves a module manifest by name.
func (c *Catalog) Resolve(ctx context.Context, name string) (*manifest.Module, error) {
	doc, err := c.Repo.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("module %q: %w", name, domain.ErrModuleUnknown)
	}

	m, err := c.buildModule(doc.ID, doc.Data, doc.Content)
	if err != nil {
		return nil, fmt.Errorf("module %q: %w", name, err)
	}
	return m, nil
}

// buildModule converts frontmatter plus body into a validated manifest.
func (c *Catalog) buildModule(docID string, meta ModuleMetadata, content string) (*manifest.Module, error) {
	name := meta.Name
	if name == "" {
		name = trimExtension(docID)
	}

	description := meta.Description
	if description == "" {
		description = strings.TrimSpace(content)
	}

	mode, err := domain.ParseDisplayMode(meta.DefaultMode)
	if err != nil {
		return nil, err
	}

	defaults := props.Null()
	if meta.DefaultProps != nil {
		defaults, err = props.FromGo(meta.DefaultProps)
		if err != nil {
			return nil, fmt.Errorf("default_props: %w", err)
		}
	}

	typeMap, err := normalizeSchema(meta.Props)
	if err != nil {
		return nil, err
	}
	sch, err := schema.ParseTypeMap(typeMap)
	if err != nil {
		return nil, err
	}

	m := &manifest.Module{
		Name:         name,
		Description:  description,
		DefaultMode:  mode,
		DefaultProps: defaults,
		Props:        sch,
		Tags:         meta.Tags,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// List returns all module names in the repository, sorted by Loam's listing
// order, with collision detection across file types.
func (c *Catalog) List(ctx context.Context) ([]string, error) {
	docs, err := c.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	names := make([]string, 0, len(docs))

	for _, doc := range docs {
		// Use the name from metadata if available, otherwise the file name
		rawName := doc.Data.Name
		if rawName == "" {
			rawName = doc.ID
		}
		name := trimExtension(rawName)

		if existingPath, ok := seen[name]; ok {
			return nil, fmt.Errorf("collision detected: module %q is defined in both %q and %q", name, existingPath, doc.ID)
		}
		seen[name] = doc.ID
		names = append(names, name)
	}
	return names, nil
}

// Watch implements ports.Watchable. The channel carries the name of the
// changed module.
func (c *Catalog) Watch(ctx context.Context) (<-chan string, error) {
	events, err := c.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				// Loam debounces internally; pass the changed name up the
				// chain, respecting context cancellation.
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
