package middleware

import (
	"context"
	"regexp"

	"github.com/easelhq/easel/pkg/domain"
	"github.com/easelhq/easel/pkg/ports"
	"github.com/easelhq/easel/pkg/props"
)

// mask replaces a scrubbed prop's value.
const mask = "***"

type scrubMiddleware struct {
	next     ports.SurfaceStore
	patterns []*regexp.Regexp
}

// NewScrubMiddleware creates a middleware that masks props whose key matches
// any of the patterns before the record is persisted. Loads return the
// stored, already-scrubbed record; scrubbing is one-way.
func NewScrubMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.SurfaceStore) ports.SurfaceStore {
		return &scrubMiddleware{next: next, patterns: patterns}
	}
}

func (m *scrubMiddleware) Save(ctx context.Context, surface *domain.Surface) error {
	scrubbed := surface.Clone()
	scrubbed.Props = m.scrub(surface.Props)
	return m.next.Save(ctx, scrubbed)
}

func (m *scrubMiddleware) Load(ctx context.Context, id domain.SurfaceID) (*domain.Surface, error) {
	return m.next.Load(ctx, id)
}

func (m *scrubMiddleware) Delete(ctx context.Context, id domain.SurfaceID) error {
	return m.next.Delete(ctx, id)
}

func (m *scrubMiddleware) List(ctx context.Context) ([]domain.SurfaceID, error) {
	return m.next.List(ctx)
}

// scrub rebuilds the tree with matching keys masked. Arrays are walked too,
// so objects nested in lists don't escape scrubbing.
func (m *scrubMiddleware) scrub(v props.Value) props.Value {
	switch v.Kind() {
	case props.KindObject:
		keys := v.Fields()
		fields := make(map[string]props.Value, len(keys))
		for _, key := range keys {
			child, _ := v.Field(key)
			if m.matches(key) {
				fields[key] = props.String(mask)
				continue
			}
			fields[key] = m.scrub(child)
		}
		return props.Object(fields)
	case props.KindArray:
		elems := make([]props.Value, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			child, _ := v.Index(i)
			elems = append(elems, m.scrub(child))
		}
		return props.Array(elems...)
	default:
		return v
	}
}

func (m *scrubMiddleware) matches(key string) bool {
	for _, p := range m.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
