package tests

import (
	"context"
	"sync"

	"github.com/easelhq/easel/pkg/adapters/inproc"
	"github.com/easelhq/easel/pkg/domain"
	"github.com/easelhq/easel/pkg/props"
)

// probeCall is one lifecycle call observed by a probe-backed component.
type probeCall struct {
	Op         string
	Surface    domain.SurfaceID
	Generation uint64
	Props      props.Value
}

// probe records every lifecycle call made to components built from its
// factory. One probe typically backs a whole runtime.
type probe struct {
	mu    sync.Mutex
	calls []probeCall
}

func (p *probe) factory() inproc.ComponentFactory {
	return func() inproc.Component { return &probeComponent{probe: p} }
}

func (p *probe) record(call probeCall) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call)
}

// forSurface returns the calls observed for one surface, in order.
func (p *probe) forSurface(id domain.SurfaceID) []probeCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []probeCall
	for _, call := range p.calls {
		if call.Surface == id {
			out = append(out, call)
		}
	}
	return out
}

type probeComponent struct {
	probe *probe
	id    domain.SurfaceID
}

func (c *probeComponent) Mount(ctx context.Context, s *domain.Surface) error {
	c.id = s.ID
	c.probe.record(probeCall{Op: "mount", Surface: s.ID, Generation: s.Generation, Props: s.Props})
	return nil
}

func (c *probeComponent) Render(ctx context.Context, s *domain.Surface) error {
	c.probe.record(probeCall{Op: "render", Surface: s.ID, Generation: s.Generation, Props: s.Props})
	return nil
}

func (c *probeComponent) Unmount(ctx context.Context) error {
	c.probe.record(probeCall{Op: "unmount", Surface: c.id})
	return nil
}
