package binding_test

import (
	"context"
	"sync"

	"github.com/easelhq/easel/pkg/domain"
	"github.com/easelhq/easel/pkg/props"
	"github.com/easelhq/easel/pkg/vm"
)

// recordedCall is one operation as observed by the fake runtime.
type recordedCall struct {
	op         string
	surface    domain.SurfaceID
	module     string
	props      props.Value
	mode       domain.DisplayMode
	generation uint64
	instance   string
}

// runtimeRecorder is a RenderRuntime that records every forwarded operation
// in arrival order. Operations can be made to fail per op name.
type runtimeRecorder struct {
	mu    sync.Mutex
	calls []recordedCall
	fail  map[string]error
}

func newRuntimeRecorder() *runtimeRecorder {
	return &runtimeRecorder{fail: make(map[string]error)}
}

func (r *runtimeRecorder) StartSurface(ctx context.Context, inst *vm.Instance, s *domain.Surface) error {
	return r.record(recordedCall{
		op: domain.OpStart, surface: s.ID, module: s.Module,
		props: s.Props, mode: s.Mode, generation: s.Generation, instance: inst.ID(),
	})
}

func (r *runtimeRecorder) SetSurfaceProps(ctx context.Context, inst *vm.Instance, s *domain.Surface) error {
	return r.record(recordedCall{
		op: domain.OpSetProps, surface: s.ID, module: s.Module,
		props: s.Props, mode: s.Mode, generation: s.Generation, instance: inst.ID(),
	})
}

func (r *runtimeRecorder) StopSurface(ctx context.Context, inst *vm.Instance, id domain.SurfaceID) error {
	return r.record(recordedCall{op: domain.OpStop, surface: id, instance: inst.ID()})
}

func (r *runtimeRecorder) record(c recordedCall) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail[c.op]; err != nil {
		return err
	}
	r.calls = append(r.calls, c)
	return nil
}

func (r *runtimeRecorder) failOn(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail[op] = err
}

func (r *runtimeRecorder) recover(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.fail, op)
}

func (r *runtimeRecorder) all() []recordedCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]recordedCall, len(r.calls))
	copy(out, r.calls)
	return out
}

func (r *runtimeRecorder) forSurface(id domain.SurfaceID) []recordedCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []recordedCall
	for _, c := range r.calls {
		if c.surface == id {
			out = append(out, c)
		}
	}
	return out
}

func (r *runtimeRecorder) last() (recordedCall, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return recordedCall{}, false
	}
	return r.calls[len(r.calls)-1], true
}
