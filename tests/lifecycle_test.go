package tests

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easelhq/easel"
	"github.com/easelhq/easel/pkg/adapters/inproc"
	"github.com/easelhq/easel/pkg/domain"
	"github.com/easelhq/easel/pkg/guard"
	"github.com/easelhq/easel/pkg/props"
	"github.com/easelhq/easel/pkg/vm"
)

// TestSurfaceSession_FullLifecycle drives one surface through its whole life:
// start with empty props, replace the props, stop, and verify that a second
// stop is reported as a violation without reaching the runtime.
func TestSurfaceSession_FullLifecycle(t *testing.T) {
	p := &probe{}
	rt := inproc.New()
	rt.Register("Main", p.factory())

	reg, err := easel.New(rt)
	require.NoError(t, err)

	inst := vm.New(vm.WithLabel("session"))
	defer inst.Close()
	ctx := context.Background()

	// 1. Start with an empty props tree
	require.NoError(t, reg.StartSurface(ctx, inst, 1, "Main", props.EmptyObject(), domain.DisplayModeVisible))

	record, err := reg.Inspect(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Main", record.Module)
	assert.EqualValues(t, 1, record.Generation)

	// 2. Replace the props wholesale
	require.NoError(t, reg.SetSurfaceProps(ctx, inst, 1, "Main", props.MustParse(`{"text": "hi"}`), domain.DisplayModeVisible))

	record, err = reg.Inspect(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, record.Generation)
	text, ok := record.Props.Field("text")
	require.True(t, ok)
	assert.True(t, props.Equal(props.String("hi"), text))

	// 3. Stop tears the surface down and releases the ID
	require.NoError(t, reg.StopSurface(ctx, inst, 1))
	assert.False(t, rt.Mounted(1))
	_, err = reg.Inspect(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrSurfaceNotFound)

	// 4. A second stop is rejected, not executed
	before := len(rt.Journal())
	err = reg.StopSurface(ctx, inst, 1)
	var invalid *domain.InvalidStateError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, domain.OpStop, invalid.Op)
	assert.ErrorIs(t, err, domain.ErrSurfaceNotFound)
	assert.Len(t, rt.Journal(), before, "rejected stop must not reach the runtime")

	calls := p.forSurface(1)
	require.Len(t, calls, 4)
	assert.Equal(t, "mount", calls[0].Op)
	assert.Equal(t, "render", calls[1].Op)
	assert.Equal(t, "render", calls[2].Op)
	assert.Equal(t, "unmount", calls[3].Op)
}

func TestStartSurface_ActiveIDRejected(t *testing.T) {
	p := &probe{}
	rt := inproc.New()
	rt.Register("Main", p.factory())

	reg, err := easel.New(rt)
	require.NoError(t, err)

	inst := vm.New()
	defer inst.Close()
	ctx := context.Background()

	require.NoError(t, reg.StartSurface(ctx, inst, 7, "Main", props.EmptyObject(), domain.DisplayModeVisible))

	err = reg.StartSurface(ctx, inst, 7, "Main", props.EmptyObject(), domain.DisplayModeVisible)
	var invalid *domain.InvalidStateError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, domain.OpStart, invalid.Op)
	assert.ErrorIs(t, err, domain.ErrSurfaceAlreadyStarted)

	// The first session is untouched
	record, err := reg.Inspect(ctx, 7)
	require.NoError(t, err)
	assert.EqualValues(t, 1, record.Generation)
	assert.Len(t, p.forSurface(7), 2, "the rejected start must not mount a second component")
}

func TestSetSurfaceProps_UnknownSurfaceRejected(t *testing.T) {
	rt := inproc.New()
	reg, err := easel.New(rt)
	require.NoError(t, err)

	inst := vm.New()
	defer inst.Close()

	err = reg.SetSurfaceProps(context.Background(), inst, 5, "Main", props.EmptyObject(), domain.DisplayModeVisible)
	var invalid *domain.InvalidStateError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, domain.OpSetProps, invalid.Op)
	assert.ErrorIs(t, err, domain.ErrSurfaceNotFound)
	assert.Empty(t, rt.Journal())
}

// Props replacements carry a whole new tree. Keys from the previous tree
// must not leak into the replacement.
func TestSetSurfaceProps_NoMerge(t *testing.T) {
	p := &probe{}
	rt := inproc.New()
	rt.Register("Main", p.factory())

	reg, err := easel.New(rt)
	require.NoError(t, err)

	inst := vm.New()
	defer inst.Close()
	ctx := context.Background()

	require.NoError(t, reg.StartSurface(ctx, inst, 2, "Main", props.MustParse(`{"title": "hello", "count": 1}`), domain.DisplayModeVisible))
	require.NoError(t, reg.SetSurfaceProps(ctx, inst, 2, "Main", props.MustParse(`{"count": 2}`), domain.DisplayModeVisible))

	record, err := reg.Inspect(ctx, 2)
	require.NoError(t, err)
	_, ok := record.Props.Field("title")
	assert.False(t, ok, "old keys must not survive a replacement")

	calls := p.forSurface(2)
	last := calls[len(calls)-1]
	_, ok = last.Props.Field("title")
	assert.False(t, ok, "the runtime must render the replacement tree, not a merge")
	count, _ := last.Props.Field("count")
	assert.True(t, props.Equal(props.Number(2), count))
}

// Operations on different surfaces may interleave freely, but each surface
// must observe its own operations exactly in issuance order.
func TestInterleavedSurfaces_PerSurfaceOrder(t *testing.T) {
	p := &probe{}
	rt := inproc.New()
	rt.Register("Main", p.factory())

	reg, err := easel.New(rt)
	require.NoError(t, err)

	inst := vm.New()
	defer inst.Close()
	ctx := context.Background()

	require.NoError(t, reg.StartSurface(ctx, inst, 1, "Main", props.MustParse(`{"seq": 0}`), domain.DisplayModeVisible))
	require.NoError(t, reg.StartSurface(ctx, inst, 2, "Main", props.MustParse(`{"seq": 0}`), domain.DisplayModeVisible))
	require.NoError(t, reg.SetSurfaceProps(ctx, inst, 1, "Main", props.MustParse(`{"seq": 1}`), domain.DisplayModeVisible))
	require.NoError(t, reg.SetSurfaceProps(ctx, inst, 2, "Main", props.MustParse(`{"seq": 1}`), domain.DisplayModeVisible))
	require.NoError(t, reg.SetSurfaceProps(ctx, inst, 1, "Main", props.MustParse(`{"seq": 2}`), domain.DisplayModeVisible))
	require.NoError(t, reg.StopSurface(ctx, inst, 2))
	require.NoError(t, reg.StopSurface(ctx, inst, 1))

	var ops1, ops2 []string
	for _, entry := range rt.Journal() {
		switch entry.Surface {
		case 1:
			ops1 = append(ops1, entry.Op)
		case 2:
			ops2 = append(ops2, entry.Op)
		}
	}
	assert.Equal(t, []string{"start", "set_props", "set_props", "stop"}, ops1)
	assert.Equal(t, []string{"start", "set_props", "stop"}, ops2)
}

// TestGuardedRegistry_ConcurrentSessions runs one session per goroutine
// behind the guard. Every session must complete, leave no record behind, and
// keep its own render order intact.
func TestGuardedRegistry_ConcurrentSessions(t *testing.T) {
	p := &probe{}
	rt := inproc.New()
	rt.Register("Worker", p.factory())

	reg, err := easel.New(rt)
	require.NoError(t, err)
	g := guard.New(reg)

	inst := vm.New()
	defer inst.Close()
	ctx := context.Background()

	const sessions = 8
	const updates = 20

	var wg sync.WaitGroup
	errs := make(chan error, sessions)
	for s := 0; s < sessions; s++ {
		wg.Add(1)
		go func(id domain.SurfaceID) {
			defer wg.Done()
			if err := g.StartSurface(ctx, inst, id, "Worker", props.MustParse(`{"seq": 0}`), domain.DisplayModeVisible); err != nil {
				errs <- err
				return
			}
			for i := 1; i <= updates; i++ {
				tree := props.MustParse(fmt.Sprintf(`{"seq": %d}`, i))
				if err := g.SetSurfaceProps(ctx, inst, id, "Worker", tree, domain.DisplayModeVisible); err != nil {
					errs <- err
					return
				}
			}
			errs <- g.StopSurface(ctx, inst, id)
		}(domain.SurfaceID(100 + s))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	records, err := reg.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	for s := 0; s < sessions; s++ {
		id := domain.SurfaceID(100 + s)
		calls := p.forSurface(id)
		require.Len(t, calls, updates+3, "surface %s", id)
		assert.Equal(t, "mount", calls[0].Op)
		assert.Equal(t, "unmount", calls[len(calls)-1].Op)
		for i := 0; i <= updates; i++ {
			seq, _ := calls[i+1].Props.Field("seq")
			assert.True(t, props.Equal(props.Number(float64(i)), seq), "surface %s render %d out of order", id, i)
		}
	}
}
