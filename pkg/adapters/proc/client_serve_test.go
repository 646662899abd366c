package proc_test

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/easelhq/easel/pkg/adapters/inproc"
	"github.com/easelhq/easel/pkg/adapters/proc"
	"github.com/easelhq/easel/pkg/domain"
	"github.com/easelhq/easel/pkg/props"
	"github.com/easelhq/easel/pkg/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingComponent keeps the last rendered props so tests can check what
// crossed the pipe.
type recordingComponent struct {
	mu   sync.Mutex
	last props.Value
}

func (c *recordingComponent) Mount(ctx context.Context, s *domain.Surface) error { return nil }

func (c *recordingComponent) Render(ctx context.Context, s *domain.Surface) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = s.Props
	return nil
}

func (c *recordingComponent) Unmount(ctx context.Context) error { return nil }

func (c *recordingComponent) lastProps() props.Value {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// blockingComponent parks every render until released.
type blockingComponent struct {
	release chan struct{}
}

func (c *blockingComponent) Mount(ctx context.Context, s *domain.Surface) error { return nil }

func (c *blockingComponent) Render(ctx context.Context, s *domain.Surface) error {
	<-c.release
	return nil
}

func (c *blockingComponent) Unmount(ctx context.Context) error { return nil }

// startHost wires a Client to a Serve loop over in-memory pipes.
func startHost(t *testing.T, rt *inproc.Runtime) (*proc.Client, func()) {
	t.Helper()

	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()

	serveDone := make(chan error, 1)
	go func() {
		serveDone <- proc.Serve(context.Background(), reqR, respW, rt, nil)
	}()

	client := proc.NewClient(reqW, respR, nil)

	cleanup := func() {
		_ = reqW.Close()
		require.NoError(t, <-serveDone)
		_ = respW.Close()
		_ = client.Close()
	}
	return client, cleanup
}

func TestClientServe_Roundtrip(t *testing.T) {
	rt := inproc.New()
	comp := &recordingComponent{}
	rt.Register("Main", func() inproc.Component { return comp })

	client, cleanup := startHost(t, rt)
	defer cleanup()

	ctx := context.Background()
	inst := vm.New()

	require.NoError(t, client.StartSurface(ctx, inst, &domain.Surface{
		ID:     1,
		Module: "Main",
		Props:  props.MustParse(`{"text": "hi"}`),
		Mode:   domain.DisplayModeVisible,
	}))
	require.NoError(t, client.SetSurfaceProps(ctx, inst, &domain.Surface{
		ID:         1,
		Module:     "Main",
		Props:      props.MustParse(`{"text": "bye"}`),
		Mode:       domain.DisplayModeVisible,
		Generation: 2,
	}))

	last := comp.lastProps()
	text, _ := last.Field("text")
	got, _ := text.AsString()
	assert.Equal(t, "bye", got, "props should cross the pipe intact")

	require.NoError(t, client.StopSurface(ctx, inst, 1))
	assert.False(t, rt.Mounted(1))

	journal := rt.Journal()
	require.Len(t, journal, 3)
	assert.Equal(t, "start", journal[0].Op)
	assert.Equal(t, "set_props", journal[1].Op)
	assert.Equal(t, uint64(2), journal[1].Generation)
	assert.Equal(t, "stop", journal[2].Op)
}

func TestClientServe_HostErrorsPropagate(t *testing.T) {
	client, cleanup := startHost(t, inproc.New())
	defer cleanup()

	err := client.StartSurface(context.Background(), vm.New(), &domain.Surface{
		ID:     1,
		Module: "Ghost",
		Props:  props.EmptyObject(),
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "host rejected start for surface 1")
	assert.ErrorContains(t, err, `no component for module "Ghost"`)
}

func TestClientServe_OrderPreservedAcrossPipe(t *testing.T) {
	rt := inproc.New()
	rt.Register("Main", func() inproc.Component { return &recordingComponent{} })

	client, cleanup := startHost(t, rt)
	defer cleanup()

	ctx := context.Background()
	inst := vm.New()

	require.NoError(t, client.StartSurface(ctx, inst, &domain.Surface{
		ID:     1,
		Module: "Main",
		Props:  props.MustParse(`{"seq": 0}`),
		Mode:   domain.DisplayModeVisible,
	}))
	const updates = 30
	for i := 1; i <= updates; i++ {
		require.NoError(t, client.SetSurfaceProps(ctx, inst, &domain.Surface{
			ID:         1,
			Module:     "Main",
			Props:      props.MustParse(fmt.Sprintf(`{"seq": %d}`, i)),
			Mode:       domain.DisplayModeVisible,
			Generation: uint64(i),
		}))
	}

	journal := rt.Journal()
	require.Len(t, journal, updates+1)
	for i, entry := range journal[1:] {
		assert.Equal(t, uint64(i+1), entry.Generation, "update %d arrived out of order", i+1)
	}
}

func TestClientServe_DeadlineExpires(t *testing.T) {
	rt := inproc.New()
	comp := &blockingComponent{release: make(chan struct{})}
	rt.Register("Main", func() inproc.Component { return comp })

	client, cleanup := startHost(t, rt)

	ctx := context.Background()
	inst := vm.New()

	// Start without a render so only the update blocks.
	require.NoError(t, client.StartSurface(ctx, inst, &domain.Surface{
		ID:     1,
		Module: "Main",
		Props:  props.EmptyObject(),
		Mode:   domain.DisplayModeSuspended,
	}))

	waitCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()

	err := client.SetSurfaceProps(waitCtx, inst, &domain.Surface{
		ID:         1,
		Module:     "Main",
		Props:      props.EmptyObject(),
		Mode:       domain.DisplayModeVisible,
		Generation: 2,
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// Unblock the host so it can finish the abandoned render and shut down.
	close(comp.release)
	cleanup()
}

func TestClient_HostCrash(t *testing.T) {
	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()
	client := proc.NewClient(reqW, respR, nil)

	// Fake host: consume one request, then die without answering.
	sawRequest := make(chan struct{})
	go func() {
		scanner := bufio.NewScanner(reqR)
		scanner.Scan()
		close(sawRequest)
		_, _ = io.Copy(io.Discard, reqR)
	}()

	ctx := context.Background()
	inst := vm.New()
	errCh := make(chan error, 1)
	go func() {
		errCh <- client.StartSurface(ctx, inst, &domain.Surface{
			ID:     1,
			Module: "Main",
			Props:  props.EmptyObject(),
		})
	}()

	<-sawRequest
	require.NoError(t, respW.Close())

	err := <-errCh
	assert.ErrorIs(t, err, proc.ErrHostDown, "in-flight call should fail when the host dies")

	err = client.StopSurface(ctx, inst, 1)
	assert.ErrorIs(t, err, proc.ErrHostDown, "later calls should fail fast")
	assert.Error(t, client.Err())
}
