package proc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/easelhq/easel/pkg/domain"
	"github.com/easelhq/easel/pkg/ports"
	"github.com/easelhq/easel/pkg/vm"
)

// ErrHostDown is returned for operations after the render host connection
// ended, whatever ended it.
var ErrHostDown = errors.New("render host is not running")

// Client speaks the line protocol over a writer/reader pair and implements
// ports.RenderRuntime. Runtime wires it to a child process; tests wire it to
// in-memory pipes.
type Client struct {
	logger *slog.Logger

	writeMu sync.Mutex
	enc     *json.Encoder

	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]chan response
	cause   error
	down    chan struct{}
}

var _ ports.RenderRuntime = (*Client)(nil)

// NewClient creates a client over the given streams and starts reading
// responses. A nil logger discards log output.
func NewClient(w io.Writer, r io.Reader, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	c := &Client{
		logger:  logger,
		enc:     json.NewEncoder(w),
		pending: make(map[uint64]chan response),
		down:    make(chan struct{}),
	}
	go c.readLoop(r)
	return c
}

// StartSurface forwards a start operation and waits for the host's answer.
func (c *Client) StartSurface(ctx context.Context, inst *vm.Instance, surface *domain.Surface) error {
	return c.call(ctx, request{
		Op:         domain.OpStart,
		Surface:    surface.ID,
		Module:     surface.Module,
		Props:      surface.Props,
		Mode:       surface.Mode,
		Generation: surface.Generation,
		Instance:   instanceID(inst),
	})
}

// SetSurfaceProps forwards a props replacement.
func (c *Client) SetSurfaceProps(ctx context.Context, inst *vm.Instance, surface *domain.Surface) error {
	return c.call(ctx, request{
		Op:         domain.OpSetProps,
		Surface:    surface.ID,
		Module:     surface.Module,
		Props:      surface.Props,
		Mode:       surface.Mode,
		Generation: surface.Generation,
		Instance:   instanceID(inst),
	})
}

// StopSurface forwards a teardown.
func (c *Client) StopSurface(ctx context.Context, inst *vm.Instance, id domain.SurfaceID) error {
	return c.call(ctx, request{
		Op:       domain.OpStop,
		Surface:  id,
		Instance: instanceID(inst),
	})
}

// Done is closed once the connection ends.
func (c *Client) Done() <-chan struct{} {
	return c.down
}

// Err returns what ended the connection, or nil while it is up.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cause
}

// Close tears the client down. Pending and later calls fail with ErrHostDown.
func (c *Client) Close() error {
	c.fail(errors.New("client closed"))
	return nil
}

func (c *Client) call(ctx context.Context, req request) error {
	c.mu.Lock()
	if c.cause != nil {
		cause := c.cause
		c.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrHostDown, cause)
	}
	c.nextID++
	req.ID = c.nextID
	ch := make(chan response, 1)
	c.pending[req.ID] = ch
	c.mu.Unlock()

	c.writeMu.Lock()
	err := c.enc.Encode(req)
	c.writeMu.Unlock()
	if err != nil {
		c.forget(req.ID)
		return fmt.Errorf("failed to send %s for surface %s: %w", req.Op, req.Surface, err)
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			return c.downErr()
		}
		if !resp.OK {
			return fmt.Errorf("host rejected %s for surface %s: %s", req.Op, req.Surface, resp.Error)
		}
		return nil
	case <-ctx.Done():
		c.forget(req.ID)
		return ctx.Err()
	case <-c.down:
		return c.downErr()
	}
}

func (c *Client) readLoop(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var resp response
		if err := json.Unmarshal(line, &resp); err != nil {
			c.logger.Warn("Discarding unparseable host line", "err", err)
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		delete(c.pending, resp.ID)
		c.mu.Unlock()
		if !ok {
			// Caller already gave up on this request, usually via deadline.
			c.logger.Debug("Response for abandoned request", "id", resp.ID)
			continue
		}
		ch <- resp
	}

	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}
	c.fail(fmt.Errorf("connection lost: %w", err))
}

// fail marks the client down exactly once and releases every waiter.
func (c *Client) fail(cause error) {
	c.mu.Lock()
	if c.cause != nil {
		c.mu.Unlock()
		return
	}
	c.cause = cause
	close(c.down)
	pending := c.pending
	c.pending = make(map[uint64]chan response)
	c.mu.Unlock()

	for _, ch := range pending {
		close(ch)
	}
}

func (c *Client) forget(id uint64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Client) downErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cause != nil {
		return fmt.Errorf("%w: %v", ErrHostDown, c.cause)
	}
	return ErrHostDown
}

func instanceID(inst *vm.Instance) string {
	if inst == nil {
		return ""
	}
	return inst.ID()
}
