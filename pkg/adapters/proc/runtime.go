package proc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"time"

	"github.com/easelhq/easel/pkg/domain"
	"github.com/easelhq/easel/pkg/ports"
	"github.com/easelhq/easel/pkg/vm"
)

// Option configures the Runtime.
type Option func(*Runtime)

// WithDir sets the child's working directory.
func WithDir(dir string) Option {
	return func(r *Runtime) {
		r.dir = dir
	}
}

// WithEnv adds environment variables to the child, on top of the parent's.
func WithEnv(env map[string]string) Option {
	return func(r *Runtime) {
		r.env = env
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// WithShutdownGrace sets how long Close waits for the host to exit on its
// own before killing it. The default is 5 seconds.
func WithShutdownGrace(grace time.Duration) Option {
	return func(r *Runtime) {
		r.grace = grace
	}
}

// Runtime implements ports.RenderRuntime by spawning a render-host child
// process and speaking the line protocol over its stdin/stdout. The child's
// stderr is forwarded to the logger.
type Runtime struct {
	command string
	args    []string
	dir     string
	env     map[string]string
	logger  *slog.Logger
	grace   time.Duration

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	client *Client
	waitCh chan error
}

var _ ports.RenderRuntime = (*Runtime)(nil)

// NewRuntime prepares a runtime for the given host command. Call Start
// before issuing operations.
func NewRuntime(command string, args ...string) *Runtime {
	return &Runtime{
		command: command,
		args:    args,
		logger:  slog.New(slog.NewJSONHandler(io.Discard, nil)),
		grace:   5 * time.Second,
	}
}

// Start spawns the render host and connects the protocol client.
func (r *Runtime) Start(ctx context.Context, opts ...Option) error {
	if r.cmd != nil {
		return errors.New("render host already started")
	}
	for _, opt := range opts {
		opt(r)
	}

	cmd := exec.CommandContext(ctx, r.command, r.args...)
	cmd.Dir = r.dir
	env := cmd.Environ()
	for k, v := range r.env {
		env = append(env, k+"="+v)
	}
	cmd.Env = env

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to open stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to open stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start render host %s: %w", r.command, err)
	}
	r.logger.Debug("Render host started", "command", r.command, "pid", cmd.Process.Pid)

	r.cmd = cmd
	r.stdin = stdin
	r.client = NewClient(stdin, stdout, r.logger)

	stderrDone := make(chan struct{})
	go func() {
		r.forwardStderr(stderr)
		close(stderrDone)
	}()

	// Wait must not run until both pipe readers finished, or it would close
	// the pipes under them.
	r.waitCh = make(chan error, 1)
	go func() {
		<-r.client.Done()
		<-stderrDone
		r.waitCh <- cmd.Wait()
	}()
	return nil
}

// StartSurface forwards a start to the child.
func (r *Runtime) StartSurface(ctx context.Context, inst *vm.Instance, surface *domain.Surface) error {
	if r.client == nil {
		return ErrHostDown
	}
	return r.client.StartSurface(ctx, inst, surface)
}

// SetSurfaceProps forwards a props replacement to the child.
func (r *Runtime) SetSurfaceProps(ctx context.Context, inst *vm.Instance, surface *domain.Surface) error {
	if r.client == nil {
		return ErrHostDown
	}
	return r.client.SetSurfaceProps(ctx, inst, surface)
}

// StopSurface forwards a teardown to the child.
func (r *Runtime) StopSurface(ctx context.Context, inst *vm.Instance, id domain.SurfaceID) error {
	if r.client == nil {
		return ErrHostDown
	}
	return r.client.StopSurface(ctx, inst, id)
}

// Close asks the host to exit by closing its stdin, then reaps it. A host
// that ignores EOF is killed after a grace period.
func (r *Runtime) Close() error {
	if r.cmd == nil {
		return nil
	}
	_ = r.stdin.Close()

	select {
	case err := <-r.waitCh:
		var exit *exec.ExitError
		if errors.As(err, &exit) {
			return fmt.Errorf("render host exited with %s", exit.ProcessState)
		}
		return err
	case <-time.After(r.grace):
		_ = r.cmd.Process.Kill()
		<-r.waitCh
		return errors.New("render host ignored shutdown, killed")
	}
}

func (r *Runtime) forwardStderr(stderr io.Reader) {
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		r.logger.Debug("Render host stderr", "line", scanner.Text())
	}
}
