package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/easelhq/easel/pkg/domain"
	"github.com/easelhq/easel/pkg/ports"
	"github.com/easelhq/easel/pkg/vm"
)

// Host drives a surface registry from an interactive command loop using
// provided IO. This allows for easy testing and integration with different
// frontends (CLI, TUI, structured clients).
type Host struct {
	// Handler is the strategy for IO. If nil, a TextHandler on
	// Stdin/Stdout is used.
	Handler IOHandler

	// Interceptor is a middleware for command policy. If nil, every
	// command is approved.
	Interceptor CommandInterceptor

	// Logger is used for internal debug logging. If nil, a no-op logger
	// is used.
	Logger *slog.Logger

	binding ports.Binding
	inst    *vm.Instance
}

// Option configures the Host.
type Option func(*Host)

// WithHandler configures a custom IOHandler.
func WithHandler(handler IOHandler) Option {
	return func(h *Host) {
		h.Handler = handler
	}
}

// WithInterceptor configures the command policy middleware.
func WithInterceptor(interceptor CommandInterceptor) Option {
	return func(h *Host) {
		h.Interceptor = interceptor
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Host) {
		h.Logger = logger
	}
}

// WithInstance sets the execution context commands are issued under.
func WithInstance(inst *vm.Instance) Option {
	return func(h *Host) {
		h.inst = inst
	}
}

// New creates a Host around the binding.
func New(binding ports.Binding, opts ...Option) *Host {
	h := &Host{binding: binding}
	for _, opt := range opts {
		opt(h)
	}
	if h.inst == nil {
		h.inst = vm.New(vm.WithLabel("host"))
	}
	if h.Logger == nil {
		h.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return h
}

// Run executes the command loop until the operator quits, input ends, or a
// second interrupt arrives. The first interrupt stops every active surface
// and keeps the loop alive; the second one aborts.
func (h *Host) Run(ctx context.Context) error {
	handler := h.resolveHandler()
	interceptor := h.resolveInterceptor()

	signals := NewSignalManager(ctx)
	defer signals.Stop()

	interrupted := false

	for {
		cmdCtx := signals.Context()

		cmd, err := handler.ReadCommand(cmdCtx)
		if err != nil {
			signals.CheckRace()

			if cmdCtx.Err() != nil {
				if interrupted {
					_ = handler.SystemOutput(context.Background(), "aborted")
					return nil
				}
				interrupted = true
				h.Logger.Debug("host: interrupt, stopping active surfaces")
				h.stopAll(context.Background(), handler)
				signals.Reset()
				continue
			}

			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read command: %w", err)
		}
		interrupted = false

		if cmd.Op == CmdQuit {
			h.stopAll(cmdCtx, handler)
			_ = handler.SystemOutput(cmdCtx, "bye")
			return nil
		}

		allowed, err := interceptor(cmdCtx, cmd)
		if err != nil {
			return fmt.Errorf("command interceptor: %w", err)
		}
		if !allowed {
			_ = handler.SystemOutput(cmdCtx, fmt.Sprintf("%s denied by policy", cmd.Op))
			continue
		}

		h.apply(cmdCtx, handler, cmd)
	}
}

// apply executes one command against the binding and reports the outcome
// through the handler. Operation failures are presented, never fatal.
func (h *Host) apply(ctx context.Context, handler IOHandler, cmd Command) {
	var err error
	switch cmd.Op {
	case CmdStart:
		err = h.binding.StartSurface(ctx, h.inst, cmd.ID, cmd.Module, cmd.Props, cmd.Mode)
	case CmdSet:
		err = h.binding.SetSurfaceProps(ctx, h.inst, cmd.ID, cmd.Module, cmd.Props, cmd.Mode)
	case CmdStop:
		err = h.binding.StopSurface(ctx, h.inst, cmd.ID)
	case CmdInspect:
		var record *domain.Surface
		record, err = h.binding.Inspect(ctx, cmd.ID)
		if err == nil {
			_ = handler.WriteRecord(ctx, cmd.Op, record)
			return
		}
	case CmdList:
		var records []*domain.Surface
		records, err = h.binding.List(ctx)
		if err == nil {
			if len(records) == 0 {
				_ = handler.SystemOutput(ctx, "no active surfaces")
				return
			}
			for _, record := range records {
				_ = handler.WriteRecord(ctx, cmd.Op, record)
			}
			return
		}
	default:
		err = fmt.Errorf("unknown command %q", cmd.Op)
	}

	if err != nil {
		h.Logger.Debug("host: command failed", "op", cmd.Op, "surface", cmd.ID, "err", err)
		_ = handler.WriteError(ctx, err)
		return
	}

	if cmd.Op == CmdStop {
		_ = handler.SystemOutput(ctx, fmt.Sprintf("surface %s stopped", cmd.ID))
		return
	}

	record, err := h.binding.Inspect(ctx, cmd.ID)
	if err != nil {
		// The operation went through; the record can already be gone again.
		return
	}
	_ = handler.WriteRecord(ctx, cmd.Op, record)
}

// stopAll tears down every active surface, oldest ID first.
func (h *Host) stopAll(ctx context.Context, handler IOHandler) {
	records, err := h.binding.List(ctx)
	if err != nil {
		h.Logger.Debug("host: list failed during shutdown", "err", err)
		return
	}
	for _, record := range records {
		if err := h.binding.StopSurface(ctx, h.inst, record.ID); err != nil {
			h.Logger.Debug("host: stop failed during shutdown", "surface", record.ID, "err", err)
			continue
		}
		_ = handler.SystemOutput(ctx, fmt.Sprintf("surface %s stopped", record.ID))
	}
}

func (h *Host) resolveHandler() IOHandler {
	if h.Handler != nil {
		return h.Handler
	}
	// Memoize to prevent creating new pumps on subsequent Run calls.
	h.Handler = NewTextHandler(os.Stdin, os.Stdout)
	return h.Handler
}

func (h *Host) resolveInterceptor() CommandInterceptor {
	if h.Interceptor != nil {
		return h.Interceptor
	}
	return AutoApprove()
}
