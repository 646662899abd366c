package proc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/easelhq/easel/pkg/domain"
	"github.com/easelhq/easel/pkg/ports"
	"github.com/easelhq/easel/pkg/vm"
)

// Serve runs the host side of the protocol: it reads request lines from in,
// drives them against next one at a time in arrival order, and answers each
// on out. It returns when in is exhausted or ctx is canceled. A nil logger
// discards log output.
//
// Sequential dispatch is what carries the ordering contract: operations come
// out of the pipe in the order the parent issued them.
func Serve(ctx context.Context, in io.Reader, out io.Writer, next ports.RenderRuntime, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	inst := vm.New(vm.WithLabel("render-host"))
	defer inst.Close()

	enc := json.NewEncoder(out)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var req request
		if err := json.Unmarshal(line, &req); err != nil {
			logger.Warn("Discarding unparseable request line", "err", err)
			continue
		}

		resp := response{ID: req.ID, OK: true}
		if err := dispatch(ctx, next, inst, req); err != nil {
			logger.Warn("Operation failed", "op", req.Op, "surface", req.Surface, "err", err)
			resp.OK = false
			resp.Error = err.Error()
		} else {
			logger.Debug("Operation applied", "op", req.Op, "surface", req.Surface)
		}

		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
	}
	return scanner.Err()
}

func dispatch(ctx context.Context, next ports.RenderRuntime, inst *vm.Instance, req request) error {
	surface := &domain.Surface{
		ID:         req.Surface,
		Module:     req.Module,
		Props:      req.Props,
		Mode:       req.Mode,
		Generation: req.Generation,
	}

	switch req.Op {
	case domain.OpStart:
		return next.StartSurface(ctx, inst, surface)
	case domain.OpSetProps:
		return next.SetSurfaceProps(ctx, inst, surface)
	case domain.OpStop:
		return next.StopSurface(ctx, inst, req.Surface)
	default:
		return fmt.Errorf("unknown op %q", req.Op)
	}
}
