package cli

import (
	"context"
	"os"

	"github.com/easelhq/easel/pkg/adapters/inproc"
	"github.com/easelhq/easel/pkg/adapters/proc"
)

// RenderHostOptions configures the render-host command.
type RenderHostOptions struct {
	Config *Config
}

// RunRenderHost is the child side of the process render runtime: it answers
// lifecycle requests on stdin/stdout against an in-process runtime. Parents
// spawn it through the render_host config of serve, mcp or demo.
func RunRenderHost(opts RenderHostOptions) error {
	cfg := opts.Config
	logger := createLogger(cfg)

	if cfg.ErrorOverlay {
		inproc.SetErrorOverlayEnabled(true)
	}
	rt := inproc.New(
		inproc.WithLogger(logger),
		inproc.WithFallback(func() inproc.Component {
			return &traceComponent{logger: logger}
		}),
	)

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	return proc.Serve(sigCtx, os.Stdin, os.Stdout, rt, logger)
}
