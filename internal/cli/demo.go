package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/easelhq/easel"
	"github.com/easelhq/easel/internal/presentation/tui"
	"github.com/easelhq/easel/pkg/host"
)

// DemoOptions configures the demo command.
type DemoOptions struct {
	Config *Config

	// JSON switches the loop to NDJSON on stdin/stdout for harnesses.
	JSON bool

	// Confirm asks before each stop command is executed.
	Confirm bool

	// In and Out default to stdin and stdout.
	In  io.Reader
	Out io.Writer
}

// RunDemo drives the binding from an interactive command loop. Surfaces
// render as terminal cards; every lifecycle rule applies exactly as it does
// behind the HTTP and MCP transports.
func RunDemo(opts DemoOptions) error {
	cfg := opts.Config
	logger := createLogger(cfg)

	in := opts.In
	if in == nil {
		in = os.Stdin
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	if !opts.JSON {
		tui.PrintBanner(easel.Version)
	}

	engine, err := createEngine(context.Background(), cfg, logger)
	if err != nil {
		return err
	}
	defer engine.Close()

	var handler host.IOHandler
	if opts.JSON {
		handler = host.NewJSONHandler(in, out)
	} else {
		handler = host.NewTextHandler(in, out, host.WithRenderer(tui.SurfaceCard()))
	}

	hostOpts := []host.Option{
		host.WithHandler(handler),
		host.WithLogger(logger),
		host.WithInstance(engine.Instance),
	}
	if opts.Confirm {
		hostOpts = append(hostOpts, host.WithInterceptor(host.ConfirmStops(handler)))
	}

	if !opts.JSON {
		printSystemMessage("Commands: start <id> <module> [props] [mode], set <id> [props] [mode], stop <id>, inspect <id>, list, quit.")
		if names := catalogModules(engine); len(names) > 0 {
			printSystemMessage("Modules: %s", strings.Join(names, ", "))
		}
	}

	return host.New(engine.Binding, hostOpts...).Run(context.Background())
}

func catalogModules(engine *Engine) []string {
	catalog := engine.Registry.Catalog()
	if catalog == nil {
		return nil
	}
	names, err := catalog.List(context.Background())
	if err != nil {
		return nil
	}
	return names
}
