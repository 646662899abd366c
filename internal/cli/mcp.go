package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	mcpadapter "github.com/easelhq/easel/pkg/adapters/mcp"
)

// MCPOptions configures the mcp command.
type MCPOptions struct {
	Config    *Config
	Transport string
}

// RunMCP exposes the binding as an MCP server over stdio or SSE. Stdio runs
// until the peer closes the pipe; SSE runs until a signal arrives.
func RunMCP(opts MCPOptions) error {
	cfg := opts.Config
	logger := createLogger(cfg)

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	engine, err := createEngine(sigCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer engine.Close()

	srv := mcpadapter.NewServer(engine.Binding,
		mcpadapter.WithCatalog(engine.Registry.Catalog()),
		mcpadapter.WithInstance(engine.Instance),
	)

	switch opts.Transport {
	case "stdio":
		logger.Info("MCP server starting", "transport", "stdio")
		return srv.ServeStdio()

	case "sse":
		logger.Info("MCP server starting", "transport", "sse", "port", cfg.MCPPort)
		if err := srv.ServeSSE(sigCtx, cfg.MCPPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		logger.Info("MCP server stopped")
		return nil

	default:
		return fmt.Errorf("unknown transport %q (want stdio or sse)", opts.Transport)
	}
}
