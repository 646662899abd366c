package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	httpadapter "github.com/easelhq/easel/pkg/adapters/http"
)

// ServeOptions configures the serve command.
type ServeOptions struct {
	Config *Config
}

// RunServe starts the HTTP control plane: the surface API with its event
// streams at the root, Prometheus metrics at /metrics. It blocks until a
// signal arrives, then drains in-flight requests before returning.
func RunServe(opts ServeOptions) error {
	cfg := opts.Config
	logger := createLogger(cfg)

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	engine, err := createEngine(sigCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer engine.Close()

	handler := httpadapter.NewHandler(engine.Binding,
		httpadapter.WithCatalog(engine.Registry.Catalog()),
		httpadapter.WithStreams(engine.Streams),
		httpadapter.WithInstance(engine.Instance),
		httpadapter.WithLogger(logger),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", engine.Metrics.Handler())
	mux.Handle("/", engine.Metrics.Middleware(handler))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "addr", srv.Addr, "modules_dir", cfg.ModulesDir)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case <-sigCtx.Done():
		logger.Info("Shutting down", "signal", sigCtx.Signal())

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Graceful shutdown did not complete", "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("failed to stop server: %w", err)
			}
		}
		logger.Info("Server stopped")
	}
	return nil
}
