package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/easelhq/easel/internal/validator"
	loamAdapter "github.com/easelhq/easel/pkg/adapters/loam"
)

// WatchOptions configures the watch command.
type WatchOptions struct {
	Config *Config
}

// RunWatch validates the module catalog and revalidates on every manifest
// change, reopening the catalog each round so edits are read fresh. It
// returns when a signal arrives.
func RunWatch(opts WatchOptions) error {
	cfg := opts.Config
	logger := createLogger(cfg)

	dir := cfg.ModulesDir
	if dir == "" {
		dir = "."
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	printSystemMessage("Watching '%s' for manifest changes.", dir)

	for {
		if !runWatchIteration(sigCtx, dir, logger) {
			break
		}
		logger.Debug("Watcher restarting")
	}
	return nil
}

func runWatchIteration(parentCtx *SignalContext, dir string, logger *slog.Logger) bool {
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	catalog, err := loamAdapter.Open(dir)
	if err != nil {
		logger.Error("Catalog open failed", "err", err)
		printSystemMessage("Catalog open failed: %v", err)
		select {
		case <-parentCtx.Done():
			return false
		case <-time.After(2 * time.Second):
			return true
		}
	}

	if count, err := validator.ValidateCatalog(ctx, catalog); err != nil {
		printSystemMessage("Validation failed: %v", err)
	} else {
		printSystemMessage("%d modules valid.", count)
	}

	watchCh, err := catalog.Watch(ctx)
	if err != nil {
		logger.Error("Watch setup failed", "err", err)
		return false
	}

	select {
	case <-parentCtx.Done():
		logger.Info("Stopping watcher", "signal", parentCtx.Signal())
		return false
	case event, ok := <-watchCh:
		if !ok {
			return true
		}
		logger.Info("Change detected", "event", event)
		printSystemMessage("Change detected in '%s'.", event)
		// Let the file system settle before rereading.
		time.Sleep(100 * time.Millisecond)
		return true
	}
}
