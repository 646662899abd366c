package proc_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/easelhq/easel/pkg/adapters/proc"
	"github.com/easelhq/easel/pkg/domain"
	"github.com/easelhq/easel/pkg/props"
	"github.com/easelhq/easel/pkg/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildRenderHost compiles the render-host fixture into a temp binary.
func buildRenderHost(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)

	root := wd
	for {
		if _, err := os.Stat(filepath.Join(root, "go.mod")); err == nil {
			break
		}
		parent := filepath.Dir(root)
		if parent == root {
			t.Fatal("could not find project root (go.mod)")
		}
		root = parent
	}

	exeName := "renderhost"
	if runtime.GOOS == "windows" {
		exeName += ".exe"
	}
	destPath := filepath.Join(t.TempDir(), exeName)

	cmd := exec.Command("go", "build", "-o", destPath, filepath.Join(root, "tests", "fixtures", "renderhost"))
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build render host fixture: %s", string(out))

	return destPath
}

func TestRuntime_StartMissingBinary(t *testing.T) {
	rt := proc.NewRuntime(filepath.Join(t.TempDir(), "no-such-host"))

	err := rt.Start(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to start render host")
}

func TestRuntime_OpsBeforeStart(t *testing.T) {
	rt := proc.NewRuntime("irrelevant")

	err := rt.StopSurface(context.Background(), vm.New(), 1)
	assert.ErrorIs(t, err, proc.ErrHostDown)
}

func TestRuntime_DrivesChildProcess(t *testing.T) {
	exe := buildRenderHost(t)

	rt := proc.NewRuntime(exe)
	ctx := context.Background()
	require.NoError(t, rt.Start(ctx))

	inst := vm.New()
	require.NoError(t, rt.StartSurface(ctx, inst, &domain.Surface{
		ID:     1,
		Module: "Main",
		Props:  props.MustParse(`{"text": "hi"}`),
		Mode:   domain.DisplayModeVisible,
	}))
	require.NoError(t, rt.SetSurfaceProps(ctx, inst, &domain.Surface{
		ID:         1,
		Module:     "Main",
		Props:      props.MustParse(`{"text": "bye"}`),
		Mode:       domain.DisplayModeVisible,
		Generation: 2,
	}))
	require.NoError(t, rt.StopSurface(ctx, inst, 1))

	// The child rejects operations on surfaces it no longer knows.
	err := rt.StopSurface(ctx, inst, 1)
	require.Error(t, err)
	assert.ErrorContains(t, err, "host rejected stop")

	require.NoError(t, rt.Close())
}

func TestRuntime_CloseWithoutStart(t *testing.T) {
	assert.NoError(t, proc.NewRuntime("irrelevant").Close())
}
