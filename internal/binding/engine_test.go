package binding_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/easelhq/easel/internal/binding"
	"github.com/easelhq/easel/pkg/adapters/memory"
	"github.com/easelhq/easel/pkg/domain"
	"github.com/easelhq/easel/pkg/props"
	"github.com/easelhq/easel/pkg/vm"
)

func TestEngine_StartSetStopFlow(t *testing.T) {
	ctx := context.Background()
	rt := newRuntimeRecorder()
	engine := binding.NewEngine(rt, memory.NewStore())
	inst := vm.New()
	defer inst.Close()

	if err := engine.StartSurface(ctx, inst, 1, "Main", props.EmptyObject(), domain.DisplayModeVisible); err != nil {
		t.Fatalf("StartSurface failed: %v", err)
	}

	if err := engine.SetSurfaceProps(ctx, inst, 1, "Main", props.MustParse(`{"text": "hi"}`), domain.DisplayModeVisible); err != nil {
		t.Fatalf("SetSurfaceProps failed: %v", err)
	}

	surface, err := engine.Inspect(ctx, 1)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if surface.Generation != 2 {
		t.Errorf("expected generation 2 after one update, got %d", surface.Generation)
	}
	text, _ := surface.Props.Field("text")
	if !props.Equal(text, props.String("hi")) {
		t.Errorf("expected updated props, got %s", surface.Props)
	}

	if err := engine.StopSurface(ctx, inst, 1); err != nil {
		t.Fatalf("StopSurface failed: %v", err)
	}

	// A stopped surface leaves no trace behind.
	if _, err := engine.Inspect(ctx, 1); !errors.Is(err, domain.ErrSurfaceNotFound) {
		t.Errorf("expected ErrSurfaceNotFound after stop, got %v", err)
	}
	active, err := engine.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("expected no active surfaces, got %d", len(active))
	}

	ops := rt.all()
	wantOps := []string{domain.OpStart, domain.OpSetProps, domain.OpStop}
	if len(ops) != len(wantOps) {
		t.Fatalf("expected %d runtime calls, got %d", len(wantOps), len(ops))
	}
	for i, want := range wantOps {
		if ops[i].op != want {
			t.Errorf("call %d: expected %s, got %s", i, want, ops[i].op)
		}
	}
}

func TestEngine_DuplicateStartIsViolation(t *testing.T) {
	ctx := context.Background()
	rt := newRuntimeRecorder()
	engine := binding.NewEngine(rt, memory.NewStore())
	inst := vm.New()
	defer inst.Close()

	if err := engine.StartSurface(ctx, inst, 7, "Main", props.Null(), domain.DisplayModeVisible); err != nil {
		t.Fatalf("first start failed: %v", err)
	}

	err := engine.StartSurface(ctx, inst, 7, "Main", props.Null(), domain.DisplayModeVisible)
	if !errors.Is(err, domain.ErrSurfaceAlreadyStarted) {
		t.Fatalf("expected ErrSurfaceAlreadyStarted, got %v", err)
	}

	var ise *domain.InvalidStateError
	if !errors.As(err, &ise) {
		t.Fatalf("expected InvalidStateError, got %T", err)
	}
	if ise.Op != domain.OpStart || ise.ID != 7 {
		t.Errorf("unexpected violation detail: op=%s id=%s", ise.Op, ise.ID)
	}

	// The runtime must not observe the rejected start.
	if got := len(rt.forSurface(7)); got != 1 {
		t.Errorf("expected 1 runtime call, got %d", got)
	}
}

func TestEngine_OpsOnUnknownSurfaceAreViolations(t *testing.T) {
	ctx := context.Background()
	rt := newRuntimeRecorder()
	engine := binding.NewEngine(rt, memory.NewStore())
	inst := vm.New()
	defer inst.Close()

	err := engine.SetSurfaceProps(ctx, inst, 42, "Main", props.EmptyObject(), domain.DisplayModeVisible)
	if !errors.Is(err, domain.ErrSurfaceNotFound) {
		t.Errorf("set props: expected ErrSurfaceNotFound, got %v", err)
	}

	err = engine.StopSurface(ctx, inst, 42)
	if !errors.Is(err, domain.ErrSurfaceNotFound) {
		t.Errorf("stop: expected ErrSurfaceNotFound, got %v", err)
	}

	if got := len(rt.all()); got != 0 {
		t.Errorf("runtime observed %d calls for rejected operations", got)
	}
}

func TestEngine_SecondStopIsViolation(t *testing.T) {
	ctx := context.Background()
	rt := newRuntimeRecorder()
	engine := binding.NewEngine(rt, memory.NewStore())
	inst := vm.New()
	defer inst.Close()

	if err := engine.StartSurface(ctx, inst, 1, "Main", props.EmptyObject(), domain.DisplayModeVisible); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := engine.StopSurface(ctx, inst, 1); err != nil {
		t.Fatalf("first stop failed: %v", err)
	}

	err := engine.StopSurface(ctx, inst, 1)
	var ise *domain.InvalidStateError
	if !errors.As(err, &ise) {
		t.Fatalf("expected InvalidStateError on second stop, got %v", err)
	}
	if !errors.Is(err, domain.ErrSurfaceNotFound) {
		t.Errorf("expected wrapped ErrSurfaceNotFound, got %v", err)
	}

	// Exactly one stop reached the runtime.
	stops := 0
	for _, c := range rt.forSurface(1) {
		if c.op == domain.OpStop {
			stops++
		}
	}
	if stops != 1 {
		t.Errorf("expected 1 runtime stop, got %d", stops)
	}
}

func TestEngine_PropsReplacedWholesale(t *testing.T) {
	ctx := context.Background()
	rt := newRuntimeRecorder()
	engine := binding.NewEngine(rt, memory.NewStore())
	inst := vm.New()
	defer inst.Close()

	if err := engine.StartSurface(ctx, inst, 3, "card", props.MustParse(`{"a": 1, "b": 2}`), domain.DisplayModeVisible); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := engine.SetSurfaceProps(ctx, inst, 3, "card", props.MustParse(`{"b": 3}`), domain.DisplayModeVisible); err != nil {
		t.Fatalf("set props failed: %v", err)
	}

	last, ok := rt.last()
	if !ok {
		t.Fatal("runtime saw no calls")
	}
	if _, hasA := last.props.Field("a"); hasA {
		t.Error("old prop survived replacement; trees must be swapped, not merged")
	}
	b, _ := last.props.Field("b")
	if !props.Equal(b, props.Number(3)) {
		t.Errorf("expected b=3, got %s", last.props)
	}
}

func TestEngine_ClosedInstanceRejected(t *testing.T) {
	ctx := context.Background()
	rt := newRuntimeRecorder()
	engine := binding.NewEngine(rt, memory.NewStore())

	inst := vm.New()
	inst.Close()

	err := engine.StartSurface(ctx, inst, 1, "Main", props.Null(), domain.DisplayModeVisible)
	if !errors.Is(err, domain.ErrInstanceClosed) {
		t.Errorf("start: expected ErrInstanceClosed, got %v", err)
	}

	err = engine.StopSurface(ctx, nil, 1)
	if !errors.Is(err, domain.ErrInstanceClosed) {
		t.Errorf("nil instance: expected ErrInstanceClosed, got %v", err)
	}

	if got := len(rt.all()); got != 0 {
		t.Errorf("runtime observed %d calls from a dead instance", got)
	}
}

func TestEngine_RuntimeStartFailureKeepsNoRecord(t *testing.T) {
	ctx := context.Background()
	rt := newRuntimeRecorder()
	engine := binding.NewEngine(rt, memory.NewStore())
	inst := vm.New()
	defer inst.Close()

	rt.failOn(domain.OpStart, errors.New("renderer exploded"))

	err := engine.StartSurface(ctx, inst, 5, "Main", props.Null(), domain.DisplayModeVisible)
	if err == nil || !strings.Contains(err.Error(), "renderer exploded") {
		t.Fatalf("expected runtime error, got %v", err)
	}

	// The failed start left nothing active, so a retry is a fresh start,
	// not a duplicate.
	rt.recover(domain.OpStart)
	if err := engine.StartSurface(ctx, inst, 5, "Main", props.Null(), domain.DisplayModeVisible); err != nil {
		t.Fatalf("retry after runtime failure should succeed, got %v", err)
	}
}

func TestEngine_RuntimeUpdateFailureKeepsOldRecord(t *testing.T) {
	ctx := context.Background()
	rt := newRuntimeRecorder()
	engine := binding.NewEngine(rt, memory.NewStore())
	inst := vm.New()
	defer inst.Close()

	if err := engine.StartSurface(ctx, inst, 9, "card", props.MustParse(`{"v": 1}`), domain.DisplayModeVisible); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	rt.failOn(domain.OpSetProps, errors.New("render failed"))
	if err := engine.SetSurfaceProps(ctx, inst, 9, "card", props.MustParse(`{"v": 2}`), domain.DisplayModeVisible); err == nil {
		t.Fatal("expected update to fail")
	}

	surface, err := engine.Inspect(ctx, 9)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if surface.Generation != 1 {
		t.Errorf("record advanced despite runtime failure: generation %d", surface.Generation)
	}
	v, _ := surface.Props.Field("v")
	if !props.Equal(v, props.Number(1)) {
		t.Errorf("record took rejected props: %s", surface.Props)
	}
}

func TestEngine_ModuleMismatchOnSetProps(t *testing.T) {
	ctx := context.Background()
	rt := newRuntimeRecorder()
	engine := binding.NewEngine(rt, memory.NewStore())
	inst := vm.New()
	defer inst.Close()

	if err := engine.StartSurface(ctx, inst, 2, "profile", props.Null(), domain.DisplayModeVisible); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	err := engine.SetSurfaceProps(ctx, inst, 2, "banner", props.EmptyObject(), domain.DisplayModeVisible)
	if !errors.Is(err, domain.ErrModuleMismatch) {
		t.Fatalf("expected module mismatch error, got %v", err)
	}

	// Empty module name means "do not re-check".
	if err := engine.SetSurfaceProps(ctx, inst, 2, "", props.EmptyObject(), domain.DisplayModeVisible); err != nil {
		t.Errorf("empty module should skip the check, got %v", err)
	}
}

func TestEngine_DisplayModeForwarded(t *testing.T) {
	ctx := context.Background()
	rt := newRuntimeRecorder()
	engine := binding.NewEngine(rt, memory.NewStore())
	inst := vm.New()
	defer inst.Close()

	if err := engine.StartSurface(ctx, inst, 4, "Main", props.Null(), domain.DisplayModeSuspended); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := engine.SetSurfaceProps(ctx, inst, 4, "Main", props.Null(), domain.DisplayModeHidden); err != nil {
		t.Fatalf("set props failed: %v", err)
	}

	calls := rt.forSurface(4)
	if calls[0].mode != domain.DisplayModeSuspended {
		t.Errorf("start mode: expected suspended, got %s", calls[0].mode)
	}
	if calls[1].mode != domain.DisplayModeHidden {
		t.Errorf("update mode: expected hidden, got %s", calls[1].mode)
	}

	surface, err := engine.Inspect(ctx, 4)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if surface.Mode != domain.DisplayModeHidden {
		t.Errorf("record mode: expected hidden, got %s", surface.Mode)
	}
}
