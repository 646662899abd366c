package host

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/easelhq/easel"
	"github.com/easelhq/easel/pkg/adapters/inproc"
	"github.com/easelhq/easel/pkg/domain"
	"github.com/easelhq/easel/pkg/guard"
	"github.com/easelhq/easel/pkg/ports"
)

type nopComponent struct{}

func (nopComponent) Mount(context.Context, *domain.Surface) error  { return nil }
func (nopComponent) Render(context.Context, *domain.Surface) error { return nil }
func (nopComponent) Unmount(context.Context) error                 { return nil }

func newTestBinding(t *testing.T) ports.Binding {
	t.Helper()
	rt := inproc.New()
	rt.Register("Main", func() inproc.Component { return nopComponent{} })
	reg, err := easel.New(rt)
	if err != nil {
		t.Fatalf("failed to build registry: %v", err)
	}
	return guard.New(reg)
}

// runHost drives one scripted session and returns the output.
func runHost(t *testing.T, h *Host, out *bytes.Buffer) string {
	t.Helper()

	done := make(chan error)
	go func() {
		done <- h.Run(context.Background())
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("host failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("host timed out")
	}
	return out.String()
}

func TestHost_Run_BasicFlow(t *testing.T) {
	inBuf := bytes.NewBufferString(
		"start 1 Main {\"title\":\"hello\"}\n" +
			"set 1 {\"title\":\"bye\"}\n" +
			"inspect 1\n" +
			"quit\n")
	outBuf := &bytes.Buffer{}

	h := New(newTestBinding(t), WithHandler(NewTextHandler(inBuf, outBuf)))
	out := runHost(t, h, outBuf)

	if !strings.Contains(out, "module=Main") {
		t.Errorf("expected record line in output, got: %s", out)
	}
	if !strings.Contains(out, "generation=2") {
		t.Errorf("expected second render in output, got: %s", out)
	}
	if !strings.Contains(out, "surface 1 stopped") {
		t.Error("quit should stop active surfaces")
	}
	if !strings.Contains(out, "bye") {
		t.Error("expected farewell message")
	}
}

func TestHost_Run_InvalidOperationsKeepLooping(t *testing.T) {
	inBuf := bytes.NewBufferString(
		"start 1 Main\n" +
			"stop 1\n" +
			"stop 1\n" +
			"set 9 {}\n" +
			"quit\n")
	outBuf := &bytes.Buffer{}

	h := New(newTestBinding(t), WithHandler(NewTextHandler(inBuf, outBuf)))
	out := runHost(t, h, outBuf)

	if !strings.Contains(out, "surface not found") {
		t.Errorf("expected rejected operations to be reported, got: %s", out)
	}
	if !strings.Contains(out, "bye") {
		t.Error("rejected operations must not end the loop")
	}
}

func TestHost_Run_UnknownCommandRetries(t *testing.T) {
	inBuf := bytes.NewBufferString("frobnicate 1\nlist\nquit\n")
	outBuf := &bytes.Buffer{}

	h := New(newTestBinding(t), WithHandler(NewTextHandler(inBuf, outBuf)))
	out := runHost(t, h, outBuf)

	if !strings.Contains(out, `unknown command "frobnicate"`) {
		t.Errorf("expected parse feedback, got: %s", out)
	}
	if !strings.Contains(out, "no active surfaces") {
		t.Errorf("expected empty list message, got: %s", out)
	}
}

func TestHost_Run_JSONHeadless(t *testing.T) {
	inBuf := bytes.NewBufferString(
		`{"op":"start","id":1,"module":"Main","props":{"n":1}}` + "\n" +
			`{"op":"set","id":1,"props":{"n":2}}` + "\n" +
			`{"op":"quit"}` + "\n")
	outBuf := &bytes.Buffer{}

	h := New(newTestBinding(t), WithHandler(NewJSONHandler(inBuf, outBuf)))
	out := runHost(t, h, outBuf)

	if !strings.Contains(out, `"module":"Main"`) {
		t.Errorf("expected surface envelope in JSON output, got: %s", out)
	}
	if !strings.Contains(out, `"generation":2`) {
		t.Errorf("expected second render in JSON output, got: %s", out)
	}
	if !strings.Contains(out, `"message"`) {
		t.Errorf("expected system envelopes in JSON output, got: %s", out)
	}
}

func TestHost_Run_EOFEndsLoop(t *testing.T) {
	inBuf := bytes.NewBufferString("start 1 Main\n")
	outBuf := &bytes.Buffer{}

	h := New(newTestBinding(t), WithHandler(NewTextHandler(inBuf, outBuf)))
	out := runHost(t, h, outBuf)

	if !strings.Contains(out, "module=Main") {
		t.Errorf("expected the start to apply before EOF, got: %s", out)
	}
}

func TestHost_Run_InterceptorBlocks(t *testing.T) {
	inBuf := bytes.NewBufferString("start 1 Main\nstop 1\nquit\n")
	outBuf := &bytes.Buffer{}

	denyStops := func(ctx context.Context, cmd Command) (bool, error) {
		return cmd.Op != CmdStop, nil
	}

	h := New(newTestBinding(t),
		WithHandler(NewTextHandler(inBuf, outBuf)),
		WithInterceptor(denyStops),
	)
	out := runHost(t, h, outBuf)

	if !strings.Contains(out, "stop denied by policy") {
		t.Errorf("expected denial message, got: %s", out)
	}
	// The surface survives the denied stop and goes down with quit.
	if !strings.Contains(out, "surface 1 stopped") {
		t.Errorf("expected shutdown to stop the surface, got: %s", out)
	}
}
