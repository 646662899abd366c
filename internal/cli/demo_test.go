package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runDemoScript feeds a script to RunDemo and returns everything it wrote.
// A hung loop fails the test instead of wedging the run.
func runDemoScript(t *testing.T, opts DemoOptions, script string) string {
	t.Helper()

	var out bytes.Buffer
	opts.In = strings.NewReader(script)
	opts.Out = &out
	if opts.Config == nil {
		opts.Config = Default()
	}

	done := make(chan error, 1)
	go func() { done <- RunDemo(opts) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("demo loop did not finish")
	}
	return out.String()
}

func TestRunDemo_JSONScript(t *testing.T) {
	script := `{"op":"start","id":1,"module":"Main","props":{"text":"hi"}}
{"op":"set","id":1,"props":{"text":"updated"}}
{"op":"quit"}
`
	out := runDemoScript(t, DemoOptions{JSON: true}, script)

	assert.Contains(t, out, `"module":"Main"`)
	assert.Contains(t, out, `"generation":2`)
	assert.Contains(t, out, "surface 1 stopped")
	assert.Contains(t, out, "bye")
}

func TestRunDemo_JSONReportsViolations(t *testing.T) {
	script := `{"op":"stop","id":9}
{"op":"quit"}
`
	out := runDemoScript(t, DemoOptions{JSON: true}, script)

	assert.Contains(t, out, `"error"`)
	assert.Contains(t, out, "surface not found")
}

func TestRunDemo_TextLoop(t *testing.T) {
	script := "start 1 Main {\"text\":\"hi\"}\nlist\nquit\n"
	out := runDemoScript(t, DemoOptions{}, script)

	// The card renderer includes the module name; shutdown notices are plain.
	assert.Contains(t, out, "Main")
	assert.Contains(t, out, "surface 1 stopped")
	assert.Contains(t, out, "bye")
}

func TestRunDemo_ConfirmStops(t *testing.T) {
	script := "start 4 Main\nstop 4\ny\nquit\n"
	out := runDemoScript(t, DemoOptions{Confirm: true}, script)

	assert.Contains(t, out, "stop surface 4? (y/n)")
	assert.Contains(t, out, "surface 4 stopped")
}

func TestRunDemo_EOFEndsLoop(t *testing.T) {
	out := runDemoScript(t, DemoOptions{JSON: true}, "")
	// No commands, no output beyond an empty run.
	assert.NotContains(t, out, "error")
}
