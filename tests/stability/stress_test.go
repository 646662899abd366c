package stability

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// buildEasel compiles the easel binary so the stress tests exercise the real
// CLI behavior.
func buildEasel(t *testing.T) string {
	t.Helper()

	binPath := filepath.Join(t.TempDir(), "easel")
	if runtime.GOOS == "windows" {
		binPath += ".exe"
	}

	// Tests run in the package directory, so the command lives two levels up.
	cmd := exec.Command("go", "build", "-o", binPath, "../../cmd/easel")
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to compile easel: %v\nOutput: %s", err, string(out))
	}
	return binPath
}

// TestSessionStress drives an interactive demo session with rapid valid
// commands, garbage lines and lifecycle violations. The loop must survive all
// of it and still exit cleanly on quit.
func TestSessionStress(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping stress test in short mode")
	}

	binPath := buildEasel(t)

	cmd := exec.Command(binPath, "demo")
	cmd.Dir = t.TempDir() // no config file, defaults only

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	stdin, err := cmd.StdinPipe()
	if err != nil {
		t.Fatalf("Failed to create stdin pipe: %v", err)
	}

	if err := cmd.Start(); err != nil {
		t.Fatalf("Failed to start easel demo: %v", err)
	}

	iterations := 25
	t.Logf("Starting stress loop (%d iterations)...", iterations)

	var script strings.Builder
	for i := 0; i < iterations; i++ {
		id := i + 1
		fmt.Fprintf(&script, "start %d Card {\"seq\":0}\n", id)
		fmt.Fprintf(&script, "set %d {\"seq\":1}\n", id)

		// Chaos: garbage lines and violations must be reported, never fatal
		script.WriteString("definitely not a command\n")
		fmt.Fprintf(&script, "start %d Card\n", id) // duplicate ID
		script.WriteString("stop 9999\n")           // never started
		script.WriteString("set abc {}\n")          // bad surface id

		fmt.Fprintf(&script, "inspect %d\n", id)
		fmt.Fprintf(&script, "stop %d\n", id)
	}
	script.WriteString("list\nquit\n")

	if _, err := io.WriteString(stdin, script.String()); err != nil {
		t.Fatalf("Failed to feed commands: %v", err)
	}
	_ = stdin.Close()

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Process exited with %v\nOutput:\n%s", err, output.String())
		}
	case <-time.After(30 * time.Second):
		_ = cmd.Process.Kill()
		t.Fatalf("Process did not exit after quit\nOutput:\n%s", output.String())
	}

	out := output.String()
	if !strings.Contains(out, "bye") {
		t.Errorf("Expected a clean goodbye, output:\n%s", out)
	}
	if !strings.Contains(out, "Error:") {
		t.Errorf("Expected chaos commands to be reported, output:\n%s", out)
	}
	if strings.Contains(out, "panic") {
		t.Errorf("Process panicked:\n%s", out)
	}
	t.Log("Session stress finished cleanly.")
}

// TestWatchStress runs easel in watch mode against a manifest directory,
// performing rapid valid and invalid updates. The watcher must log failures
// without crashing and shut down cleanly on interrupt.
func TestWatchStress(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping stress test in short mode")
	}

	binPath := buildEasel(t)

	tempRepoDir := t.TempDir()
	cardFile := filepath.Join(tempRepoDir, "card.md")
	writeContent := func(content string) {
		if err := os.WriteFile(cardFile, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write manifest: %v", err)
		}
	}

	writeContent(`---
name: card
props:
  title: string
default_props:
  title: v1
---
Initial card.
`)

	cmd := exec.Command(binPath, "watch", tempRepoDir)
	cmd.Dir = t.TempDir()

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Start(); err != nil {
		t.Fatalf("Failed to start easel watch: %v", err)
	}

	// Give it a moment to open the catalog and register the watcher
	time.Sleep(2 * time.Second)

	iterations := 10
	t.Logf("Starting stress loop (%d iterations)...", iterations)

	for i := 0; i < iterations; i++ {
		writeContent(fmt.Sprintf(`---
name: card
props:
  title: string
default_props:
  title: v%d
---
Updated card.
`, i+2))
		time.Sleep(200 * time.Millisecond)

		// The watcher should report the broken manifest but NOT crash
		writeContent(`---
name: card
broken_yaml: [ unclosed list
---
`)
		time.Sleep(200 * time.Millisecond)

		writeContent(fmt.Sprintf(`---
name: card
props:
  title: string
default_props:
  title: v%d-recovered
---
Recovered card.
`, i+2))
		time.Sleep(300 * time.Millisecond)
	}

	t.Log("Stress loop finished. Stopping watcher...")

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	if runtime.GOOS == "windows" {
		// No interrupt delivery on Windows, fall back to a hard kill.
		_ = cmd.Process.Kill()
		<-done
		return
	}

	if err := cmd.Process.Signal(os.Interrupt); err != nil {
		t.Fatalf("Failed to interrupt watcher: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Watcher exited with %v\nOutput:\n%s", err, output.String())
		}
	case <-time.After(10 * time.Second):
		_ = cmd.Process.Kill()
		t.Fatalf("Watcher ignored the interrupt\nOutput:\n%s", output.String())
	}

	if !strings.Contains(output.String(), "modules valid.") {
		t.Errorf("Expected at least one successful validation, output:\n%s", output.String())
	}
	t.Log("Watcher exited cleanly.")
}
