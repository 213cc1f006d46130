//go:build !windows

package proc

import (
	"bufio"
	"io"
	"strings"
	"testing"
	"time"
)

// launchShell launches "sh -c script" and registers cleanup that kills the
// process if the test did not stop it.
func launchShell(t *testing.T, script string, req Request) *Handle {
	t.Helper()

	req.Program = "/bin/sh"
	req.Args = []string{"-c", script}
	if req.Name == "" {
		req.Name = "test-proc"
	}

	h, err := Launch(req)
	if err != nil {
		t.Fatalf("launch %q: %v", script, err)
	}
	t.Cleanup(func() {
		select {
		case <-h.Exited():
		default:
			_ = h.Kill()
		}
		h.Close()
	})
	return h
}

func waitExit(t *testing.T, h *Handle) {
	t.Helper()
	select {
	case <-h.Exited():
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for process exit")
	}
}

func TestLaunch_CapturesStdout(t *testing.T) {
	t.Parallel()

	h := launchShell(t, "echo hello-stdout", Request{})

	out, err := io.ReadAll(h.Stdout())
	if err != nil {
		t.Fatalf("read stdout: %v", err)
	}
	if got := strings.TrimSpace(string(out)); got != "hello-stdout" {
		t.Errorf("stdout = %q, want %q", got, "hello-stdout")
	}
	waitExit(t, h)
}

func TestLaunch_MergedStderr(t *testing.T) {
	t.Parallel()

	h := launchShell(t, "echo to-stdout; echo to-stderr 1>&2", Request{PipeStderr: false})

	if h.Stderr() != nil {
		t.Error("Stderr() should be nil in merged mode")
	}

	out, err := io.ReadAll(h.Stdout())
	if err != nil {
		t.Fatalf("read merged output: %v", err)
	}
	merged := string(out)
	if !strings.Contains(merged, "to-stdout") {
		t.Errorf("merged output missing stdout line: %q", merged)
	}
	if !strings.Contains(merged, "to-stderr") {
		t.Errorf("merged output missing stderr line: %q", merged)
	}
	waitExit(t, h)
}

func TestLaunch_PipedStderr(t *testing.T) {
	t.Parallel()

	h := launchShell(t, "echo out-line; echo err-line 1>&2", Request{PipeStderr: true})

	stderr := h.Stderr()
	if stderr == nil {
		t.Fatal("Stderr() should be non-nil when PipeStderr is set")
	}

	errOut, err := io.ReadAll(stderr)
	if err != nil {
		t.Fatalf("read stderr: %v", err)
	}
	if got := strings.TrimSpace(string(errOut)); got != "err-line" {
		t.Errorf("stderr = %q, want %q", got, "err-line")
	}

	out, err := io.ReadAll(h.Stdout())
	if err != nil {
		t.Fatalf("read stdout: %v", err)
	}
	if got := strings.TrimSpace(string(out)); got != "out-line" {
		t.Errorf("stdout = %q, want %q", got, "out-line")
	}
	waitExit(t, h)
}

func TestLaunch_StripsPythonPath(t *testing.T) {
	// t.Setenv forbids t.Parallel.
	t.Setenv("PYTHONPATH", "/host/interpreter/lib")

	h := launchShell(t, `printf '[%s]' "$PYTHONPATH"`, Request{})

	out, err := io.ReadAll(h.Stdout())
	if err != nil {
		t.Fatalf("read stdout: %v", err)
	}
	if got := string(out); got != "[]" {
		t.Errorf("PYTHONPATH leaked into child: %q", got)
	}
	waitExit(t, h)
}

func TestLaunch_EnvOverrideWins(t *testing.T) {
	t.Setenv("WORKER_MODE", "debug")

	h := launchShell(t, `printf '%s' "$WORKER_MODE"`, Request{
		Env: map[string]string{"WORKER_MODE": "prod"},
	})

	out, err := io.ReadAll(h.Stdout())
	if err != nil {
		t.Fatalf("read stdout: %v", err)
	}
	if got := string(out); got != "prod" {
		t.Errorf("WORKER_MODE = %q, want %q", got, "prod")
	}
	waitExit(t, h)
}

func TestLaunch_NoStdin(t *testing.T) {
	t.Parallel()

	// cat with no stdin connected reads EOF immediately instead of blocking.
	h := launchShell(t, "cat", Request{})

	select {
	case <-h.Exited():
	case <-time.After(5 * time.Second):
		t.Fatal("process with unconnected stdin should exit immediately")
	}
}

func TestHandle_StopRunningProcess(t *testing.T) {
	t.Parallel()

	h := launchShell(t, "sleep 60", Request{})

	start := time.Now()
	if err := h.Stop(10 * time.Second); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("stop took %v; expected prompt SIGTERM exit", elapsed)
	}
	waitExit(t, h)
}

func TestHandle_StopAfterExit(t *testing.T) {
	t.Parallel()

	h := launchShell(t, "exit 0", Request{})
	waitExit(t, h)

	if err := h.Stop(time.Second); err != nil {
		t.Fatalf("stop after exit: %v", err)
	}
}

func TestHandle_KillRunningProcess(t *testing.T) {
	t.Parallel()

	h := launchShell(t, "sleep 60", Request{})

	if err := h.Kill(); err != nil {
		t.Fatalf("kill: %v", err)
	}
	waitExit(t, h)
}

func TestHandle_StreamsLines(t *testing.T) {
	t.Parallel()

	h := launchShell(t, "echo one; echo two; echo three", Request{})

	var lines []string
	scanner := bufio.NewScanner(h.Stdout())
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	want := []string{"one", "two", "three"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines %v, want %v", len(lines), lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
	waitExit(t, h)
}
