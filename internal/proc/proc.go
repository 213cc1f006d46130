package proc

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/glacierworks/workerenv/internal/procenv"
	"github.com/glacierworks/workerenv/internal/sentinel"
)

// ErrSpawn is returned by Launch when the operating system fails to start the
// process (missing binary, permission denied, exec format error). The wrapped
// chain carries the OS error text.
const ErrSpawn = sentinel.Error("failed to spawn process")

// ErrEmptyProgram is returned by Launch when the request has no program path.
const ErrEmptyProgram = sentinel.Error("program path must not be empty")

// Request describes a process to launch. It is consumed by value and never
// retained, so callers may reuse or modify it after Launch returns.
type Request struct {
	// Program is the path to the executable. Required.
	Program string
	// Args are the command-line arguments, not including the program itself.
	Args []string
	// Dir is the working directory. Empty means inherit the host's.
	Dir string
	// Env holds environment overrides applied on top of the host snapshot.
	// The merged environment is sanitized; see procenv.Sanitize.
	Env map[string]string
	// PipeStderr controls stderr handling. When true, stderr gets its own
	// pipe readable via Handle.Stderr. When false, stderr is merged into
	// the stdout pipe and Handle.Stderr returns nil.
	PipeStderr bool
	// Name identifies the process in log entries (e.g., "worker"). Required.
	Name string
	// Logger is used for operational messages. Nil uses slog.Default().
	Logger *slog.Logger
}

// validate checks that all required Request fields are set and returns an
// error describing the first missing field.
func (r Request) validate() error {
	if r.Program == "" {
		return ErrEmptyProgram
	}
	if r.Name == "" {
		return fmt.Errorf("process name must not be empty")
	}
	return nil
}

// Handle represents a launched process. It owns the read ends of the
// stdout/stderr pipes and the single goroutine calling cmd.Wait.
//
// Handle is not safe for concurrent use. Callers must serialize access to
// Stop, Kill, and Close; Stdout, Stderr, PID, and Exited may be read from
// other goroutines once Launch has returned.
type Handle struct {
	cmd      *exec.Cmd
	waitDone <-chan error    // receives cmd.Wait result; started once in Launch
	exited   <-chan struct{} // closed when process exits; readable by multiple goroutines
	stdout   *os.File
	stderr   *os.File // nil when stderr is merged into stdout
	name     string
	log      *slog.Logger
}

// Launch starts the requested process. Stdin is not connected. Stdout is
// always captured on a pipe; stderr is captured on its own pipe when
// req.PipeStderr is set and merged into the stdout pipe otherwise. The child
// environment is the sanitized merge of the host snapshot and req.Env, and
// the platform spawn policy (hidden console on Windows, parent-death signal
// on Linux) is applied before the process starts.
//
// On Windows the new process is additionally assigned to the process-wide
// kill-on-close job object. Assignment failures are logged and swallowed:
// the process is already running and remains usable without job supervision.
//
// A start failure returns an error matching ErrSpawn via errors.Is and no
// Handle. There is no retry.
func Launch(req Request) (*Handle, error) {
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("invalid launch request: %w", err)
	}

	log := req.Logger
	if log == nil {
		log = slog.Default()
	}

	cmd := exec.Command(req.Program, req.Args...)
	cmd.Dir = req.Dir
	cmd.Env = procenv.Sanitize(os.Environ(), req.Env)
	applySpawnPolicy(cmd)

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("create stdout pipe: %w", err)
	}
	cmd.Stdout = stdoutW

	var stderrR, stderrW *os.File
	if req.PipeStderr {
		stderrR, stderrW, err = os.Pipe()
		if err != nil {
			_ = stdoutR.Close()
			_ = stdoutW.Close()
			return nil, fmt.Errorf("create stderr pipe: %w", err)
		}
		cmd.Stderr = stderrW
	} else {
		// Merged mode: the child writes both streams to the same pipe, so
		// interleaving happens at the kernel level exactly as it would on a
		// shared console.
		cmd.Stderr = stdoutW
	}

	if err := cmd.Start(); err != nil {
		_ = stdoutR.Close()
		_ = stdoutW.Close()
		if stderrW != nil {
			_ = stderrR.Close()
			_ = stderrW.Close()
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrSpawn, req.Program, err)
	}

	// The child holds its own descriptors for the write ends; the parent's
	// copies must be closed so the read ends see EOF when the child exits.
	_ = stdoutW.Close()
	if stderrW != nil {
		_ = stderrW.Close()
	}

	// Supervision attachment happens after the spawn so a failure here can
	// never prevent the launch. On Windows this assigns the child to the
	// kill-on-close job object; elsewhere it is a no-op (the parent-death
	// signal was already configured pre-exec by applySpawnPolicy).
	attachToJob(cmd.Process.Pid, log)

	// Start the single cmd.Wait goroutine. cmd.Wait must be called exactly
	// once per started process; calling it a second time is undefined
	// behavior and may block indefinitely. Starting the goroutine here
	// guarantees the invariant and provides a done channel for Stop.
	//
	// Two channels are created:
	//   - done (buffered 1): receives the Wait error, consumed once by Stop.
	//   - exited (unbuffered, closed): broadcast signal readable by any number
	//     of goroutines (e.g., WaitReady polling loops) to detect early exit.
	done := make(chan error, 1)
	exited := make(chan struct{})
	go func() {
		done <- cmd.Wait()
		close(exited)
	}()

	log.Debug("process launched", "process", req.Name, "pid", cmd.Process.Pid, "program", req.Program)

	return &Handle{
		cmd:      cmd,
		waitDone: done,
		exited:   exited,
		stdout:   stdoutR,
		stderr:   stderrR,
		name:     req.Name,
		log:      log,
	}, nil
}

// PID returns the operating system process ID.
func (h *Handle) PID() int {
	return h.cmd.Process.Pid
}

// Stdout returns the read end of the stdout pipe. In merged mode it carries
// both streams.
func (h *Handle) Stdout() io.Reader {
	return h.stdout
}

// Stderr returns the read end of the stderr pipe, or nil when stderr was
// merged into stdout at launch.
func (h *Handle) Stderr() io.Reader {
	if h.stderr == nil {
		return nil
	}
	return h.stderr
}

// Exited returns a channel that is closed when the process exits. It is safe
// to select on from any number of goroutines.
func (h *Handle) Exited() <-chan struct{} {
	return h.exited
}

// Stop terminates the process gracefully: SIGTERM, a grace period, then
// SIGKILL, bounded by timeout. Exits caused by the termination signals are
// treated as success. Safe to call after the process has already exited.
func (h *Handle) Stop(timeout time.Duration) error {
	err := stopWithDone(h.cmd, h.waitDone, timeout, h.name)
	if err != nil {
		h.log.Warn("process stop failed; process may be orphaned",
			"process", h.name, "pid", h.cmd.Process.Pid, "error", err)
	}
	return err
}

// Kill terminates the process immediately without a grace period and drains
// the wait goroutine.
func (h *Handle) Kill() error {
	if err := h.cmd.Process.Kill(); err != nil {
		// Already exited. Drain below still collects the Wait result.
		h.log.Debug("kill after exit", "process", h.name, "error", err)
	}
	ok, waitErr := drainDone(h.waitDone, killDrainTimeout)
	if !ok {
		return fmt.Errorf("%s: timed out waiting for process to exit after kill", h.name)
	}
	return expectSignalExit(waitErr, h.name)
}

// Close releases the pipe read ends. Callers streaming from Stdout/Stderr
// should stop reading first; Close makes any blocked read return an error.
func (h *Handle) Close() {
	if h.stdout != nil {
		_ = h.stdout.Close()
		h.stdout = nil
	}
	if h.stderr != nil {
		_ = h.stderr.Close()
		h.stderr = nil
	}
}
