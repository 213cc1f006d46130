package worker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/glacierworks/workerenv/internal/fileutil"
	"github.com/glacierworks/workerenv/internal/proc"
	"github.com/glacierworks/workerenv/internal/sentinel"
)

// readinessPollInterval is the interval between consecutive HTTP probes
// when waiting for the worker to become ready.
const readinessPollInterval = 50 * time.Millisecond

// readinessRequestTimeout is the per-attempt timeout for the readiness
// HTTP request. Early attempts fail immediately with connection refused
// while the worker is still booting; this bound only guards against a
// worker that accepts the connection but never answers.
const readinessRequestTimeout = 2 * time.Second

// streamDrainTimeout bounds how long Stop waits for the streaming goroutines
// after the worker has exited. The pipe write ends can be inherited by a
// grandchild that outlives the worker; past this bound Stop closes the read
// ends instead of waiting for that EOF.
const streamDrainTimeout = 5 * time.Second

// ErrAlreadyStarted is returned by Start when the worker is already running.
const ErrAlreadyStarted = sentinel.Error("worker already started")

// ErrNotStarted is returned by operations that require a running worker.
const ErrNotStarted = sentinel.Error("worker not started")

// Compile-time interface satisfaction check.
var _ proc.Stoppable = (*Process)(nil)

// Config holds the configuration for a worker process.
type Config struct {
	Binary     string // Path to the worker executable
	DataDir    string // Directory for the worker's outputs and state
	Port       int    // Localhost port the worker listens on
	Mode       string // Optional: value for the WORKERENV_MODE env override
	PipeStderr bool   // Keep stderr on its own pipe instead of merging into stdout
	ReadyPath  string // HTTP path polled for readiness (default "/health")

	// Logger (optional, defaults to slog.Default())
	Logger *slog.Logger
}

// validate checks that all required Config fields are set and returns an error
// describing the first missing or invalid field.
func (c Config) validate() error {
	if c.Binary == "" {
		return errors.New("binary path must not be empty")
	}
	if c.DataDir == "" {
		return errors.New("data dir must not be empty")
	}
	if c.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

// Process manages a worker process lifecycle.
type Process struct {
	config  Config
	log     *slog.Logger
	handle  *proc.Handle
	stopped bool
	streams sync.WaitGroup
}

// New creates a new worker Process with the given configuration.
// It returns an error if any required field is missing or invalid.
// New performs no I/O; directory creation and launch happen in Start.
func New(cfg Config) (*Process, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid worker config: %w", err)
	}
	if cfg.ReadyPath == "" {
		cfg.ReadyPath = "/health"
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Process{config: cfg, log: log}, nil
}

// Start launches the worker process and begins streaming its output into
// the log. The data directory is created if missing.
func (p *Process) Start(ctx context.Context) error {
	if p.handle != nil {
		return ErrAlreadyStarted
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}

	if err := fileutil.EnsureDir(p.config.DataDir); err != nil {
		return fmt.Errorf("prepare worker data dir: %w", err)
	}

	args := []string{
		"--listen", "127.0.0.1",
		"--port", strconv.Itoa(p.config.Port),
		"--data-dir", p.config.DataDir,
	}

	var env map[string]string
	if p.config.Mode != "" {
		env = map[string]string{"WORKERENV_MODE": p.config.Mode}
	}

	handle, err := proc.Launch(proc.Request{
		Program:    p.config.Binary,
		Args:       args,
		Dir:        p.config.DataDir,
		Env:        env,
		PipeStderr: p.config.PipeStderr,
		Name:       "worker",
		Logger:     p.log,
	})
	if err != nil {
		return fmt.Errorf("launch worker: %w", err)
	}
	p.handle = handle

	p.streams.Add(1)
	go func() {
		defer p.streams.Done()
		p.streamLines(handle.Stdout(), slog.LevelInfo)
	}()
	if stderr := handle.Stderr(); stderr != nil {
		p.streams.Add(1)
		go func() {
			defer p.streams.Done()
			p.streamLines(stderr, slog.LevelWarn)
		}()
	}

	p.log.Info("worker started", "pid", handle.PID(), "port", p.config.Port, "data_dir", p.config.DataDir)
	return nil
}

// streamLines copies lines from r into the log at the given level until the
// stream hits EOF (worker exit) or the pipe is closed by Close.
func (p *Process) streamLines(r io.Reader, level slog.Level) {
	scanner := bufio.NewScanner(r)
	// Worker log lines can be long (tracebacks, progress bars); 1MB covers
	// anything reasonable without unbounded growth.
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		p.log.Log(context.Background(), level, scanner.Text(), "process", "worker")
	}
	if err := scanner.Err(); err != nil {
		p.log.Debug("worker output stream closed", "error", err)
	}
}

// PID returns the worker's process ID. It returns 0 when the worker has
// not been started.
func (p *Process) PID() int {
	if p.handle == nil {
		return 0
	}
	return p.handle.PID()
}

// Exited returns a channel closed when the worker process exits, or nil
// when the worker has not been started.
func (p *Process) Exited() <-chan struct{} {
	if p.handle == nil {
		return nil
	}
	return p.handle.Exited()
}

// URL returns the worker's base URL.
func (p *Process) URL() string {
	return fmt.Sprintf("http://127.0.0.1:%d", p.config.Port)
}

// WaitReady polls the worker's readiness endpoint until it answers 200,
// aborting early if the process exits first.
func (p *Process) WaitReady(ctx context.Context, timeout time.Duration) error {
	if p.handle == nil {
		return ErrNotStarted
	}

	readyURL := p.URL() + p.config.ReadyPath
	client := &http.Client{Timeout: readinessRequestTimeout}

	if err := proc.WaitReady(ctx, proc.WaitReadyConfig{
		Interval:      readinessPollInterval,
		Timeout:       timeout,
		Name:          "worker",
		Port:          p.config.Port,
		Logger:        p.log,
		ProcessExited: p.handle.Exited(),
	}, func(checkCtx context.Context, attempt int) (bool, error) {
		req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, readyURL, nil)
		if err != nil {
			return false, err // malformed URL is fatal, not retryable
		}
		resp, err := client.Do(req)
		if err != nil {
			p.log.Debug("worker readiness attempt", "url", readyURL, "attempt", attempt, "error", err)
			return false, nil // not listening yet
		}
		_ = resp.Body.Close() // best-effort close of readiness check response
		return resp.StatusCode == http.StatusOK, nil
	}); err != nil {
		return fmt.Errorf("worker not ready: %w", err)
	}
	return nil
}

// Stop terminates the worker with the given timeout and waits for the
// output streams to drain. Safe to call when the worker was never started;
// calling it a second time is a no-op because the wait result has already
// been collected.
func (p *Process) Stop(timeout time.Duration) error {
	if p.handle == nil || p.stopped {
		return nil
	}
	p.stopped = true
	err := p.handle.Stop(timeout)

	// The worker's own pipe ends are gone after exit, so the streaming
	// goroutines normally see EOF and finish on their own. A surviving
	// grandchild can keep the write ends open; after the drain bound the
	// read ends are closed to unblock the scanners.
	drained := make(chan struct{})
	go func() {
		p.streams.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(streamDrainTimeout):
		p.log.Warn("worker output streams held open past exit; closing pipes", "pid", p.handle.PID())
		p.handle.Close()
		<-drained
	}
	return err
}

// Close releases the pipe handles held by the process.
func (p *Process) Close() {
	if p.handle != nil {
		p.handle.Close()
	}
}
