package workerenv

import (
	"fmt"
	"time"
)

// requirePositive panics if v <= 0 with a descriptive message.
func requirePositive[T int | time.Duration](name string, v T) {
	if v <= 0 {
		panic(fmt.Sprintf("workerenv: %s must be greater than 0, got %v", name, v))
	}
}

// requireNonEmpty panics if s is empty with a descriptive message.
func requireNonEmpty(name, s string) {
	if s == "" {
		panic(fmt.Sprintf("workerenv: %s must not be empty", name))
	}
}

// SupervisorOption configures a Supervisor during construction via
// NewSupervisor. Each With* function returns a SupervisorOption that sets
// a specific field.
//
// Several With* functions panic on invalid input (empty paths,
// non-positive durations). These panics are intentional: option values are
// typically compile-time constants or package-level variables, so an
// invalid value indicates a programmer error rather than a runtime
// condition. The pattern mirrors [regexp.MustCompile]: fail fast during
// initialization instead of returning errors that would be universally
// fatal anyway.
type SupervisorOption func(*supervisorConfig)

// WithWorkerBinary sets the path to the worker executable.
// Panics if binPath is empty.
func WithWorkerBinary(binPath string) SupervisorOption {
	requireNonEmpty("worker binary path", binPath)
	return func(c *supervisorConfig) {
		c.WorkerBinary = binPath
	}
}

// WithBaseDataDir sets the base directory for launch data, bundle
// installs, and the launch registry. Useful in CI environments where
// multiple projects may use workerenv simultaneously and need isolated
// directories to prevent conflicts.
// If not set, defaults to a "workerenv" directory under the system temp dir.
// Panics if dir is empty.
func WithBaseDataDir(dir string) SupervisorOption {
	requireNonEmpty("base data directory", dir)
	return func(c *supervisorConfig) {
		c.BaseDataDir = dir
	}
}

// WithBundleArchives sets the zip archives installed during Initialize.
// The install directory is keyed by a hash of the archive set, so an
// unchanged bundle is never re-extracted.
// Panics if archives is empty or contains an empty path.
func WithBundleArchives(archives ...string) SupervisorOption {
	if len(archives) == 0 {
		panic("workerenv: bundle archives must not be empty")
	}
	for _, a := range archives {
		requireNonEmpty("bundle archive path", a)
	}
	return func(c *supervisorConfig) {
		c.BundleArchives = archives
	}
}

// WithWorkerMode sets the value passed to the worker via the
// WORKERENV_MODE environment variable.
// Panics if mode is empty.
func WithWorkerMode(mode string) SupervisorOption {
	requireNonEmpty("worker mode", mode)
	return func(c *supervisorConfig) {
		c.WorkerMode = mode
	}
}

// WithReadyPath sets the HTTP path polled for worker readiness.
//
// Default: "/health".
//
// Panics if path is empty.
func WithReadyPath(path string) SupervisorOption {
	requireNonEmpty("ready path", path)
	return func(c *supervisorConfig) {
		c.ReadyPath = path
	}
}

// WithPipeStderr keeps the worker's stderr on its own pipe (logged at
// Warn) instead of merging it into stdout.
func WithPipeStderr() SupervisorOption {
	return func(c *supervisorConfig) {
		c.PipeStderr = true
	}
}

// WithPort pins the worker to a fixed port instead of allocating a free
// one per launch attempt. With a pinned port, retries reuse the same port.
// Panics if port <= 0.
func WithPort(port int) SupervisorOption {
	requirePositive("port", port)
	return func(c *supervisorConfig) {
		c.Port = port
	}
}

// WithMaxStartRetries sets the number of launch attempts before Start
// gives up. Each retry uses a fresh data directory and (unless the port is
// pinned) a fresh port.
//
// Default: 3.
//
// Panics if n <= 0.
func WithMaxStartRetries(n int) SupervisorOption {
	requirePositive("max start retries", n)
	return func(c *supervisorConfig) {
		c.MaxStartRetries = n
	}
}

// WithStartTimeout sets the maximum time per attempt for the worker to
// launch and answer its readiness endpoint.
//
// Default: 5 minutes.
//
// Panics if d <= 0.
func WithStartTimeout(d time.Duration) SupervisorOption {
	requirePositive("start timeout", d)
	return func(c *supervisorConfig) {
		c.StartTimeout = d
	}
}

// WithStopTimeout sets the bound on the worker's graceful shutdown: a
// termination signal, a grace period, then a forced kill.
//
// Default: 10 seconds.
//
// Panics if d <= 0.
func WithStopTimeout(d time.Duration) SupervisorOption {
	requirePositive("stop timeout", d)
	return func(c *supervisorConfig) {
		c.StopTimeout = d
	}
}

// WithInstallTimeout sets the overall timeout for bundle installation,
// including waiting for another host process's in-flight install of the
// same bundle.
//
// Default: 10 minutes.
//
// Panics if d <= 0.
func WithInstallTimeout(d time.Duration) SupervisorOption {
	requirePositive("install timeout", d)
	return func(c *supervisorConfig) {
		c.InstallTimeout = d
	}
}
