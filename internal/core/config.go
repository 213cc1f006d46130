package core

import (
	"errors"
	"fmt"
	"time"
)

// SupervisorConfig holds configuration for Supervisor instances.
//
// Concurrency contract: all fields are immutable after construction via
// NewSupervisorWithConfig. Start and Initialize read them without
// synchronization, relying on this guarantee.
type SupervisorConfig struct {
	// WorkerBinary is the path to the worker executable.
	WorkerBinary string

	// BaseDataDir is the directory under which the supervisor keeps all
	// on-disk state: per-launch data directories, bundle installs, and
	// the launch registry database.
	BaseDataDir string

	// BundleArchives are zip archives to install before the first launch.
	// Empty means no bundle installation.
	BundleArchives []string

	// WorkerMode, when non-empty, is passed to the worker via the
	// WORKERENV_MODE environment variable.
	WorkerMode string

	// ReadyPath is the HTTP path polled for worker readiness.
	// Default: "/health".
	ReadyPath string

	// PipeStderr keeps the worker's stderr on its own pipe (logged at
	// Warn) instead of merging it into stdout.
	PipeStderr bool

	// Port pins the worker to a fixed port. 0 means allocate a free port
	// per launch attempt.
	Port int

	// MaxStartRetries is the number of launch attempts before giving up.
	// Each retry uses a fresh data directory and (unless Port is pinned)
	// a fresh port. Default: 3.
	MaxStartRetries int

	// StartTimeout is the maximum time per attempt for the worker to
	// launch and answer its readiness endpoint. Default: 5 minutes.
	StartTimeout time.Duration

	// StopTimeout bounds the worker's graceful shutdown (TERM, grace
	// period, KILL). Default: 10 seconds.
	StopTimeout time.Duration

	// InstallTimeout is the overall timeout for bundle installation,
	// including waiting for another process's in-flight install.
	// Default: 10 minutes.
	InstallTimeout time.Duration
}

// Validate checks all SupervisorConfig invariants and returns an error
// describing every violation found. It uses errors.Join to report multiple
// issues at once, allowing callers to fix all problems in a single pass
// rather than playing whack-a-mole with one error at a time.
//
// Validate is called by NewSupervisorWithConfig (which panics on error,
// since invalid config is a programmer error) and by Initialize (which
// returns the error, providing defense in depth).
func (c SupervisorConfig) Validate() error {
	var errs []error

	if c.WorkerBinary == "" {
		errs = append(errs, errors.New("worker binary path must not be empty"))
	}
	if c.BaseDataDir == "" {
		errs = append(errs, errors.New("base data directory must not be empty"))
	}
	if c.Port < 0 {
		errs = append(errs, fmt.Errorf("port must not be negative, got %d", c.Port))
	}
	if c.MaxStartRetries <= 0 {
		errs = append(errs, fmt.Errorf("max start retries must be greater than 0, got %d", c.MaxStartRetries))
	}
	if c.StartTimeout <= 0 {
		errs = append(errs, fmt.Errorf("start timeout must be greater than 0, got %s", c.StartTimeout))
	}
	if c.StopTimeout <= 0 {
		errs = append(errs, fmt.Errorf("stop timeout must be greater than 0, got %s", c.StopTimeout))
	}
	if len(c.BundleArchives) > 0 && c.InstallTimeout <= 0 {
		errs = append(errs, fmt.Errorf("install timeout must be greater than 0, got %s", c.InstallTimeout))
	}

	return errors.Join(errs...)
}
