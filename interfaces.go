package workerenv

import "context"

// Supervisor owns at most one worker process and its surrounding state.
//
// Callers must follow this lifecycle ordering:
//
//	NewSupervisor → Initialize → Start/Stop (repeatable) → Shutdown
//
// Initialize must be called before Start. Shutdown is safe to call at any
// point, including before Initialize. See each method's documentation for
// detailed error conditions.
type Supervisor interface {
	// Initialize performs expensive initialization operations: directory
	// creation, the stale-launch purge, and bundle installation when
	// archives are configured. Must be called before Start. Safe to call
	// multiple times: after a successful initialization, subsequent calls
	// return nil immediately. If initialization fails, subsequent calls
	// retry instead of returning a cached error permanently.
	Initialize(ctx context.Context) error

	// Start launches the worker and waits for it to answer its readiness
	// endpoint. Each attempt gets a fresh data directory and, unless the
	// port is pinned via WithPort, a fresh port; up to the configured
	// retry count attempts are made before giving up.
	//
	// Returns ErrNotInitialized if Initialize has not been called.
	// Returns ErrShuttingDown if the supervisor is shutting down.
	// Returns ErrAlreadyStarted if a worker is already running.
	Start(ctx context.Context) error

	// Stop terminates the running worker with a bounded graceful shutdown
	// (termination signal, grace period, forced kill). Safe to call when
	// no worker is running. After Stop, Start may be called again.
	Stop(ctx context.Context) error

	// WorkerURL returns the running worker's base URL
	// (e.g. "http://127.0.0.1:8188"), or "" when no worker is running.
	WorkerURL() string

	// WorkerPID returns the running worker's process ID, or 0 when no
	// worker is running.
	WorkerPID() int

	// BundleDir returns the installed bundle directory, or "" when no
	// bundle was configured or Initialize has not run.
	BundleDir() string

	// Shutdown stops the worker if running and releases all held
	// resources. Safe to call even if Initialize was never called, and
	// safe to call multiple times.
	Shutdown() error
}
