package workerenv

import "github.com/glacierworks/workerenv/internal/core"

// Sentinel errors for error inspection with errors.Is.
// These are immutable constants safe for use in wrapped error chain comparison.
const (
	// ErrShuttingDown is returned by Start when the supervisor is shutting down.
	ErrShuttingDown = core.ErrShuttingDown

	// ErrNotInitialized is returned by Start when Initialize has not been called.
	ErrNotInitialized = core.ErrNotInitialized

	// ErrAlreadyStarted is returned by Start when a worker is already running.
	ErrAlreadyStarted = core.ErrAlreadyStarted

	// ErrSpawn is returned by Start when the operating system fails to
	// start the worker binary (missing file, permission denied, exec
	// format error). The wrapped chain carries the OS error text.
	ErrSpawn = core.ErrSpawn

	// ErrNoArchives is returned by Initialize when bundle installation is
	// requested with an empty archive list.
	ErrNoArchives = core.ErrNoArchives
)
