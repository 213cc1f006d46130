package workerenv

import "time"

// Default configuration values for NewSupervisor.
// These constants are exported so callers can reference the defaults
// when building custom configurations relative to them (e.g.,
// 2 * DefaultStartTimeout).
const (
	// DefaultWorkerBinary is the binary name used to locate the worker
	// in PATH when WithWorkerBinary is not given.
	DefaultWorkerBinary = "worker"

	// DefaultBaseDataDirName is the directory name under the system temp
	// directory where launch data is stored. The full path is computed
	// as filepath.Join(os.TempDir(), DefaultBaseDataDirName).
	DefaultBaseDataDirName = "workerenv"

	// DefaultReadyPath is the HTTP path polled for worker readiness.
	DefaultReadyPath = "/health"

	// DefaultMaxStartRetries is the number of launch attempts before
	// Start gives up. Each retry uses a fresh data directory and port.
	DefaultMaxStartRetries = 3

	// DefaultStartTimeout is the maximum time per attempt for the worker
	// to launch and answer its readiness endpoint.
	DefaultStartTimeout = 5 * time.Minute

	// DefaultStopTimeout bounds the worker's graceful shutdown: a
	// termination signal, a grace period, then a forced kill.
	DefaultStopTimeout = 10 * time.Second

	// DefaultInstallTimeout is the overall timeout for bundle
	// installation, including waiting for another host process's
	// in-flight install of the same bundle.
	DefaultInstallTimeout = 10 * time.Minute
)
