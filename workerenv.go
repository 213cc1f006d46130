package workerenv

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/glacierworks/workerenv/internal/core"
)

// Singleton state for NewSupervisor. The first call creates the
// supervisor; subsequent calls return the same instance and log a warning.
//
// singletonMu protects both singletonSup and singletonOnce so that
// resetForTesting (used in tests) is concurrency-safe with NewSupervisor.
var (
	singletonMu   sync.Mutex
	singletonSup  Supervisor
	singletonOnce sync.Once
)

// Compile-time interface satisfaction check.
var _ Supervisor = (*supervisorWrapper)(nil)

// supervisorWrapper wraps core.Supervisor to implement the Supervisor
// interface. It serves as the concrete singleton implementation returned
// by NewSupervisor.
//
// The core.Supervisor is stored as a named (unexported) field rather than
// embedded to prevent callers from using type assertions to access
// internal methods (e.g., IsShuttingDown) that are not part of the public
// Supervisor interface.
type supervisorWrapper struct {
	sup *core.Supervisor
}

// Initialize wraps core.Supervisor.Initialize.
func (w *supervisorWrapper) Initialize(ctx context.Context) error {
	return w.sup.Initialize(ctx)
}

// Start wraps core.Supervisor.Start.
func (w *supervisorWrapper) Start(ctx context.Context) error {
	return w.sup.Start(ctx)
}

// Stop wraps core.Supervisor.Stop.
func (w *supervisorWrapper) Stop(ctx context.Context) error {
	return w.sup.Stop(ctx)
}

// WorkerURL wraps core.Supervisor.WorkerURL.
func (w *supervisorWrapper) WorkerURL() string {
	return w.sup.WorkerURL()
}

// WorkerPID wraps core.Supervisor.WorkerPID.
func (w *supervisorWrapper) WorkerPID() int {
	return w.sup.WorkerPID()
}

// BundleDir wraps core.Supervisor.BundleDir.
func (w *supervisorWrapper) BundleDir() string {
	return w.sup.BundleDir()
}

// Shutdown wraps core.Supervisor.Shutdown.
func (w *supervisorWrapper) Shutdown() error {
	return w.sup.Shutdown()
}

// defaultSupervisorConfig returns a supervisorConfig populated with all
// default values. Both NewSupervisor and test helpers use this to avoid
// duplicating the default field assignments.
func defaultSupervisorConfig() supervisorConfig {
	return supervisorConfig{core.SupervisorConfig{
		WorkerBinary:    DefaultWorkerBinary,
		BaseDataDir:     filepath.Join(os.TempDir(), DefaultBaseDataDirName),
		ReadyPath:       DefaultReadyPath,
		MaxStartRetries: DefaultMaxStartRetries,
		StartTimeout:    DefaultStartTimeout,
		StopTimeout:     DefaultStopTimeout,
		InstallTimeout:  DefaultInstallTimeout,
	}}
}

// resetForTesting resets the singleton state so that the next call to
// NewSupervisor creates a fresh supervisor. This follows the Go stdlib
// pattern (e.g., net/http/internal) for enabling test isolation within a
// single binary. It must only be called from tests.
func resetForTesting() {
	singletonMu.Lock()
	defer singletonMu.Unlock()

	singletonSup = nil
	singletonOnce = sync.Once{}
}

// NewSupervisor returns the process-level singleton Supervisor.
//
// The first call creates the supervisor with the given options and stores
// it. Subsequent calls return the same instance; options are ignored and
// a warning is logged. This performs no I/O operations; call Initialize
// before Start.
//
// The singleton is never reset after Shutdown; callers that need a fresh
// supervisor must restart the process (or, in tests, use a separate test
// binary).
//
// Panics if any option receives an invalid value. See individual With*
// functions for constraints.
//
//nolint:ireturn // Returns Supervisor interface by design for testability (mockable).
func NewSupervisor(opts ...SupervisorOption) Supervisor {
	singletonMu.Lock()
	defer singletonMu.Unlock()

	// created is written inside the Do closure and read after Do returns.
	// sync.Once guarantees the closure completes (happens-before) Do
	// returns, so the write is visible here without additional
	// synchronization.
	created := false
	singletonOnce.Do(func() {
		cfg := defaultSupervisorConfig()
		for _, opt := range opts {
			opt(&cfg)
		}
		singletonSup = &supervisorWrapper{sup: core.NewSupervisorWithConfig(cfg.toCoreConfig())}
		created = true
	})
	if !created {
		core.Logger().Warn("NewSupervisor called more than once; returning existing singleton (options ignored)")
	}
	return singletonSup
}
