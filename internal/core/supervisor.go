package core

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/glacierworks/workerenv/internal/bundle"
	"github.com/glacierworks/workerenv/internal/fileutil"
	"github.com/glacierworks/workerenv/internal/netutil"
	"github.com/glacierworks/workerenv/internal/proc"
	"github.com/glacierworks/workerenv/internal/registry"
	"github.com/glacierworks/workerenv/internal/sentinel"
	"github.com/glacierworks/workerenv/internal/worker"
)

// supervisorState represents the lifecycle state of a Supervisor.
type supervisorState uint32

const (
	supervisorCreated      supervisorState = iota // Zero value; NewSupervisorWithConfig returns in this state
	supervisorInitializing                        // Initialize in progress
	supervisorReady                               // Start allowed
	supervisorShuttingDown                        // Shutdown called
)

// registryFileName is the launch registry database, kept under BaseDataDir.
const registryFileName = "launches.db"

// bundlesDirName is the directory under BaseDataDir holding bundle installs.
const bundlesDirName = "bundles"

// ErrShuttingDown is returned by Start when the Supervisor is shutting down.
const ErrShuttingDown = sentinel.Error("supervisor is shutting down")

// ErrNotInitialized is returned by Start when Initialize has not been called.
const ErrNotInitialized = sentinel.Error("supervisor not initialized")

// ErrAlreadyStarted is re-exported from worker so the public API imports only
// from core, preserving the layering: public API → core → worker.
const ErrAlreadyStarted = worker.ErrAlreadyStarted

// ErrNoArchives is re-exported from bundle so the public API imports only
// from core, preserving the layering: public API → core → bundle.
const ErrNoArchives = bundle.ErrNoArchives

// ErrSpawn is re-exported from proc so the public API imports only from
// core, preserving the layering: public API → core → proc.
const ErrSpawn = proc.ErrSpawn

// Supervisor owns exactly one worker process and the shared machinery
// around it: the launch registry, bundle installs, and port allocation.
// It is safe for concurrent use by multiple goroutines.
//
// Synchronization strategy:
//   - state is an atomic supervisorState enum (created → initializing →
//     ready → shuttingDown). Start reads it with a single atomic load for
//     the fast path.
//   - initMu serializes concurrent Initialize calls.
//   - runMu protects the mutable launch state (wk, port). Start, Stop,
//     and Shutdown take it; state reads do not.
type Supervisor struct {
	cfg SupervisorConfig

	// ports coordinates port allocation across launch attempts. Created
	// during construction and shared with any temporary launches.
	ports *netutil.PortRegistry

	// bundleDir is the installed bundle directory, set during Initialize
	// when BundleArchives is non-empty. Separated from cfg to preserve
	// the immutable-after-construction contract of SupervisorConfig.
	bundleDir string

	reg *registry.Registry

	state atomic.Uint32 // supervisorState; zero value is supervisorCreated

	// initMu serializes concurrent Initialize calls.
	initMu sync.Mutex

	// runMu protects wk and port.
	runMu sync.Mutex
	wk    *worker.Process
	port  int
}

// loadState returns the current supervisor lifecycle state.
func (s *Supervisor) loadState() supervisorState {
	return supervisorState(s.state.Load())
}

// storeState sets the supervisor lifecycle state.
func (s *Supervisor) storeState(st supervisorState) {
	s.state.Store(uint32(st))
}

// NewSupervisorWithConfig creates a Supervisor with the provided
// configuration. This performs no I/O operations. Call Initialize before
// Start.
//
// Panics if cfg.Validate() reports any errors. Invalid configuration is a
// programmer error that should be caught at construction time, similar to
// regexp.MustCompile.
func NewSupervisorWithConfig(cfg SupervisorConfig) *Supervisor {
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("workerenv: invalid supervisor config: %v", err))
	}
	return &Supervisor{
		cfg:   cfg,
		ports: netutil.NewPortRegistry(Logger()),
	}
}

// Initialize performs expensive initialization operations: directory
// creation, the stale-launch purge, and bundle installation. Must be
// called before Start. Safe to call multiple times: after a successful
// initialization, subsequent calls return nil immediately. If
// initialization fails, subsequent calls retry instead of returning a
// cached error permanently.
func (s *Supervisor) Initialize(ctx context.Context) error {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	switch s.loadState() {
	case supervisorReady:
		return nil
	case supervisorShuttingDown:
		return ErrShuttingDown
	case supervisorCreated, supervisorInitializing:
		// Continue with initialization (or retry after prior failure).
	}

	s.storeState(supervisorInitializing)

	// Defense in depth: validate config even though NewSupervisorWithConfig
	// already panics on invalid config. This catches cases where Supervisor
	// is constructed via struct literal (bypassing NewSupervisorWithConfig).
	if err := s.cfg.Validate(); err != nil {
		s.storeState(supervisorCreated)
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := s.doInitialize(ctx); err != nil {
		// Roll back partial state so Start sees ErrNotInitialized and a
		// subsequent Initialize call can retry from scratch.
		if s.reg != nil {
			if closeErr := s.reg.Close(); closeErr != nil {
				Logger().Warn("failed to close registry during rollback", "error", closeErr)
			}
			s.reg = nil
		}
		s.bundleDir = ""
		s.storeState(supervisorCreated)
		return fmt.Errorf("initialize: %w", err)
	}

	s.storeState(supervisorReady)
	return nil
}

// doInitialize contains the actual initialization logic.
func (s *Supervisor) doInitialize(ctx context.Context) error {
	if err := fileutil.EnsureDir(s.cfg.BaseDataDir); err != nil {
		return fmt.Errorf("init base dir: %w", err)
	}

	reg, err := registry.Open(ctx, filepath.Join(s.cfg.BaseDataDir, registryFileName), Logger())
	if err != nil {
		return fmt.Errorf("open launch registry: %w", err)
	}
	s.reg = reg

	// Remove launches whose supervising process is gone. Their worker
	// processes died with them (parent-death signal / job object); only
	// the data directories and registry rows survive a crash.
	if _, err := reg.PurgeStale(ctx); err != nil {
		return fmt.Errorf("purge stale launches: %w", err)
	}

	if len(s.cfg.BundleArchives) > 0 {
		result, err := bundle.EnsureInstall(ctx, bundle.Config{
			Archives:    s.cfg.BundleArchives,
			InstallRoot: filepath.Join(s.cfg.BaseDataDir, bundlesDirName),
			Timeout:     s.cfg.InstallTimeout,
			Logger:      Logger(),
		})
		if err != nil {
			return fmt.Errorf("ensure bundle install: %w", err)
		}
		s.bundleDir = result.Dir
	}

	return nil
}

// BundleDir returns the installed bundle directory, or "" when no bundle
// was configured or Initialize has not run.
func (s *Supervisor) BundleDir() string {
	return s.bundleDir
}

// genID generates a random 8-character hex ID for launch naming.
func genID() string {
	return fmt.Sprintf(
		"%08x",
		rand.Uint32(), //nolint:gosec // G404: launch IDs need uniqueness, not cryptographic strength
	)
}

// Start launches the worker and waits for it to become ready. Each attempt
// gets a fresh data directory and, unless the port is pinned, a fresh
// port; up to MaxStartRetries attempts are made before giving up. On
// success the launch is recorded in the registry.
//
// Returns ErrNotInitialized if Initialize has not been called.
// Returns ErrShuttingDown if the Supervisor is shutting down.
// Returns ErrAlreadyStarted if a worker is already running.
func (s *Supervisor) Start(ctx context.Context) error {
	switch s.loadState() {
	case supervisorShuttingDown:
		return ErrShuttingDown
	case supervisorReady:
		// Continue to launch.
	case supervisorCreated, supervisorInitializing:
		return ErrNotInitialized
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.wk != nil {
		return ErrAlreadyStarted
	}

	var errs []error
	for attempt := 1; attempt <= s.cfg.MaxStartRetries; attempt++ {
		wk, port, err := s.startAttempt(ctx, attempt)
		if err == nil {
			s.wk = wk
			s.port = port
			return nil
		}
		errs = append(errs, fmt.Errorf("attempt %d: %w", attempt, err))

		// Context failures will not improve on retry.
		if ctx.Err() != nil {
			break
		}
		Logger().Warn("worker start attempt failed", "attempt", attempt, "max", s.cfg.MaxStartRetries, "error", err)
	}

	return fmt.Errorf("start worker: %w", errors.Join(errs...))
}

// startAttempt performs a single launch attempt: allocate a port, start
// the worker in a fresh data directory, and wait for readiness. On any
// failure the worker is stopped and the port released before returning.
func (s *Supervisor) startAttempt(ctx context.Context, attempt int) (*worker.Process, int, error) {
	port := s.cfg.Port
	if port == 0 {
		var err error
		port, err = s.ports.Allocate()
		if err != nil {
			return nil, 0, fmt.Errorf("allocate port: %w", err)
		}
	}

	launchID := fmt.Sprintf("worker-%d-%s", attempt, genID())

	// A directory with this name can survive a crash when the purge could
	// not remove it; pick an unused variant rather than launching into
	// leftover state.
	dataDir, err := fileutil.UniquePath(filepath.Join(s.cfg.BaseDataDir, launchID))
	if err != nil {
		s.releasePort(port)
		return nil, 0, fmt.Errorf("pick data dir: %w", err)
	}

	wk, err := worker.New(worker.Config{
		Binary:     s.cfg.WorkerBinary,
		DataDir:    dataDir,
		Port:       port,
		Mode:       s.cfg.WorkerMode,
		PipeStderr: s.cfg.PipeStderr,
		ReadyPath:  s.cfg.ReadyPath,
		Logger:     Logger(),
	})
	if err != nil {
		s.releasePort(port)
		return nil, 0, err
	}

	if err := wk.Start(ctx); err != nil {
		s.releasePort(port)
		return nil, 0, err
	}

	if err := wk.WaitReady(ctx, s.cfg.StartTimeout); err != nil {
		if stopErr := proc.StopCloseAndNil(&wk, s.cfg.StopTimeout); stopErr != nil {
			Logger().Warn("failed to stop worker after readiness failure", "error", stopErr)
		}
		s.releasePort(port)
		return nil, 0, err
	}

	if err := s.reg.Record(ctx, wk.PID(), dataDir); err != nil {
		// The worker is healthy; losing the registry row only delays
		// cleanup to the next purge. Log and continue.
		Logger().Warn("failed to record launch in registry", "pid", wk.PID(), "error", err)
	}

	Logger().Info("worker ready", "pid", wk.PID(), "port", port, "data_dir", dataDir, "attempt", attempt)
	return wk, port, nil
}

// releasePort returns an allocated port to the registry. Pinned ports are
// never registered, so there is nothing to release.
func (s *Supervisor) releasePort(port int) {
	if s.cfg.Port == 0 {
		s.ports.Release(port)
	}
}

// WorkerURL returns the running worker's base URL, or "" when no worker
// is running.
func (s *Supervisor) WorkerURL() string {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.wk == nil {
		return ""
	}
	return s.wk.URL()
}

// WorkerPID returns the running worker's process ID, or 0 when no worker
// is running.
func (s *Supervisor) WorkerPID() int {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.wk == nil {
		return 0
	}
	return s.wk.PID()
}

// Stop terminates the running worker, removes its registry row, and
// releases its port. Safe to call when no worker is running.
func (s *Supervisor) Stop(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.stopLocked(ctx)
}

// stopLocked is Stop's body; callers must hold runMu.
func (s *Supervisor) stopLocked(ctx context.Context) error {
	if s.wk == nil {
		return nil
	}

	pid := s.wk.PID()
	stopErr := proc.StopCloseAndNil(&s.wk, s.cfg.StopTimeout)

	if s.reg != nil {
		if err := s.reg.Delete(ctx, pid); err != nil {
			Logger().Warn("failed to delete launch from registry", "pid", pid, "error", err)
		}
	}
	s.releasePort(s.port)
	s.port = 0

	if stopErr != nil {
		return fmt.Errorf("stop worker: %w", stopErr)
	}
	return nil
}

// IsShuttingDown reports whether Shutdown has been called.
func (s *Supervisor) IsShuttingDown() bool {
	return s.loadState() == supervisorShuttingDown
}

// Shutdown stops the worker if running and closes the registry. Safe to
// call even if Initialize was never called, and safe to call multiple
// times.
func (s *Supervisor) Shutdown() error {
	// storeState uses atomic.Store, which provides a happens-before edge:
	// goroutines that subsequently call loadState (in Start, Initialize)
	// are guaranteed to observe supervisorShuttingDown.
	s.storeState(supervisorShuttingDown)

	s.runMu.Lock()
	defer s.runMu.Unlock()

	var errs []error
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.StopTimeout)
	defer cancel()
	if err := s.stopLocked(ctx); err != nil {
		errs = append(errs, err)
	}

	if s.reg != nil {
		if err := s.reg.Close(); err != nil {
			errs = append(errs, err)
		}
		s.reg = nil
	}

	return errors.Join(errs...)
}
