package workerenv

import "time"

// ResetForTesting resets the singleton supervisor state so that the next
// call to NewSupervisor creates a fresh instance. This is exported only
// for use in test packages (package workerenv_test).
func ResetForTesting() { resetForTesting() }

// ConfigSnapshot holds a copy of supervisorConfig fields for test
// assertions. Exported only via export_test.go so that the _test package
// can verify option closures actually mutate the config without accessing
// internals.
type ConfigSnapshot struct {
	WorkerBinary    string
	BaseDataDir     string
	BundleArchives  []string
	WorkerMode      string
	ReadyPath       string
	PipeStderr      bool
	Port            int
	MaxStartRetries int
	StartTimeout    time.Duration
	StopTimeout     time.Duration
	InstallTimeout  time.Duration
}

// ApplyOptionsForTesting creates a default supervisorConfig, applies the
// given options, and returns a ConfigSnapshot of the result. This tests
// the option closures directly without touching the singleton.
func ApplyOptionsForTesting(opts ...SupervisorOption) ConfigSnapshot {
	cfg := defaultSupervisorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return ConfigSnapshot{
		WorkerBinary:    cfg.WorkerBinary,
		BaseDataDir:     cfg.BaseDataDir,
		BundleArchives:  cfg.BundleArchives,
		WorkerMode:      cfg.WorkerMode,
		ReadyPath:       cfg.ReadyPath,
		PipeStderr:      cfg.PipeStderr,
		Port:            cfg.Port,
		MaxStartRetries: cfg.MaxStartRetries,
		StartTimeout:    cfg.StartTimeout,
		StopTimeout:     cfg.StopTimeout,
		InstallTimeout:  cfg.InstallTimeout,
	}
}
