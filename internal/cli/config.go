package cli

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/glacierworks/workerenv"
)

// duration wraps time.Duration so YAML values like "90s" or "5m" decode
// with time.ParseDuration semantics.
type duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = duration(parsed)
	return nil
}

// fileConfig is the YAML configuration file schema. Every field maps onto
// a supervisor option; unset fields keep the library defaults.
type fileConfig struct {
	WorkerBinary    string   `yaml:"worker_binary"`
	BaseDataDir     string   `yaml:"base_data_dir"`
	BundleArchives  []string `yaml:"bundle_archives"`
	WorkerMode      string   `yaml:"worker_mode"`
	ReadyPath       string   `yaml:"ready_path"`
	PipeStderr      bool     `yaml:"pipe_stderr"`
	Port            int      `yaml:"port"`
	MaxStartRetries int      `yaml:"max_start_retries"`
	StartTimeout    duration `yaml:"start_timeout"`
	StopTimeout     duration `yaml:"stop_timeout"`
	InstallTimeout  duration `yaml:"install_timeout"`
}

// loadConfig reads and strictly decodes the YAML file at path. Unknown
// keys are an error so typos fail loudly instead of silently keeping a
// default.
func loadConfig(path string) (*fileConfig, error) {
	f, err := os.Open(path) //nolint:gosec // G304: config path comes from the --config flag
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	var cfg fileConfig
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", path, err)
	}
	return &cfg, nil
}

// options converts the file configuration into supervisor options.
// Options panic on invalid values, so validate returns friendly errors
// first for anything the YAML could plausibly get wrong.
func (c *fileConfig) options() ([]workerenv.SupervisorOption, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	var opts []workerenv.SupervisorOption
	if c.WorkerBinary != "" {
		opts = append(opts, workerenv.WithWorkerBinary(c.WorkerBinary))
	}
	if c.BaseDataDir != "" {
		opts = append(opts, workerenv.WithBaseDataDir(c.BaseDataDir))
	}
	if len(c.BundleArchives) > 0 {
		opts = append(opts, workerenv.WithBundleArchives(c.BundleArchives...))
	}
	if c.WorkerMode != "" {
		opts = append(opts, workerenv.WithWorkerMode(c.WorkerMode))
	}
	if c.ReadyPath != "" {
		opts = append(opts, workerenv.WithReadyPath(c.ReadyPath))
	}
	if c.PipeStderr {
		opts = append(opts, workerenv.WithPipeStderr())
	}
	if c.Port != 0 {
		opts = append(opts, workerenv.WithPort(c.Port))
	}
	if c.MaxStartRetries != 0 {
		opts = append(opts, workerenv.WithMaxStartRetries(c.MaxStartRetries))
	}
	if c.StartTimeout != 0 {
		opts = append(opts, workerenv.WithStartTimeout(time.Duration(c.StartTimeout)))
	}
	if c.StopTimeout != 0 {
		opts = append(opts, workerenv.WithStopTimeout(time.Duration(c.StopTimeout)))
	}
	if c.InstallTimeout != 0 {
		opts = append(opts, workerenv.WithInstallTimeout(time.Duration(c.InstallTimeout)))
	}
	return opts, nil
}

// validate reports configuration values the option constructors would
// panic on.
func (c *fileConfig) validate() error {
	if c.Port < 0 {
		return fmt.Errorf("port must not be negative, got %d", c.Port)
	}
	if c.MaxStartRetries < 0 {
		return fmt.Errorf("max_start_retries must not be negative, got %d", c.MaxStartRetries)
	}
	for _, a := range c.BundleArchives {
		if a == "" {
			return fmt.Errorf("bundle_archives must not contain empty paths")
		}
	}
	for name, d := range map[string]duration{
		"start_timeout":   c.StartTimeout,
		"stop_timeout":    c.StopTimeout,
		"install_timeout": c.InstallTimeout,
	} {
		if d < 0 {
			return fmt.Errorf("%s must not be negative, got %s", name, time.Duration(d))
		}
	}
	return nil
}

// supervisorFromFlags builds the singleton supervisor from the --config
// file (when given) plus any defaults.
func supervisorFromFlags() (workerenv.Supervisor, error) { //nolint:ireturn // public API returns the interface
	var opts []workerenv.SupervisorOption
	if configPath != "" {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return nil, err
		}
		opts, err = cfg.options()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", configPath, err)
		}
	}
	return workerenv.NewSupervisor(opts...), nil
}
