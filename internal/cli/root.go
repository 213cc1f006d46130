// Package cli implements the workerenv command-line interface.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/glacierworks/workerenv"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "workerenv",
	Short: "Launch and supervise an external worker process",
	Long: `workerenv launches a local worker service and supervises its lifecycle:
bundle installation, environment sanitization, readiness polling, and a
bounded graceful shutdown. The worker never outlives workerenv: on Linux
it receives a parent-death signal, on Windows it lives in a kill-on-close
job object, and stale launches left by crashes are purged on startup.

Commands:
  install     Install the configured bundle archives
  run         Start the worker and supervise it until interrupted
  purge       Remove launches whose supervising process is gone
  version     Show version info`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		workerenv.SetLogger(nil)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
