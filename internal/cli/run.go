package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the worker and supervise it until interrupted",
	Long: `Run initializes the supervisor (directories, stale-launch purge, bundle
install), starts the worker, waits for its readiness endpoint, and then
blocks until interrupted (SIGINT/SIGTERM) or until the worker exits on
its own. On interrupt the worker is stopped with a bounded graceful
shutdown.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sup, err := supervisorFromFlags()
		if err != nil {
			return err
		}
		defer sup.Shutdown() //nolint:errcheck // Stop below reports the interesting errors

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := sup.Initialize(ctx); err != nil {
			return err
		}
		if err := sup.Start(ctx); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "worker ready at %s (pid %d)\n", sup.WorkerURL(), sup.WorkerPID())

		<-ctx.Done()
		stop() // restore default signal handling so a second ^C kills us

		return sup.Stop(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
