package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the configured bundle archives",
	Long: `Install extracts the bundle archives from the configuration into a
content-addressed directory under the base data directory. An unchanged
bundle is never re-extracted, so running install repeatedly is cheap.
Concurrent installs of the same bundle (from this or another process)
converge on a single directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sup, err := supervisorFromFlags()
		if err != nil {
			return err
		}
		defer sup.Shutdown() //nolint:errcheck // best-effort teardown after install

		if err := sup.Initialize(cmd.Context()); err != nil {
			return err
		}

		if dir := sup.BundleDir(); dir != "" {
			fmt.Fprintln(cmd.OutOrStdout(), dir)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "no bundle archives configured; nothing to install")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
