package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/glacierworks/workerenv"
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove launches whose supervising process is gone",
	Long: `Purge scans the launch registry under the base data directory and
removes every launch whose supervising process no longer exists,
deleting the orphaned data directories. Running supervisors and their
workers are left untouched.

The same sweep runs automatically at the start of every run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		baseDataDir := filepath.Join(os.TempDir(), workerenv.DefaultBaseDataDirName)
		if configPath != "" {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if cfg.BaseDataDir != "" {
				baseDataDir = cfg.BaseDataDir
			}
		}

		purged, err := workerenv.PurgeStaleLaunches(cmd.Context(), baseDataDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "purged %d stale launch(es) under %s\n", purged, baseDataDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(purgeCmd)
}
