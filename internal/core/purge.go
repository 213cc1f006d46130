package core

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/glacierworks/workerenv/internal/registry"
)

// PurgeLaunches opens the launch registry under baseDataDir, removes every
// launch whose supervising process is gone (deleting the orphaned data
// directories), and closes the registry again. It returns the number of
// stale launches purged.
//
// Supervisor.Initialize runs the same sweep; this standalone entry point
// exists for tooling that wants to reclaim disk space without constructing
// a supervisor.
func PurgeLaunches(ctx context.Context, baseDataDir string) (int, error) {
	if baseDataDir == "" {
		return 0, fmt.Errorf("base data directory must not be empty")
	}

	reg, err := registry.Open(ctx, filepath.Join(baseDataDir, registryFileName), Logger())
	if err != nil {
		return 0, fmt.Errorf("open launch registry: %w", err)
	}
	defer func() {
		if closeErr := reg.Close(); closeErr != nil {
			Logger().Warn("failed to close registry after purge", "error", closeErr)
		}
	}()

	return reg.PurgeStale(ctx)
}
