package workerenv

import (
	"context"

	"github.com/glacierworks/workerenv/internal/core"
)

// PurgeStaleLaunches removes launches recorded under baseDataDir whose
// supervising process no longer exists, deleting their data directories.
// It returns the number of launches purged.
//
// Supervisor.Initialize runs the same sweep automatically; call this
// directly only from tooling that wants to reclaim disk space without
// constructing a supervisor.
func PurgeStaleLaunches(ctx context.Context, baseDataDir string) (int, error) {
	return core.PurgeLaunches(ctx, baseDataDir)
}
