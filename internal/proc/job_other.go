//go:build !windows

package proc

import "log/slog"

// attachToJob is a no-op outside Windows. Parent-death delivery is handled
// by the spawn policy (Pdeathsig on Linux) before the process starts.
func attachToJob(_ int, _ *slog.Logger) {}
