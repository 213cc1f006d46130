//go:build !linux && !windows

package proc

import "os/exec"

// applySpawnPolicy is a no-op on platforms without a spawn-time supervision
// attribute. Pdeathsig is Linux-only; macOS and the BSDs rely on the caller
// stopping the worker explicitly.
func applySpawnPolicy(_ *exec.Cmd) {}
