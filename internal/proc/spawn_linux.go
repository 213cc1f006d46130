//go:build linux

package proc

import (
	"os/exec"
	"syscall"
)

// applySpawnPolicy sets Linux-specific process attributes on cmd.
// Pdeathsig ensures the child receives SIGTERM when its parent dies,
// preventing orphaned workers if the host application is killed abruptly.
// The attribute is applied by the kernel between fork and exec; it cannot
// fail the spawn.
func applySpawnPolicy(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Pdeathsig: syscall.SIGTERM,
	}
}
