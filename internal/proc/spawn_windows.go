//go:build windows

package proc

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

// applySpawnPolicy sets Windows-specific process attributes on cmd.
// CREATE_NO_WINDOW prevents a console window from flashing up when the host
// is a GUI application.
func applySpawnPolicy(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: windows.CREATE_NO_WINDOW,
	}
}
