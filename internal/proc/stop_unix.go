//go:build !windows

package proc

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// terminate requests a graceful shutdown by sending SIGTERM. An error means
// the process has already exited.
func terminate(p *os.Process) error {
	return p.Signal(syscall.SIGTERM)
}

// expectSignalExit interprets an error from cmd.Wait after a termination
// request. Exit errors caused by SIGTERM or SIGKILL are expected and treated
// as successful stops.
func expectSignalExit(err error, name string) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			sig := status.Signal()
			if sig == syscall.SIGTERM || sig == syscall.SIGKILL {
				return nil
			}
		}
	}
	return fmt.Errorf("%s: %w", name, err)
}
