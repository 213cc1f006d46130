//go:build windows

package proc

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// terminate requests shutdown on Windows. Console-less processes (spawned
// with CREATE_NO_WINDOW) cannot receive CTRL_BREAK, so termination goes
// straight to TerminateProcess via os.Process.Kill. An error means the
// process has already exited.
func terminate(p *os.Process) error {
	return p.Kill()
}

// terminatedExitCode is the exit code os.Process.Kill passes to
// TerminateProcess.
const terminatedExitCode = 1

// expectSignalExit interprets an error from cmd.Wait after a termination
// request. The TerminateProcess exit code is expected and treated as a
// successful stop.
func expectSignalExit(err error, name string) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == terminatedExitCode {
		return nil
	}
	return fmt.Errorf("%s: %w", name, err)
}
