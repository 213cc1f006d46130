package proc

import (
	"fmt"
	"os/exec"
	"time"
)

// DefaultStopTimeout is the default timeout for stopping a process. It is
// used as a fallback by packages that manage process lifecycle when no
// explicit stop timeout is configured.
const DefaultStopTimeout = 10 * time.Second

// termGracePeriod is the maximum time to wait for a process to exit after
// the termination request before escalating to a hard kill. The actual grace
// period is capped at the overall timeout.
const termGracePeriod = 5 * time.Second

// killDrainTimeout is the hard upper bound for waiting on the done channel
// after a hard kill has been sent (or after the process has already exited).
// A killed process should exit almost immediately; this timeout is a safety
// net against indefinite blocking if cmd.Wait never returns (e.g., due to
// stuck I/O or kernel issues).
const killDrainTimeout = 10 * time.Second

// drainDone reads from the done channel with the given timeout as a hard
// upper bound. Under normal conditions cmd.Wait returns almost immediately
// after the process exits, so this timeout should never fire.
//
// Returns true and the cmd.Wait error if the channel delivered in time,
// or false and a nil error if the timeout elapsed.
func drainDone(done <-chan error, timeout time.Duration) (bool, error) {
	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case err := <-done:
		return true, err
	case <-t.C:
		return false, nil
	}
}

// stopWithDone implements the terminate-then-kill shutdown sequence using a
// pre-existing done channel that already has a goroutine calling cmd.Wait.
// This avoids spawning a second cmd.Wait goroutine, which would be undefined
// behavior. The done channel must receive the result of exactly one cmd.Wait
// call.
//
// Shutdown flow:
//  1. Request graceful termination (SIGTERM on Unix; hard kill on Windows,
//     which has no graceful signal for console-less processes).
//  2. Schedule a hard kill via time.AfterFunc after a grace period (canceled
//     if the process exits first).
//  3. Wait for process exit or total timeout.
//
// Worst-case blocking duration is timeout + killDrainTimeout. This occurs
// when the main timeout expires and the post-kill drain also blocks for its
// full duration. Callers allocating time budgets should account for this
// additional killDrainTimeout beyond the configured timeout.
func stopWithDone(cmd *exec.Cmd, done <-chan error, timeout time.Duration, name string) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	if done == nil {
		return fmt.Errorf("%s: done channel must not be nil", name)
	}

	if err := terminate(cmd.Process); err != nil {
		// Process already exited; drain the wait goroutine with a hard
		// upper bound to avoid blocking indefinitely.
		ok, waitErr := drainDone(done, killDrainTimeout)
		if !ok {
			return fmt.Errorf("%s: timed out draining process after signal failure", name)
		}
		return expectSignalExit(waitErr, name)
	}

	// Schedule the hard kill after the grace period. If the process exits
	// before the grace period, killTimer.Stop() cancels the escalation.
	//
	// grace is clamped to timeout so the kill always fires before the total
	// timeout expires. This guarantees the process receives a kill while
	// totalTimer is still running, giving drainDone a window to collect the
	// exit status rather than hitting the timeout path.
	grace := min(termGracePeriod, timeout)
	killTimer := time.AfterFunc(grace, func() {
		// Kill after Wait (process already exited) is a no-op that returns
		// an "os: process already finished" error, which is intentionally
		// discarded: the OS has already released the process.
		_ = cmd.Process.Kill()
	})
	// killTimer.Stop cancels the pending kill before this function returns.
	// cmd.Process is only used by the kill callback and by the caller, who
	// must not nil cmd until stopWithDone returns.
	defer killTimer.Stop()

	totalTimer := time.NewTimer(timeout)
	defer totalTimer.Stop()

	select {
	case err := <-done:
		return expectSignalExit(err, name)
	case <-totalTimer.C:
		ok, waitErr := drainDone(done, killDrainTimeout)
		if !ok {
			return fmt.Errorf("%s: timed out waiting for process to exit after kill", name)
		}
		if err := expectSignalExit(waitErr, name); err != nil {
			return fmt.Errorf("%s stop timeout: %w", name, err)
		}
		return nil
	}
}
