// Package proc launches and supervises external worker processes.
//
// Launch starts a process with a sanitized environment and platform spawn
// policy applied, returning a Handle that owns the stdout/stderr pipes and
// the single cmd.Wait goroutine. On Windows every launched process is
// assigned to a process-wide job object configured to kill its members when
// the last handle closes, so workers cannot outlive a crashed host. On Linux
// the kernel delivers SIGTERM to the child when the parent dies. Both
// mechanisms are best-effort: their failure degrades supervision but never
// fails the launch itself.
//
// The package also provides WaitReady for polling-based readiness checks,
// the Stoppable interface, and StopCloseAndNil for atomic cleanup.
package proc
