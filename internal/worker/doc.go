// Package worker runs the external worker process and exposes its
// lifecycle: launch with the right arguments and environment, stream its
// output into the host's structured log, wait for the HTTP readiness
// endpoint, and stop it with a bounded graceful shutdown.
package worker
