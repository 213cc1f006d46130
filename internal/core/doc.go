// Package core implements the supervisor that owns the worker lifecycle:
// initialization (directories, stale-launch purge, bundle install),
// starting the worker with port allocation and readiness retry, stopping
// it with a bounded graceful shutdown, and final teardown.
//
// The public API at the module root is a thin veneer over this package.
package core
