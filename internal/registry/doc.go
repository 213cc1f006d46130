// Package registry tracks worker launches in a SQLite database shared by
// all host processes on a machine.
//
// Each successful launch records the supervising process's PID together
// with the worker's data directory. On startup, PurgeStale scans the table
// for rows whose supervising process is gone and removes both the orphaned
// data directories and the rows themselves, so crashes never leak disk
// space across restarts.
package registry
