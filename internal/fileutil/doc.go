// Package fileutil holds the small filesystem helpers shared by the
// supervisor's disk layout: EnsureDir and EnsureDirForFile prepare worker
// data directories and the launch registry location, and UniquePath finds a
// collision-free variant of a path by appending a numeric suffix.
package fileutil
