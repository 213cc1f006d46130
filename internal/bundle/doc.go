// Package bundle installs worker payload bundles into content-addressed
// directories.
//
// A bundle is a set of zip archives (interpreter tree, node packs, model
// indices) that must be extracted before the worker can start. EnsureInstall
// keys the install directory by a hash of the archive set, so an unchanged
// bundle is never re-extracted, and guards creation with a file lock so
// concurrent host processes sharing an install root converge on a single
// install instead of corrupting each other's extraction.
package bundle
