// Package procenv builds sanitized environment slices for worker processes.
//
// The host application often runs inside an embedded Python interpreter that
// injects PYTHONPATH into its own environment. A worker that inherits that
// variable resolves packages against the host's interpreter tree instead of
// its own, which breaks imports in ways that only surface at runtime.
// Sanitize removes PYTHONPATH unconditionally and applies caller overrides on
// top of the inherited snapshot.
package procenv
