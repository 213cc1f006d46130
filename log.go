package workerenv

import (
	"log/slog"

	"github.com/glacierworks/workerenv/internal/core"
)

// SetLogger replaces the package-level logger used by workerenv.
// This allows applications to integrate workerenv logging with their own
// logging infrastructure. The provided logger should already have any
// desired attributes; workerenv will not add additional attributes.
//
// If l is nil, the logger resets to the default: slog.Default() with
// "component" attribute, re-derived on the next use and then cached.
// Call SetLogger(nil) after slog.SetDefault() to pick up changes.
//
// Thread safety: SetLogger is safe to call concurrently with other
// workerenv operations. Both the custom logger and the cached default are
// stored as atomic pointers, so loads and stores are data-race-free. A
// concurrent log call during SetLogger always sees a valid *slog.Logger,
// though it may briefly use the previous logger until both atomic stores
// complete.
//
// Example:
//
//	workerenv.SetLogger(myLogger.With("component", "workerenv"))
func SetLogger(l *slog.Logger) {
	core.SetLogger(l)
}
