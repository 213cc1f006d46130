package bundle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/glacierworks/workerenv/internal/archive"
	"github.com/glacierworks/workerenv/internal/fileutil"
)

// completeMarker is the file written into an install directory after all
// archives have been extracted. Its presence is the commit point: a
// directory without it is treated as a failed partial install and
// re-extracted under the lock.
const completeMarker = ".complete"

// Config holds configuration for bundle installation.
type Config struct {
	Archives    []string      // Zip archives making up the bundle
	InstallRoot string        // Directory under which install dirs are created
	Timeout     time.Duration // Overall timeout for installation
	Logger      *slog.Logger  // Logger for operational messages (nil uses slog.Default)
}

// logger returns the configured logger or falls back to the default.
func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// validate checks that all required Config fields are set and returns an error
// describing the first missing or invalid field.
func (c Config) validate() error {
	if len(c.Archives) == 0 {
		return ErrNoArchives
	}
	if c.InstallRoot == "" {
		return errors.New("install root must not be empty")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	return nil
}

// Result contains the outcome of bundle installation.
type Result struct {
	Dir     string // Path to the installed bundle directory
	Hash    string // Hash of the archive set
	Created bool   // true if the bundle was extracted, false if an existing install was used
}

// EnsureInstall checks for an existing install of the bundle or creates one.
// If an install with matching content hash exists (marker present), it
// returns immediately. Otherwise it acquires a file lock, re-checks, and
// extracts all archives into a hash-keyed directory. Concurrent processes
// sharing an install root converge on a single install.
func EnsureInstall(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	hash, err := computeSetHash(cfg.Archives)
	if err != nil {
		return nil, fmt.Errorf("compute bundle hash: %w", err)
	}

	installDir := filepath.Join(cfg.InstallRoot, "bundle-"+hash)
	markerPath := filepath.Join(installDir, completeMarker)

	logger := cfg.logger()

	// Fast path: a completed install already exists.
	if installed, err := markerExists(markerPath); err != nil {
		return nil, err
	} else if installed {
		logger.Info("using existing bundle install", "dir", installDir, "hash", hash)
		return &Result{Dir: installDir, Hash: hash, Created: false}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := fileutil.EnsureDir(cfg.InstallRoot); err != nil {
		return nil, fmt.Errorf("prepare install root: %w", err)
	}

	// Acquire file lock to prevent concurrent extraction into the same dir.
	lockPath := installDir + ".lock"
	logger.Debug("acquiring install lock", "lock_path", lockPath)
	lock, err := acquireFileLock(ctx, lockPath)
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	defer releaseFileLock(logger, lock)

	// Re-check (another process might have installed while we waited for the lock).
	if installed, err := markerExists(markerPath); err != nil {
		return nil, err
	} else if installed {
		logger.Info("using existing bundle install (created while waiting)", "dir", installDir, "hash", hash)
		return &Result{Dir: installDir, Hash: hash, Created: false}, nil
	}

	logger.Info("installing bundle", "dir", installDir, "hash", hash, "archives", len(cfg.Archives))
	startTime := time.Now()
	if err := extractAll(ctx, cfg.Archives, installDir); err != nil {
		return nil, fmt.Errorf("install bundle: %w", err)
	}

	// The marker commits the install; everything before it is re-doable.
	if err := os.WriteFile(markerPath, []byte(hash+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("write install marker: %w", err)
	}

	logger.Info("bundle installed", "dir", installDir, "elapsed", time.Since(startTime).Round(time.Millisecond))
	return &Result{Dir: installDir, Hash: hash, Created: true}, nil
}

// markerExists reports whether the completion marker is present.
func markerExists(markerPath string) (bool, error) {
	if _, err := os.Stat(markerPath); err == nil {
		return true, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat install marker %s: %w", markerPath, err)
	}
	return false, nil
}

// extractAll extracts every archive into installDir in parallel. Archives in
// a bundle cover disjoint subtrees, so concurrent extraction into the same
// root is safe; the marker written afterwards is the only ordering point.
func extractAll(ctx context.Context, archives []string, installDir string) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, archivePath := range archives {
		g.Go(func() error {
			if err := archive.ExtractZip(gctx, archivePath, installDir); err != nil {
				return fmt.Errorf("extract %s: %w", filepath.Base(archivePath), err)
			}
			return nil
		})
	}
	return g.Wait()
}
