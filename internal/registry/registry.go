package registry

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/glacierworks/workerenv/internal/fileutil"

	// Register the pure-Go SQLite driver (no CGO required).
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS launches (
	pid          INTEGER PRIMARY KEY,
	started_unix INTEGER NOT NULL,
	data_dir     TEXT NOT NULL
)`

// Registry is a SQLite-backed record of live worker launches. It is safe
// for use from multiple processes: the database is opened in WAL mode with
// a generous busy timeout, and every row is keyed by the supervising
// process's PID.
type Registry struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (creating if necessary) the launch registry at dbPath.
// A nil logger falls back to slog.Default.
func Open(ctx context.Context, dbPath string, log *slog.Logger) (*Registry, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("registry path must not be empty")
	}
	if log == nil {
		log = slog.Default()
	}

	// sql.Open does not create missing parent directories; PurgeLaunches
	// may open the registry before the base data dir exists.
	if err := fileutil.EnsureDirForFile(dbPath); err != nil {
		return nil, fmt.Errorf("prepare registry dir: %w", err)
	}

	// WAL with a long busy timeout handles concurrent host processes
	// touching the registry at startup. NORMAL synchronous is acceptable:
	// losing a row in a crash only means a purge happens one run later.
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(30000)&_pragma=synchronous(NORMAL)",
		dbPath,
	)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open registry %s: %w", dbPath, err)
	}

	// Single connection; registry traffic is a handful of statements per
	// launch, not a workload that benefits from a pool.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create registry schema: %w", err)
	}

	return &Registry{db: db, log: log}, nil
}

// Record inserts or replaces the launch row for pid.
func (r *Registry) Record(ctx context.Context, pid int, dataDir string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO launches (pid, started_unix, data_dir) VALUES (?, ?, ?)`,
		pid, time.Now().Unix(), dataDir,
	)
	if err != nil {
		return fmt.Errorf("record launch pid=%d: %w", pid, err)
	}
	return nil
}

// Delete removes the launch row for pid. Deleting a pid that was never
// recorded is not an error.
func (r *Registry) Delete(ctx context.Context, pid int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM launches WHERE pid = ?`, pid); err != nil {
		return fmt.Errorf("delete launch pid=%d: %w", pid, err)
	}
	return nil
}

// PurgeStale removes rows whose supervising process no longer exists,
// deleting each orphaned data directory from disk. It returns the number
// of stale launches purged. Rows belonging to live processes are left
// untouched. Failure to remove a single data directory is logged and does
// not abort the sweep; the row is kept so a later run retries.
func (r *Registry) PurgeStale(ctx context.Context) (int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT pid, data_dir FROM launches`)
	if err != nil {
		return 0, fmt.Errorf("query launches: %w", err)
	}
	defer rows.Close() //nolint:errcheck // rows.Err() below catches read errors; Close error is redundant

	type launch struct {
		pid     int
		dataDir string
	}
	var stale []launch
	for rows.Next() {
		var l launch
		if err := rows.Scan(&l.pid, &l.dataDir); err != nil {
			return 0, fmt.Errorf("scan launch row: %w", err)
		}
		if !processAlive(l.pid) {
			stale = append(stale, l)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate launch rows: %w", err)
	}

	purged := 0
	for _, l := range stale {
		if l.dataDir != "" {
			if err := os.RemoveAll(l.dataDir); err != nil {
				r.log.Warn("purge: failed to remove stale data dir", "pid", l.pid, "data_dir", l.dataDir, "error", err)
				continue
			}
		}
		if _, err := r.db.ExecContext(ctx, `DELETE FROM launches WHERE pid = ?`, l.pid); err != nil {
			return purged, fmt.Errorf("delete stale launch pid=%d: %w", l.pid, err)
		}
		r.log.Debug("purge: removed stale launch", "pid", l.pid, "data_dir", l.dataDir)
		purged++
	}

	if purged > 0 {
		r.log.Info("purged stale launches", "count", purged)
	}
	return purged, nil
}

// Close closes the underlying database.
func (r *Registry) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close registry: %w", err)
	}
	return nil
}
