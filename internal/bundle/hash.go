package bundle

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/glacierworks/workerenv/internal/sentinel"
)

// ErrNoArchives is returned when a bundle contains no archives.
const ErrNoArchives = sentinel.Error("no archives in bundle")

// computeSetHash computes a deterministic SHA256 hash over a set of archive
// files. Archives are sorted by base name so the hash is independent of
// argument order and of the directories the archives happen to live in.
// Both file names and contents contribute to the hash. Returns the first
// 16 hex characters (64 bits), which is collision-safe for the handful of
// bundles a host ever installs.
func computeSetHash(paths []string) (string, error) {
	if len(paths) == 0 {
		return "", ErrNoArchives
	}

	sorted := slices.Clone(paths)
	slices.SortFunc(sorted, func(a, b string) int {
		ab, bb := filepath.Base(a), filepath.Base(b)
		if ab < bb {
			return -1
		}
		if ab > bb {
			return 1
		}
		return 0
	})

	h := sha256.New()
	for _, p := range sorted {
		f, err := os.Open(p) //nolint:gosec // G304: archive paths come from configuration
		if err != nil {
			return "", fmt.Errorf("open %s: %w", p, err)
		}

		h.Write([]byte(filepath.Base(p) + "\x00")) // hash.Hash.Write never returns an error
		_, copyErr := io.Copy(h, f)
		closeErr := f.Close()
		if copyErr != nil {
			return "", fmt.Errorf("read %s: %w", p, copyErr)
		}
		if closeErr != nil {
			return "", fmt.Errorf("close %s: %w", p, closeErr)
		}
		h.Write([]byte{0}) // separator after content to prevent cross-file collisions
	}

	return hex.EncodeToString(h.Sum(nil))[:16], nil
}
