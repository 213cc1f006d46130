package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/glacierworks/workerenv/internal/sentinel"
)

// ErrUnsafePath is returned when a zip entry would escape the destination
// root (path traversal via ".." or an absolute entry name).
const ErrUnsafePath = sentinel.Error("archive entry escapes destination")

// ExtractZip extracts the zip archive at archivePath into destDir, creating
// destDir if needed. Directory structure, file contents, and (on Unix) file
// modes are preserved. Entries that would resolve outside destDir are
// rejected with ErrUnsafePath. The context is checked between entries so
// large extractions can be canceled.
func ExtractZip(ctx context.Context, archivePath, destDir string) (retErr error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", archivePath, err)
	}
	defer func() {
		if closeErr := r.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("close archive: %w", closeErr)
		}
	}()

	if err := mkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create destination %s: %w", destDir, err)
	}

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("extract %s: %w", archivePath, context.Cause(ctx))
		}
		if err := extractEntry(f, destDir); err != nil {
			return fmt.Errorf("extract %s from %s: %w", f.Name, archivePath, err)
		}
	}
	return nil
}

// entryPath resolves a zip entry name against the destination root and
// rejects names that escape it. Zip names use forward slashes regardless of
// platform.
func entryPath(destDir, name string) (string, error) {
	if strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return filepath.Join(destDir, cleaned), nil
}

// extractEntry writes a single archive entry under destDir.
func extractEntry(f *zip.File, destDir string) error {
	target, err := entryPath(destDir, f.Name)
	if err != nil {
		return err
	}

	if f.FileInfo().IsDir() {
		return mkdirAll(target, 0o755)
	}

	if err := mkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("open entry: %w", err)
	}
	defer src.Close() //nolint:errcheck // read-only stream; write errors surface via io.Copy

	mode := f.Mode().Perm()
	if mode == 0 {
		// Archives built by tools that do not record permissions yield
		// zero-mode entries; fall back to a usable default.
		mode = 0o644
	}

	dst, err := createFile(target, mode)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil { //nolint:gosec // G110: payload archives come from trusted bundles
		_ = dst.Close()
		_ = os.Remove(target)
		return fmt.Errorf("write contents: %w", err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	return nil
}

// mkdirAll is os.MkdirAll with the long-path rewrite applied.
func mkdirAll(path string, mode os.FileMode) error {
	osPath, err := toOSPath(path)
	if err != nil {
		return err
	}
	return os.MkdirAll(osPath, mode)
}

// createFile opens a file for writing with the long-path rewrite applied.
func createFile(path string, mode os.FileMode) (*os.File, error) {
	osPath, err := toOSPath(path)
	if err != nil {
		return nil, err
	}
	return os.OpenFile(osPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode) //nolint:gosec // G304: paths are validated against the destination root
}
