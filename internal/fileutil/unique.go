package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// maxUniqueAttempts bounds the suffix search in UniquePath. Hitting it means
// thousands of numbered siblings already exist, which indicates a cleanup bug
// rather than normal operation.
const maxUniqueAttempts = 10000

// UniquePath returns path if nothing exists there, otherwise the first
// variant "name-N.ext" (N starting at 1) that does not exist. The returned
// path is not created or reserved; callers racing for the same name must
// handle creation errors themselves.
func UniquePath(path string) (string, error) {
	if _, err := os.Lstat(path); errors.Is(err, os.ErrNotExist) {
		return path, nil
	} else if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	for i := 1; i <= maxUniqueAttempts; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s-%d%s", stem, i, ext))
		if _, err := os.Lstat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		} else if err != nil {
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		}
	}
	return "", fmt.Errorf("find unused variant of %s: exhausted %d attempts", path, maxUniqueAttempts)
}
