//go:build windows

package archive

import "path/filepath"

// toOSPath converts a destination path to the form handed to the OS. On
// Windows that is the absolute extended-length form, applied immediately
// before each filesystem operation so the rest of the extraction logic works
// with ordinary paths.
func toOSPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return extendedLengthPath(abs), nil
}
