//go:build !windows

package archive

// toOSPath is the identity outside Windows; no path length limit applies.
func toOSPath(path string) (string, error) {
	return path, nil
}
