package archive

import "strings"

// extendedLengthPath rewrites an absolute Windows path to extended-length
// form, which the Win32 API accepts beyond the 260-character MAX_PATH limit.
// UNC paths (\\server\share\...) become \\?\UNC\server\share\...; drive
// paths become \\?\C:\.... Paths already in extended-length form are
// returned unchanged.
//
// The rewrite is pure string manipulation so it can be exercised on any
// platform; toOSPath decides whether to apply it.
func extendedLengthPath(abs string) string {
	if strings.HasPrefix(abs, `\\?\`) {
		return abs
	}
	if strings.HasPrefix(abs, `\\`) {
		return `\\?\UNC\` + abs[2:]
	}
	return `\\?\` + abs
}
