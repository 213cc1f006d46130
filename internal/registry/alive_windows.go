//go:build windows

package registry

import "golang.org/x/sys/windows"

// processAlive reports whether a process with the given pid exists.
// OpenProcess with query-limited rights succeeds for any live process;
// a still-active exit code distinguishes live processes from zombies
// whose handle tables have not been torn down yet.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return false
	}
	defer windows.CloseHandle(h) //nolint:errcheck // best-effort handle cleanup

	var code uint32
	if err := windows.GetExitCodeProcess(h, &code); err != nil {
		return false
	}
	return code == windows.STILL_ACTIVE
}
