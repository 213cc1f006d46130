//go:build windows

package proc

import (
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

// jobMu guards lazy creation of the process-wide job object so that
// concurrent first launches create exactly one job.
var jobMu sync.Mutex

// jobHandle is the process-wide job object every launched worker is assigned
// to. Zero until the first launch. The handle is intentionally never closed:
// closing it is precisely what triggers the kernel to kill all members, and
// that must only happen when the host process itself dies and the OS reclaims
// its handles.
var jobHandle windows.Handle

// ensureJob lazily creates the kill-on-close job object. Callers must hold
// jobMu.
func ensureJob() (windows.Handle, error) {
	if jobHandle != 0 {
		return jobHandle, nil
	}

	job, err := windows.CreateJobObject(nil, nil)
	if err != nil {
		return 0, fmt.Errorf("create job object: %w", err)
	}

	info := windows.JOBOBJECT_EXTENDED_LIMIT_INFORMATION{
		BasicLimitInformation: windows.JOBOBJECT_BASIC_LIMIT_INFORMATION{
			LimitFlags: windows.JOB_OBJECT_LIMIT_KILL_ON_JOB_CLOSE,
		},
	}
	if _, err := windows.SetInformationJobObject(
		job,
		windows.JobObjectExtendedLimitInformation,
		uintptr(unsafe.Pointer(&info)),
		uint32(unsafe.Sizeof(info)),
	); err != nil {
		_ = windows.CloseHandle(job)
		return 0, fmt.Errorf("set job object info: %w", err)
	}

	jobHandle = job
	return jobHandle, nil
}

// attachToJob assigns the process identified by pid to the process-wide
// kill-on-close job object, creating the job on first use. All failures are
// logged at Warn and swallowed: the process has already been spawned, and a
// worker running without job supervision is strictly better than no worker
// at all. The caller cannot meaningfully recover either way.
func attachToJob(pid int, log *slog.Logger) {
	jobMu.Lock()
	defer jobMu.Unlock()

	job, err := ensureJob()
	if err != nil {
		log.Warn("process supervision degraded: job object unavailable",
			"pid", pid, "error", err)
		return
	}

	proc, err := windows.OpenProcess(
		windows.PROCESS_SET_QUOTA|windows.PROCESS_TERMINATE,
		false,
		uint32(pid),
	)
	if err != nil {
		log.Warn("process supervision degraded: open process failed",
			"pid", pid, "error", err)
		return
	}
	defer windows.CloseHandle(proc)

	if err := windows.AssignProcessToJobObject(job, proc); err != nil {
		log.Warn("process supervision degraded: job assignment failed",
			"pid", pid, "error", err)
	}
}
