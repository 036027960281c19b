//go:build linux

// File: fiber/thread_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux thread naming and kernel thread id, via golang.org/x/sys/unix.

package fiber

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

const maxThreadNameLen = 15 // TASK_COMM_LEN - 1

// setThreadName truncates to 15 bytes and sets the calling thread's
// kernel-visible name, matching spec.md §4.2.
func setThreadName(name string) {
	if len(name) > maxThreadNameLen {
		name = name[:maxThreadNameLen]
	}
	_ = unix.Prctl(unix.PR_SET_NAME, uintptr(unsafe.Pointer(strPtrByte(name))), 0, 0, 0)
}

// strPtrByte returns a pointer to the first byte of a NUL-terminated
// copy of s, suitable for Prctl's PR_SET_NAME argument.
func strPtrByte(s string) *byte {
	b := append([]byte(s), 0)
	return &b[0]
}

// threadID returns the kernel thread id (what shows up as the LWP
// column in ps -eLf), distinct from the Go-level goroutine id.
func threadID() int {
	return unix.Gettid()
}
