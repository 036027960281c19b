//go:build !linux

// File: fiber/thread_stub.go
// Author: momentics <momentics@gmail.com>
//
// Non-Linux fallback: thread naming and kernel tid are not available
// through a portable syscall, so they are stubbed.

package fiber

import "os"

func setThreadName(name string) {
	// best effort only; no portable equivalent of prctl(PR_SET_NAME)
	_ = name
}

func threadID() int {
	return os.Getpid()
}
