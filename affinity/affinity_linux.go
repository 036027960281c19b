//go:build linux
// +build linux

// File: affinity/affinity_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux CPU affinity via sched_setaffinity(2), pure Go through
// golang.org/x/sys/unix — no cgo, no libpthread dependency.

package affinity

import "golang.org/x/sys/unix"

// setAffinityPlatform sets the calling thread's affinity to cpuID. pid 0
// targets the calling thread per sched_setaffinity's own convention.
func setAffinityPlatform(cpuID int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpuID)
	return unix.SchedSetaffinity(0, &set)
}
