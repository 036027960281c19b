// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral API for CPU affinity. Platform-specific implementations are located
// in separate files (affinity_linux.go, affinity_windows.go, etc.) guarded by build tags.

package affinity

// PinCurrentThread binds the calling OS thread to cpuID. Callers must
// hold runtime.LockOSThread for the effect to outlive the call; this is
// the case for every worker thread spawned by fiber.NewThread.
func PinCurrentThread(cpuID int) error {
	return setAffinityPlatform(cpuID)
}
