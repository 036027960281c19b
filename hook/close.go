// File: hook/close.go
// Author: momentics <momentics@gmail.com>

package hook

import (
	"golang.org/x/sys/unix"
)

// Close is the hooked close(2): any fiber parked waiting on this fd's
// readiness is fired before the fd is actually closed, so it observes
// an error instead of parking forever on a descriptor that no longer
// exists.
func Close(fd int) error {
	if mgr := manager(); mgr != nil {
		if ctx := mgr.FdManager().Get(fd, false); ctx != nil {
			ctx.MarkClosed()
			mgr.CancelAll(fd)
		}
		mgr.FdManager().Del(fd)
	}
	return unix.Close(fd)
}
