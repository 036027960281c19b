// File: hook/connect.go
// Author: momentics <momentics@gmail.com>

package hook

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-fiber/api"
)

// Connect is the hooked connect(2): a nonblocking connect that returns
// EINPROGRESS is completed by waiting for the fd to become writable,
// then checking SO_ERROR, per spec §4.7's "connect" hook.
func Connect(fd int, sa unix.Sockaddr, timeout time.Duration) error {
	mgr := manager()
	if !Enabled() || mgr == nil {
		return unix.Connect(fd, sa)
	}

	ctx := mgr.FdManager().Get(fd, false)
	if ctx == nil || !ctx.IsSocket() || ctx.UserNonblock() {
		return unix.Connect(fd, sa)
	}

	err := unix.Connect(fd, sa)
	if err == nil {
		return nil
	}
	if err != unix.EINPROGRESS {
		return err
	}

	timedOut, waitErr := waitReadiness(mgr, fd, api.EventWrite, timeout)
	if waitErr != nil {
		return waitErr
	}
	if timedOut {
		return unix.ETIMEDOUT
	}

	soErr, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return err
	}
	if soErr != 0 {
		return unix.Errno(soErr)
	}
	return nil
}
