// File: hook/fdctl.go
// Author: momentics <momentics@gmail.com>

package hook

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-fiber/api"
)

// Fcntl is the hooked fcntl(2). F_SETFL/F_GETFL on O_NONBLOCK are
// intercepted to record the caller's own nonblocking intent separately
// from the kernel-visible O_NONBLOCK bit, which F_SETFL always leaves
// set so doIO sees EAGAIN, per spec §4.7's "fcntl" hook: F_GETFL
// reports the caller's intent, while hooked retries still happen
// underneath.
func Fcntl(fd, cmd, arg int) (int, error) {
	ctx := fdContextOrNil(fd)
	if ctx == nil || (cmd != unix.F_SETFL && cmd != unix.F_GETFL) {
		return unix.FcntlInt(uintptr(fd), cmd, arg)
	}

	if cmd == unix.F_SETFL {
		ctx.SetUserNonblock(arg&unix.O_NONBLOCK != 0)
		return unix.FcntlInt(uintptr(fd), cmd, arg|unix.O_NONBLOCK)
	}

	ret, err := unix.FcntlInt(uintptr(fd), cmd, arg)
	if err != nil {
		return ret, err
	}
	if ctx.UserNonblock() {
		return ret | unix.O_NONBLOCK, nil
	}
	return ret &^ unix.O_NONBLOCK, nil
}

// fionbio is the Linux ioctl(2) request number for FIONBIO
// (asm-generic/ioctls.h); golang.org/x/sys/unix does not export it.
const fionbio = 0x5421

// Ioctl hooks FIONBIO the same way Fcntl hooks O_NONBLOCK; every other
// request forwards unmodified.
func Ioctl(fd int, req uint, nonblock bool) error {
	ctx := fdContextOrNil(fd)
	if ctx == nil || req != fionbio {
		var arg int
		if nonblock {
			arg = 1
		}
		return unix.IoctlSetInt(fd, req, arg)
	}
	ctx.SetUserNonblock(nonblock)
	return unix.IoctlSetInt(fd, fionbio, 1)
}

// SetsockoptTimeout hooks SO_RCVTIMEO/SO_SNDTIMEO: the timeout is
// recorded on the FdContext for doIO to honor and also installed on the
// real socket so a fallback path (hooks disabled, or a non-socket fd)
// still times out at the kernel level.
func SetsockoptTimeout(fd, level, opt int, d time.Duration) error {
	if ctx := fdContextOrNil(fd); ctx != nil {
		switch opt {
		case unix.SO_RCVTIMEO:
			ctx.SetTimeout(api.TimeoutReceive, d)
		case unix.SO_SNDTIMEO:
			ctx.SetTimeout(api.TimeoutSend, d)
		}
	}
	tv := unix.NsecToTimeval(d.Nanoseconds())
	return unix.SetsockoptTimeval(fd, level, opt, &tv)
}

func fdContextOrNil(fd int) interface {
	SetUserNonblock(bool)
	UserNonblock() bool
	SetTimeout(api.TimeoutKind, time.Duration)
} {
	mgr := manager()
	if mgr == nil {
		return nil
	}
	ctx := mgr.FdManager().Get(fd, false)
	if ctx == nil {
		return nil
	}
	return ctx
}
