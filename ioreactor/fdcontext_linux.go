//go:build linux
// +build linux

// File: ioreactor/fdcontext_linux.go
// Author: momentics <momentics@gmail.com>

package ioreactor

import "golang.org/x/sys/unix"

// initPlatform discovers socket-ness via fstat and, for sockets, ensures
// the kernel-visible O_NONBLOCK bit is set, remembering the fact as
// sysNonblock while leaving userNonblock false, per spec §4.6's "init".
func (c *FdContext) initPlatform() {
	var st unix.Stat_t
	if err := unix.Fstat(c.fd, &st); err != nil {
		return
	}
	if st.Mode&unix.S_IFMT != unix.S_IFSOCK {
		return
	}
	c.isSocket = true

	flags, err := unix.FcntlInt(uintptr(c.fd), unix.F_GETFL, 0)
	if err != nil {
		return
	}
	if flags&unix.O_NONBLOCK != 0 {
		c.sysNonblock = true
		return
	}
	if _, err := unix.FcntlInt(uintptr(c.fd), unix.F_SETFL, flags|unix.O_NONBLOCK); err == nil {
		c.sysNonblock = true
	}
}
