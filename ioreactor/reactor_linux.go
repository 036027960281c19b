//go:build linux
// +build linux

// File: ioreactor/reactor_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux epoll(7) backend, grounded on the teacher's reactor/epoll_reactor.go
// and reactor/reactor_linux.go, adapted to the one-shot edge-triggered,
// modify-on-partial-clear protocol IOManager needs.

package ioreactor

import (
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-fiber/api"
)

type epollReactor struct {
	epfd             int
	tickleR, tickleW int
}

func newReactor() (netReactor, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}

	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		_ = unix.Close(epfd)
		return nil, err
	}

	r := &epollReactor{epfd: epfd, tickleR: fds[0], tickleW: fds[1]}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, r.tickleR, &unix.EpollEvent{
		Events: unix.EPOLLIN,
		Fd:     int32(r.tickleR),
	}); err != nil {
		_ = r.close()
		return nil, err
	}
	return r, nil
}

func epollBitsForMask(mask api.EventKind) uint32 {
	var bits uint32 = unix.EPOLLET
	if mask&api.EventRead != 0 {
		bits |= unix.EPOLLIN
	}
	if mask&api.EventWrite != 0 {
		bits |= unix.EPOLLOUT
	}
	return bits
}

func (r *epollReactor) registerFD(fd int, mask api.EventKind) error {
	ev := unix.EpollEvent{Events: epollBitsForMask(mask), Fd: int32(fd)}
	return unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, fd, &ev)
}

func (r *epollReactor) modifyFD(fd int, mask api.EventKind) error {
	ev := unix.EpollEvent{Events: epollBitsForMask(mask), Fd: int32(fd)}
	return unix.EpollCtl(r.epfd, unix.EPOLL_CTL_MOD, fd, &ev)
}

func (r *epollReactor) unregisterFD(fd int) error {
	return unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

func (r *epollReactor) wait(out []readyEvent, timeoutMs int) (int, error) {
	raw := make([]unix.EpollEvent, len(out))
	n, err := unix.EpollWait(r.epfd, raw, timeoutMs)
	if err != nil {
		return 0, err
	}
	for i := 0; i < n; i++ {
		var mask api.EventKind
		if raw[i].Events&unix.EPOLLIN != 0 {
			mask |= api.EventRead
		}
		if raw[i].Events&unix.EPOLLOUT != 0 {
			mask |= api.EventWrite
		}
		out[i] = readyEvent{
			fd:          int(raw[i].Fd),
			mask:        mask,
			errorHangup: raw[i].Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0,
		}
	}
	return n, nil
}

func (r *epollReactor) tickleFD() int { return r.tickleR }

func (r *epollReactor) tickleWrite() error {
	_, err := unix.Write(r.tickleW, []byte{1})
	return err
}

func (r *epollReactor) drainTickle() {
	buf := make([]byte, 256)
	for {
		n, err := unix.Read(r.tickleR, buf)
		if n <= 0 || err != nil {
			return
		}
	}
}

func (r *epollReactor) close() error {
	_ = unix.Close(r.tickleR)
	_ = unix.Close(r.tickleW)
	return unix.Close(r.epfd)
}

// isEINTR reports whether err is the retryable "interrupted by signal"
// errno, per spec §4.5 idle step 3's "on interrupt, retry".
func isEINTR(err error) bool {
	return err == unix.EINTR
}
