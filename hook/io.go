// File: hook/io.go
// Author: momentics <momentics@gmail.com>

package hook

import (
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-fiber/api"
	"github.com/momentics/hioload-fiber/fiber"
	"github.com/momentics/hioload-fiber/ioreactor"
	"github.com/momentics/hioload-fiber/timer"
)

// doIO is the generic retry template behind every hooked blocking I/O
// call, per spec §4.7's do_io algorithm: forward verbatim unless hooks
// are enabled and the fd is a hooked socket the caller has not put in
// nonblocking mode; otherwise
// retry op until it succeeds or a per-fd timeout expires, suspending the
// calling fiber on EAGAIN instead of spinning.
func doIO(fd int, event api.EventKind, timeoutKind api.TimeoutKind, op func() (int, error)) (int, error) {
	mgr := manager()
	if !Enabled() || mgr == nil {
		return op()
	}

	ctx := mgr.FdManager().Get(fd, false)
	if ctx == nil {
		return op()
	}
	if ctx.Closed() {
		return -1, unix.EBADF
	}
	if !ctx.IsSocket() || ctx.UserNonblock() {
		return op()
	}

	timeout := ctx.Timeout(timeoutKind)

	for {
		n, err := op()
		if err == unix.EINTR {
			continue
		}
		if err != unix.EAGAIN && err != unix.EWOULDBLOCK {
			return n, err
		}

		timedOut, waitErr := waitReadiness(mgr, fd, event, timeout)
		if waitErr != nil {
			return -1, waitErr
		}
		if timedOut {
			return -1, unix.ETIMEDOUT
		}
	}
}

// waitReadiness registers event on fd and yields the calling fiber until
// either it fires or, if timeout > 0, a condition timer expires first.
// The condition timer is guarded by a witness released as soon as
// readiness (or cancellation) resumes this fiber, so a timer that loses
// the race becomes a no-op rather than firing into an already-resumed
// fiber.
func waitReadiness(mgr *ioreactor.IOManager, fd int, event api.EventKind, timeout time.Duration) (timedOut bool, err error) {
	var witness *timer.Witness
	var cancelled atomic.Bool
	var deadline *timer.Timer

	if timeout > 0 {
		witness = timer.NewWitness()
		deadline = mgr.AddConditionTimer(uint64(timeout/time.Millisecond), func() {
			cancelled.Store(true)
			mgr.CancelEvent(fd, event)
		}, witness, false)
	}

	if addErr := mgr.AddEvent(fd, event, nil); addErr != nil {
		if deadline != nil {
			deadline.Cancel()
			witness.Release()
		}
		return false, addErr
	}

	fiber.Current().Yield()

	if deadline != nil {
		deadline.Cancel()
		witness.Release()
	}
	return cancelled.Load(), nil
}

// Socket forwards to socket(2) then registers the new fd in the active
// manager's fd table, per spec §4.7's "socket" hook.
func Socket(domain, typ, proto int) (int, error) {
	fd, err := unix.Socket(domain, typ, proto)
	if err != nil {
		return -1, err
	}
	if mgr := manager(); mgr != nil {
		mgr.FdManager().Get(fd, true)
	}
	return fd, nil
}

// Read is the hooked read(2).
func Read(fd int, buf []byte) (int, error) {
	return doIO(fd, api.EventRead, api.TimeoutReceive, func() (int, error) {
		return unix.Read(fd, buf)
	})
}

// Write is the hooked write(2).
func Write(fd int, buf []byte) (int, error) {
	return doIO(fd, api.EventWrite, api.TimeoutSend, func() (int, error) {
		return unix.Write(fd, buf)
	})
}

// Recv is the hooked recv(2) (via recvfrom with a discarded address).
func Recv(fd int, buf []byte, flags int) (int, error) {
	return doIO(fd, api.EventRead, api.TimeoutReceive, func() (int, error) {
		n, _, err := unix.Recvfrom(fd, buf, flags)
		return n, err
	})
}

// RecvFrom is the hooked recvfrom(2).
func RecvFrom(fd int, buf []byte, flags int) (int, unix.Sockaddr, error) {
	var from unix.Sockaddr
	n, err := doIO(fd, api.EventRead, api.TimeoutReceive, func() (int, error) {
		var recvErr error
		var nn int
		nn, from, recvErr = unix.Recvfrom(fd, buf, flags)
		return nn, recvErr
	})
	return n, from, err
}

// Send is the hooked send(2).
func Send(fd int, buf []byte, flags int) (int, error) {
	return doIO(fd, api.EventWrite, api.TimeoutSend, func() (int, error) {
		if err := unix.Send(fd, buf, flags); err != nil {
			return 0, err
		}
		return len(buf), nil
	})
}

// SendTo is the hooked sendto(2).
func SendTo(fd int, buf []byte, flags int, to unix.Sockaddr) (int, error) {
	return doIO(fd, api.EventWrite, api.TimeoutSend, func() (int, error) {
		if err := unix.Sendto(fd, buf, flags, to); err != nil {
			return 0, err
		}
		return len(buf), nil
	})
}

// Accept is the hooked accept(2); the accepted fd is registered in the
// active manager's fd table exactly as Socket would.
func Accept(fd int) (int, unix.Sockaddr, error) {
	var newFd int
	var sa unix.Sockaddr
	_, err := doIO(fd, api.EventRead, api.TimeoutReceive, func() (int, error) {
		var acceptErr error
		newFd, sa, acceptErr = unix.Accept(fd)
		return newFd, acceptErr
	})
	if err != nil {
		return -1, nil, err
	}
	if mgr := manager(); mgr != nil {
		mgr.FdManager().Get(newFd, true)
	}
	return newFd, sa, nil
}
