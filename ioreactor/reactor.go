// File: ioreactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// netReactor is the platform seam for the kernel readiness multiplexer.
// reactor_linux.go implements it over epoll; reactor_stub.go reports
// ErrUnsupported everywhere else, matching the teacher's pattern of a
// platform-neutral interface (reactor/reactor.go) with per-OS backends.

package ioreactor

import "github.com/momentics/hioload-fiber/api"

// readyEvent is one fd's readiness report from a single wait call.
type readyEvent struct {
	fd          int
	mask        api.EventKind
	errorHangup bool
}

// netReactor multiplexes readiness across registered fds plus a
// self-pipe used to interrupt a blocked wait.
type netReactor interface {
	registerFD(fd int, mask api.EventKind) error
	modifyFD(fd int, mask api.EventKind) error
	unregisterFD(fd int) error
	wait(events []readyEvent, timeoutMs int) (int, error)
	tickleFD() int
	tickleWrite() error
	drainTickle()
	close() error
}

// ErrUnsupported is returned by newReactor on platforms without a
// reactor backend.
var ErrUnsupported = api.NewError(api.ErrCodeInternal, "ioreactor: no reactor backend on this platform")
