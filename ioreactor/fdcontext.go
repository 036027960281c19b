// File: ioreactor/fdcontext.go
// Author: momentics <momentics@gmail.com>

package ioreactor

import (
	"sync"
	"time"

	"github.com/momentics/hioload-fiber/api"
	"github.com/momentics/hioload-fiber/fiber"
	"github.com/momentics/hioload-fiber/scheduler"
)

// eventContext describes the waiter (fiber or callback) registered for
// one direction of one fd, per original_source/iomanager/ioscheduler.h's
// FdContext::EventContext.
type eventContext struct {
	scheduler *scheduler.Scheduler
	fiber     *fiber.Fiber
	cb        func()
}

// FdContext is the per-descriptor state: which events are registered and
// their waiters, plus the hook bookkeeping (socket-ness, nonblocking
// intent, per-direction timeouts) described in spec §4.6-4.7.
type FdContext struct {
	mu sync.Mutex

	fd     int
	events api.EventKind

	read  eventContext
	write eventContext

	isSocket     bool
	sysNonblock  bool
	userNonblock bool
	recvTimeout  time.Duration
	sendTimeout  time.Duration
	closed       bool
}

func newFdContext(fd int) *FdContext {
	c := &FdContext{fd: fd}
	c.initPlatform()
	return c
}

// FD returns the underlying file descriptor.
func (c *FdContext) FD() int { return c.fd }

func (c *FdContext) eventCtx(ev api.EventKind) *eventContext {
	switch ev {
	case api.EventRead:
		return &c.read
	case api.EventWrite:
		return &c.write
	default:
		panic("ioreactor: invalid event kind")
	}
}

func (c *FdContext) resetEventContext(ctx *eventContext) {
	ctx.scheduler = nil
	ctx.fiber = nil
	ctx.cb = nil
}

// fireLocked schedules ev's stored callable or fiber and clears its
// slot. The caller holds c.mu and has already updated c.events to
// reflect the event no longer being registered.
func (c *FdContext) fireLocked(ev api.EventKind) {
	ctx := c.eventCtx(ev)
	switch {
	case ctx.scheduler != nil && ctx.fiber != nil:
		ctx.scheduler.ScheduleFiber(ctx.fiber, scheduler.AnyThread)
	case ctx.scheduler != nil && ctx.cb != nil:
		ctx.scheduler.ScheduleFunc(ctx.cb, scheduler.AnyThread)
	}
	c.resetEventContext(ctx)
}

// IsSocket reports whether fstat identified this fd as a socket.
func (c *FdContext) IsSocket() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isSocket
}

// SysNonblock reports whether the kernel-visible O_NONBLOCK bit is set.
func (c *FdContext) SysNonblock() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sysNonblock
}

// UserNonblock reports the application's O_NONBLOCK intent, which may
// differ from SysNonblock when hooks force the kernel fd nonblocking
// behind the scenes.
func (c *FdContext) UserNonblock() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userNonblock
}

// SetUserNonblock records the application's O_NONBLOCK intent, per
// fcntl(F_SETFL)/ioctl(FIONBIO) hook handling.
func (c *FdContext) SetUserNonblock(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userNonblock = v
}

// Timeout returns the per-fd send or receive timeout recorded by the
// setsockopt hook; zero means no timeout.
func (c *FdContext) Timeout(kind api.TimeoutKind) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if kind == api.TimeoutSend {
		return c.sendTimeout
	}
	return c.recvTimeout
}

// SetTimeout records a per-fd send or receive timeout.
func (c *FdContext) SetTimeout(kind api.TimeoutKind, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if kind == api.TimeoutSend {
		c.sendTimeout = d
	} else {
		c.recvTimeout = d
	}
}

// MarkClosed flags the fd as closed; do_io's hook path fails fast on a
// closed fd instead of retrying.
func (c *FdContext) MarkClosed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Closed reports whether MarkClosed has been called.
func (c *FdContext) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
