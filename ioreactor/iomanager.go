// File: ioreactor/iomanager.go
// Author: momentics <momentics@gmail.com>

package ioreactor

import (
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-fiber/api"
	"github.com/momentics/hioload-fiber/fiber"
	"github.com/momentics/hioload-fiber/scheduler"
	"github.com/momentics/hioload-fiber/timer"
)

// IOManager is the I/O Manager: a Scheduler and a Timer Manager fronted
// by a one-shot, edge-triggered readiness multiplexer, per
// original_source/hook/ioscheduler.cpp.
type IOManager struct {
	*scheduler.Scheduler
	*timer.Manager

	reactor   netReactor
	fdManager *FdManager

	maxEvents   int
	maxIdlePoll time.Duration

	pendingEventCount atomic.Int64
}

// NewIOManager constructs an IOManager with threads workers, per the
// same construction contract as scheduler.New.
func NewIOManager(threads int, opts ...Option) (*IOManager, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	r, err := newReactor()
	if err != nil {
		return nil, err
	}

	io := &IOManager{
		reactor:     r,
		fdManager:   NewFdManager(),
		maxEvents:   cfg.maxEvents,
		maxIdlePoll: cfg.maxIdlePoll,
	}

	sched, err := scheduler.New(threads, cfg.schedulerOpts...)
	if err != nil {
		_ = r.close()
		return nil, err
	}
	io.Scheduler = sched
	io.Manager = timer.NewManager(io.onTimerInsertedAtFront)
	io.Scheduler.SetHooks(io)

	return io, nil
}

// FdManager exposes the fd table, used by the hook package to look up
// per-fd state alongside registering readiness.
func (io *IOManager) FdManager() *FdManager { return io.fdManager }

// PendingEventCount returns the number of currently registered,
// not-yet-fired readiness events.
func (io *IOManager) PendingEventCount() int64 { return io.pendingEventCount.Load() }

// AddEvent registers event on fd, associating it with cb if non-nil or
// else with the currently running fiber (which must be Running). Fails
// with api.ErrEventRegistered if the direction is already registered.
func (io *IOManager) AddEvent(fd int, event api.EventKind, cb func()) error {
	ctx := io.fdManager.Get(fd, true)

	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	if ctx.events&event != 0 {
		return api.ErrEventRegistered
	}

	newMask := ctx.events | event
	var err error
	if ctx.events == 0 {
		err = io.reactor.registerFD(fd, newMask)
	} else {
		err = io.reactor.modifyFD(fd, newMask)
	}
	if err != nil {
		return err
	}

	ctx.events = newMask
	io.pendingEventCount.Add(1)

	ectx := ctx.eventCtx(event)
	ectx.scheduler = io.Scheduler
	if cb != nil {
		ectx.cb = cb
	} else {
		ectx.fiber = fiber.Current()
	}
	return nil
}

// DelEvent clears event on fd without firing its callback.
func (io *IOManager) DelEvent(fd int, event api.EventKind) bool {
	ctx := io.fdManager.Get(fd, false)
	if ctx == nil {
		return false
	}

	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	if ctx.events&event == 0 {
		return false
	}
	remaining := ctx.events &^ event
	if !io.reapplyMask(fd, remaining) {
		return false
	}
	ctx.events = remaining
	io.pendingEventCount.Add(-1)
	ctx.resetEventContext(ctx.eventCtx(event))
	return true
}

// CancelEvent clears event on fd and fires its callback, so a waiting
// fiber is never left parked forever.
func (io *IOManager) CancelEvent(fd int, event api.EventKind) bool {
	ctx := io.fdManager.Get(fd, false)
	if ctx == nil {
		return false
	}

	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	if ctx.events&event == 0 {
		return false
	}
	remaining := ctx.events &^ event
	if !io.reapplyMask(fd, remaining) {
		return false
	}
	ctx.events = remaining
	ctx.fireLocked(event)
	io.pendingEventCount.Add(-1)
	return true
}

// CancelAll cancels every registered event on fd, firing both
// callbacks if both were registered, and drops the FdContext.
func (io *IOManager) CancelAll(fd int) bool {
	ctx := io.fdManager.Get(fd, false)
	if ctx == nil {
		return false
	}

	ctx.mu.Lock()
	if ctx.events != 0 {
		_ = io.reactor.unregisterFD(fd)
	}
	if ctx.events&api.EventRead != 0 {
		ctx.fireLocked(api.EventRead)
		io.pendingEventCount.Add(-1)
	}
	if ctx.events&api.EventWrite != 0 {
		ctx.fireLocked(api.EventWrite)
		io.pendingEventCount.Add(-1)
	}
	ctx.events = 0
	ctx.mu.Unlock()

	io.fdManager.Del(fd)
	return true
}

// reapplyMask issues the modify-or-unregister epoll_ctl call implied by
// an fd's new registered mask. Caller holds ctx.mu.
func (io *IOManager) reapplyMask(fd int, remaining api.EventKind) bool {
	var err error
	if remaining == 0 {
		err = io.reactor.unregisterFD(fd)
	} else {
		err = io.reactor.modifyFD(fd, remaining)
	}
	return err == nil
}

// Tickle wakes an idle worker by writing to the self-pipe, but only if
// one is actually idle, matching spec §4.5's "if any worker is idle".
func (io *IOManager) Tickle() {
	if io.Scheduler.IdleCount() == 0 {
		return
	}
	_ = io.reactor.tickleWrite()
}

// Stopping overrides the base Scheduler check, additionally requiring
// no pending I/O events and no pending timers.
func (io *IOManager) Stopping() bool {
	return io.Scheduler.Stopping() &&
		io.pendingEventCount.Load() == 0 &&
		io.Manager.NextTimeoutMs() == ^uint64(0)
}

// Idle is the reactor loop: wait on the multiplexer, drain expired
// timers into the scheduler, dispatch ready fd events, then yield so the
// worker's run loop can pick up what was just scheduled.
func (io *IOManager) Idle(self *fiber.Fiber) {
	events := make([]readyEvent, io.maxEvents)

	for {
		if io.Stopping() {
			return
		}

		n, err := io.reactor.wait(events, io.nextPollTimeoutMs())
		if err != nil {
			if isEINTR(err) {
				continue
			}
			time.Sleep(time.Millisecond)
			continue
		}

		for _, cb := range io.Manager.ListExpired() {
			io.Scheduler.ScheduleFunc(cb, scheduler.AnyThread)
		}

		for i := 0; i < n; i++ {
			ev := events[i]
			if ev.fd == io.reactor.tickleFD() {
				io.reactor.drainTickle()
				continue
			}
			io.handleReadyFD(ev)
		}

		self.Yield()
	}
}

// nextPollTimeoutMs is min(next_timer_ms, maxIdlePoll), per spec §4.5
// idle step 2.
func (io *IOManager) nextPollTimeoutMs() int {
	capMs := uint64(io.maxIdlePoll / time.Millisecond)
	ms := io.Manager.NextTimeoutMs()
	if ms > capMs {
		ms = capMs
	}
	return int(ms)
}

func (io *IOManager) handleReadyFD(ev readyEvent) {
	ctx := io.fdManager.Get(ev.fd, false)
	if ctx == nil {
		return
	}

	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	mask := ev.mask
	if ev.errorHangup {
		mask |= api.EventRead | api.EventWrite
	}

	real := mask & ctx.events
	if real == 0 {
		return
	}

	remaining := ctx.events &^ real
	io.reapplyMask(ev.fd, remaining)
	ctx.events = remaining

	if real&api.EventRead != 0 {
		ctx.fireLocked(api.EventRead)
		io.pendingEventCount.Add(-1)
	}
	if real&api.EventWrite != 0 {
		ctx.fireLocked(api.EventWrite)
		io.pendingEventCount.Add(-1)
	}
}

// onTimerInsertedAtFront is the Timer Manager hook fired when a new
// timer becomes the earliest deadline; it tickles idle so the reactor
// re-reads next_timer_ms instead of oversleeping in its current wait.
func (io *IOManager) onTimerInsertedAtFront() {
	io.Tickle()
}

// Close stops the manager and releases the reactor's kernel resources.
func (io *IOManager) Close() error {
	io.Scheduler.Stop()
	return io.reactor.close()
}
