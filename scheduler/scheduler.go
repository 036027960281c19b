// File: scheduler/scheduler.go
// Author: momentics <momentics@gmail.com>

package scheduler

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-fiber/affinity"
	"github.com/momentics/hioload-fiber/api"
	"github.com/momentics/hioload-fiber/fiber"
)

// Scheduler is the work-queue dispatcher over a thread pool that
// executes fibers and callbacks, per original_source/scheduler/scheduler.cpp.
type Scheduler struct {
	mu sync.Mutex

	name        string
	useCaller   bool
	stackSize   int
	affinityCPU []int

	tasks  *queue.Queue
	pinned map[int][]Task

	threadCount  int
	threadIDs    []int
	rootThreadID int

	activeThreadCount atomic.Int32
	idleThreadCount   atomic.Int32
	stoppingFlag      atomic.Bool

	threads        []*fiber.Thread
	schedulerFiber *fiber.Fiber

	hooks Hooks

	startMu sync.Mutex
	started bool
}

// New constructs a Scheduler. threads must be >= 1. If WithUseCaller is
// set (the default), the constructing goroutine becomes one of the
// workers and a dispatch fiber bound to run is installed as this
// thread's scheduler fiber; Start then spawns threads-1 additional
// workers. Otherwise Start spawns all `threads` workers.
func New(threads int, opts ...Option) (*Scheduler, error) {
	if threads < 1 {
		return nil, api.ErrInvalidThreadSpec
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	s := &Scheduler{
		name:        cfg.name,
		useCaller:   cfg.useCaller,
		stackSize:   cfg.stackSize,
		affinityCPU: cfg.affinity,
		tasks:       queue.New(),
		pinned:      make(map[int][]Task),
	}
	s.hooks = s

	if cfg.useCaller {
		fiber.Current() // ensure this goroutine has a main fiber
		s.schedulerFiber = fiber.Create(s.run, cfg.stackSize, false)
		fiber.SetSchedulerFiber(s.schedulerFiber)
		s.rootThreadID = fiber.ThreadID()
		s.threadIDs = append(s.threadIDs, s.rootThreadID)
		threads--
	}
	s.threadCount = threads

	return s, nil
}

// SetHooks installs h as the receiver of tickle/stopping/idle calls in
// place of the Scheduler's own base implementations. ioreactor.IOManager
// calls this with itself during construction.
func (s *Scheduler) SetHooks(h Hooks) {
	s.hooks = h
}

// Name returns the scheduler's configured name.
func (s *Scheduler) Name() string { return s.name }

// UsesCaller reports whether the constructing goroutine participates as
// a worker.
func (s *Scheduler) UsesCaller() bool { return s.useCaller }

// ActiveCount returns the number of tasks currently being executed.
func (s *Scheduler) ActiveCount() int { return int(s.activeThreadCount.Load()) }

// IdleCount returns the number of workers currently parked in idle.
func (s *Scheduler) IdleCount() int { return int(s.idleThreadCount.Load()) }

// QueueLength returns the number of unpinned tasks waiting to run.
func (s *Scheduler) QueueLength() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.Length()
}

// Start spawns the remaining worker threads and returns immediately; it
// does not block on the caller-participation worker (see Stop, which
// drains it).
func (s *Scheduler) Start() error {
	s.startMu.Lock()
	defer s.startMu.Unlock()

	if s.stoppingFlag.Load() {
		return api.ErrSchedulerStopped
	}
	if s.started {
		return api.ErrAlreadyStarted
	}
	s.started = true

	s.threads = make([]*fiber.Thread, s.threadCount)
	for i := 0; i < s.threadCount; i++ {
		idx := i
		cpu := -1
		if idx < len(s.affinityCPU) {
			cpu = s.affinityCPU[idx]
		}
		th := fiber.NewThread(fmt.Sprintf("%s_%d", s.name, idx), func() {
			if cpu >= 0 {
				_ = affinity.PinCurrentThread(cpu)
			}
			s.run()
		})
		s.threads[idx] = th

		s.mu.Lock()
		s.threadIDs = append(s.threadIDs, th.Tid)
		s.mu.Unlock()
	}
	return nil
}

// Schedule enqueues a task, tickling a worker if the queue was empty.
// A task pinned to a specific thread (ThreadID != AnyThread) is only
// ever picked up by that worker's run loop.
func (s *Scheduler) Schedule(task Task) {
	if task.isEmpty() {
		return
	}

	s.mu.Lock()
	wasEmpty := s.tasks.Length() == 0 && len(s.pinned) == 0
	if task.ThreadID != AnyThread {
		s.pinned[task.ThreadID] = append(s.pinned[task.ThreadID], task)
	} else {
		s.tasks.Add(task)
	}
	s.mu.Unlock()

	if wasEmpty {
		s.hooks.Tickle()
	}
}

// ScheduleFiber is shorthand for Schedule with a fiber task.
func (s *Scheduler) ScheduleFiber(f *fiber.Fiber, threadID int) {
	s.Schedule(Task{Fiber: f, ThreadID: threadID})
}

// ScheduleFunc is shorthand for Schedule with a callback task.
func (s *Scheduler) ScheduleFunc(cb func(), threadID int) {
	s.Schedule(Task{Cb: cb, ThreadID: threadID})
}

// nextTask pops the first task available to threadID: one pinned to it,
// else the oldest unpinned task. skipped reports whether other runnable
// work remains for some other worker (a reason to Tickle).
func (s *Scheduler) nextTask(threadID int) (task Task, ok bool, skipped bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pending := s.pinned[threadID]; len(pending) > 0 {
		task = pending[0]
		if len(pending) == 1 {
			delete(s.pinned, threadID)
		} else {
			s.pinned[threadID] = pending[1:]
		}
		ok = true
	} else if s.tasks.Length() > 0 {
		task = s.tasks.Remove().(Task)
		ok = true
	}

	if ok {
		s.activeThreadCount.Add(1)
	}
	skipped = s.tasks.Length() > 0 || len(s.pinned) > 0
	return task, ok, skipped
}

// run is the per-worker dispatch loop. For spawned threads it executes
// directly on that thread's goroutine; for the caller-participation
// worker it is the body of the dispatch fiber installed by New.
func (s *Scheduler) run() {
	tid := fiber.ThreadID()

	var idleFiber *fiber.Fiber
	idleFiber = fiber.Create(func() { s.hooks.Idle(idleFiber) }, s.stackSize, true)

	for {
		task, ok, skipped := s.nextTask(tid)
		if skipped {
			s.hooks.Tickle()
		}

		if ok {
			switch {
			case task.Fiber != nil:
				if task.Fiber.State() != fiber.Terminated {
					_ = task.Fiber.Resume()
				}
			case task.Cb != nil:
				cbFiber := fiber.Create(task.Cb, s.stackSize, false)
				_ = cbFiber.Resume()
			}
			s.activeThreadCount.Add(-1)
			continue
		}

		if idleFiber.State() == fiber.Terminated {
			return
		}
		s.idleThreadCount.Add(1)
		_ = idleFiber.Resume()
		s.idleThreadCount.Add(-1)
	}
}

// Stop signals a drain, wakes every worker (and the dispatch fiber, if
// any) and joins the spawned worker threads. Idempotent.
func (s *Scheduler) Stop() {
	if s.hooks.Stopping() {
		return
	}
	s.stoppingFlag.Store(true)

	for i := 0; i < s.threadCount; i++ {
		s.hooks.Tickle()
	}

	if s.schedulerFiber != nil {
		s.hooks.Tickle()
		_ = s.schedulerFiber.Resume()
	}

	s.mu.Lock()
	threads := s.threads
	s.threads = nil
	s.mu.Unlock()

	for _, th := range threads {
		th.Join()
	}
}

// Tickle is the base no-op wake; overridden by Hooks implementations
// such as ioreactor.IOManager that have an actual wait primitive to
// interrupt.
func (s *Scheduler) Tickle() {}

// Stopping is the base quiescence check: stopping requested, queue
// drained, nothing active.
func (s *Scheduler) Stopping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stoppingFlag.Load() &&
		s.tasks.Length() == 0 &&
		len(s.pinned) == 0 &&
		s.activeThreadCount.Load() == 0
}

// Idle is the base idle fiber body: while not stopping, sleep briefly
// and yield, so a Scheduler not fronted by an I/O Manager still makes
// progress without spinning.
func (s *Scheduler) Idle(self *fiber.Fiber) {
	for !s.hooks.Stopping() {
		time.Sleep(time.Millisecond)
		self.Yield()
	}
}
