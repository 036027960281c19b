// File: fiber/fiber.go
// Author: momentics <momentics@gmail.com>
//
// The Fiber type: create-main, create, reset, resume, yield.

package fiber

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/momentics/hioload-fiber/api"
	"github.com/momentics/hioload-fiber/pool"
)

// State is a Fiber's position in the Ready/Running/Terminated state
// machine described in spec.md §3.
type State int32

const (
	Ready State = iota
	Running
	Terminated
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

var idCounter atomic.Uint64

// Fiber is a cooperatively scheduled execution context with its own
// (logical) stack. At most one Fiber per thread is ever Running; see
// doc.go for how the goroutine-and-channel handoff enforces that.
type Fiber struct {
	id              uint64
	stackSize       int
	stack           []byte
	runsInScheduler bool
	isMain          bool

	state atomic.Int32

	entryMu sync.Mutex
	entry   func()

	resumeCh chan struct{}
	yieldCh  chan struct{}

	started atomic.Bool
	panicky any
}

// ID returns the fiber's unique, monotonically assigned identifier.
func (f *Fiber) ID() uint64 { return f.id }

// StackSize reports the accounting size passed to Create, or 0 for a
// main fiber, which owns no stack.
func (f *Fiber) StackSize() int { return f.stackSize }

// RunsInScheduler reports the flag selecting this fiber's yield
// target, preserved for API fidelity with the reference design even
// though the Go port does not need it to route control transfer.
func (f *Fiber) RunsInScheduler() bool { return f.runsInScheduler }

// State returns the fiber's current state.
func (f *Fiber) State() State { return State(f.state.Load()) }

// IsMain reports whether this Fiber represents a thread's native
// context rather than a Create'd fiber.
func (f *Fiber) IsMain() bool { return f.isMain }

// CreateMain captures the calling goroutine's native context as its
// main fiber. It must be the first fiber operation performed on a
// given goroutine, since the thread-local slots are keyed by goroutine
// (see tls.go); callers that instead call Current first get one lazily
// with identical semantics.
func CreateMain() *Fiber {
	tls := currentTLS()
	if tls.Main != nil {
		panic("fiber: CreateMain called twice on the same thread")
	}
	f := &Fiber{id: idCounter.Add(1), isMain: true}
	f.state.Store(int32(Running))
	tls.Main = f
	tls.Scheduler = f
	tls.Current = f
	return f
}

// Current returns the fiber Running on the calling goroutine, lazily
// creating its main fiber if none has run yet.
func Current() *Fiber {
	tls := currentTLS()
	if tls.Current == nil {
		return CreateMain()
	}
	return tls.Current
}

// SetSchedulerFiber designates the fiber that Yield from a
// runs-in-scheduler fiber conceptually returns control to. The Go port
// does not need this to route the actual channel handoff (each Fiber
// always yields back to whoever is blocked in its own Resume call),
// but callers can still inspect TLS.Scheduler for diagnostics or to
// mirror the reference design's bookkeeping.
func SetSchedulerFiber(f *Fiber) {
	currentTLS().Scheduler = f
}

// Create allocates a new Ready fiber whose entry point is cb. stackSize
// of 0 selects api.DefaultStackSize. runsInScheduler records which
// conceptual yield target (scheduler vs. main fiber) this fiber
// belongs to.
func Create(cb func(), stackSize int, runsInScheduler bool) *Fiber {
	if cb == nil {
		panic("fiber: Create requires a non-nil entry callable")
	}
	if stackSize <= 0 {
		stackSize = api.DefaultStackSize
	}
	f := &Fiber{
		id:              idCounter.Add(1),
		stackSize:       stackSize,
		stack:           pool.Default().Get(stackSize),
		runsInScheduler: runsInScheduler,
		entry:           cb,
		resumeCh:        make(chan struct{}),
		yieldCh:         make(chan struct{}),
	}
	f.state.Store(int32(Ready))
	return f
}

// Reset reinitializes a Terminated fiber with a fresh entry point.
// Termination returned the fiber's stack buffer to the pool, so Reset
// leases a new one of the same size. Permitted only in Terminated
// state, and never on a main fiber, which owns no stack.
func (f *Fiber) Reset(cb func()) {
	if cb == nil {
		panic("fiber: Reset requires a non-nil entry callable")
	}
	if f.isMain {
		panic("fiber: Reset is not valid on a main fiber")
	}
	if State(f.state.Load()) != Terminated {
		panic("fiber: Reset requires a Terminated fiber")
	}
	if f.stack == nil {
		f.stack = pool.Default().Get(f.stackSize)
	}
	f.entryMu.Lock()
	f.entry = cb
	f.entryMu.Unlock()
	f.resumeCh = make(chan struct{})
	f.yieldCh = make(chan struct{})
	f.started.Store(false)
	f.panicky = nil
	f.state.Store(int32(Ready))
}

// Resume transfers control to the fiber. It blocks the calling
// goroutine until the fiber yields or terminates. Permitted only when
// the fiber is Ready.
func (f *Fiber) Resume() error {
	if f.isMain {
		return fmt.Errorf("fiber: cannot Resume a main fiber")
	}
	if !f.state.CompareAndSwap(int32(Ready), int32(Running)) {
		return fmt.Errorf("%w: fiber %d is %s", api.ErrNotReadyFiber, f.id, f.State())
	}
	tls := currentTLS()
	prev := tls.Current
	tls.Current = f

	if f.started.CompareAndSwap(false, true) {
		go f.loop()
	}
	f.resumeCh <- struct{}{}
	<-f.yieldCh

	tls.Current = prev
	if f.panicky != nil {
		p := f.panicky
		f.panicky = nil
		panic(p)
	}
	return nil
}

// Yield suspends the calling fiber, handing control back to whichever
// goroutine is blocked in the matching Resume call. Permitted only
// while Running (main_trampoline performs the Terminated case itself,
// see loop below).
func (f *Fiber) Yield() {
	if State(f.state.Load()) != Running {
		panic(api.ErrNotRunningFiber)
	}
	f.state.Store(int32(Ready))
	f.yieldCh <- struct{}{}
	<-f.resumeCh
}

// loop is the trampoline: it waits for the first Resume, records the
// fiber as Current for its own goroutine (so Current().Yield() from
// inside the entry callable yields this fiber), runs the entry
// callable exactly once, clears it so captured references are dropped
// promptly, marks the fiber Terminated, releases its stack buffer back
// to the pool, drops its goroutine's thread-local slot, and performs
// the final yield. A panic
// inside the entry callable is caught here and re-raised inside the
// Resume call that is waiting on it, mirroring how an uncaught
// exception in the reference implementation would propagate to the
// resumer's stack.
func (f *Fiber) loop() {
	<-f.resumeCh
	currentTLS().Current = f

	func() {
		defer func() {
			if r := recover(); r != nil {
				f.panicky = r
			}
		}()
		f.entryMu.Lock()
		entry := f.entry
		f.entry = nil
		f.entryMu.Unlock()
		entry()
	}()

	f.state.Store(int32(Terminated))
	if f.stack != nil {
		pool.Default().Put(f.stack)
		f.stack = nil
	}
	forgetTLS()
	f.yieldCh <- struct{}{}
}
