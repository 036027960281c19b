// File: scheduler/hooks.go
// Author: momentics <momentics@gmail.com>

package scheduler

import "github.com/momentics/hioload-fiber/fiber"

// Hooks lets a component built on top of Scheduler override how it
// wakes idle workers, decides it has quiesced, and spends idle time.
// ioreactor.IOManager implements Hooks over an embedded Scheduler in
// place of the original's virtual tickle/stopping/idle overrides.
type Hooks interface {
	// Tickle wakes a sleeping worker so it re-checks the task queue.
	Tickle()
	// Stopping reports whether the scheduler (and anything layered on
	// top of it) has finished draining and may exit its run loops.
	Stopping() bool
	// Idle is the per-worker idle fiber's body. self is the fiber
	// running it, so Idle can Yield back into the dispatch loop.
	Idle(self *fiber.Fiber)
}
