// File: scheduler/task.go
// Author: momentics <momentics@gmail.com>

package scheduler

import "github.com/momentics/hioload-fiber/fiber"

// AnyThread is the ThreadID value meaning "run on whichever worker picks
// this task up first."
const AnyThread = -1

// Task is a unit of scheduling: either a fiber to resume or a callback
// to wrap in a fresh fiber and resume once.
type Task struct {
	Fiber    *fiber.Fiber
	Cb       func()
	ThreadID int
}

func (t Task) isEmpty() bool {
	return t.Fiber == nil && t.Cb == nil
}
