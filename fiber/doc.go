// File: fiber/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package fiber implements the stackful-style context-switch primitive
// at the core of the runtime: a cooperatively scheduled execution
// context with states {Ready, Running, Terminated} and resume/yield
// control transfer.
//
// Go gives user code no portable way to swap raw machine contexts the
// way the reference implementation's ucontext-based fiber does. Instead
// each Fiber owns a dedicated goroutine parked on a pair of unbuffered
// channels; Resume hands control to that goroutine and blocks until it
// yields or terminates, and Yield is the symmetric operation run from
// inside the fiber's own call stack. Because a channel send only
// proceeds once its paired receive is ready, at most one side of the
// pair is ever runnable, which is what gives the single-runner
// invariant for free instead of needing a lock.
package fiber
