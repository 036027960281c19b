// File: fiber/thread.go
// Author: momentics <momentics@gmail.com>
//
// Thread wraps an OS thread (a goroutine pinned to its OS thread via
// LockOSThread) with a "construction returns only after the thread
// function has initialized" handshake, per spec.md §4.2.

package fiber

import (
	"runtime"
)

// Thread is a named, locked-to-one-OS-thread worker.
type Thread struct {
	Name string
	Tid  int

	done chan struct{}
	err  error
}

// NewThread spawns fn on a dedicated OS thread and blocks until that
// thread has set its name and recorded its tid (the handshake), so by
// the time NewThread returns, t.Tid is observable. fn is called right
// after the handshake and may already be running when NewThread
// returns.
func NewThread(name string, fn func()) *Thread {
	t := &Thread{Name: name, done: make(chan struct{})}
	ready := newSemaphore()

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(t.done)
		defer forgetTLS()

		setThreadName(name)
		t.Tid = threadID()
		ready.signal()

		fn()
	}()

	ready.wait()
	return t
}

// Join blocks until the thread's function returns.
func (t *Thread) Join() {
	<-t.done
}

// ThreadID returns the calling goroutine's current OS thread id. Only
// meaningful as a stable identity when the calling goroutine holds
// runtime.LockOSThread, which NewThread's spawned function does.
func ThreadID() int {
	return threadID()
}
