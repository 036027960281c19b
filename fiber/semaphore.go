// File: fiber/semaphore.go
// Author: momentics <momentics@gmail.com>
//
// A counting semaphore over a mutex and condition variable, used only
// for the thread construction handshake in thread.go. Blocking the
// constructor on it is acceptable: construction is rare and off any
// hot path.

package fiber

import "sync"

type semaphore struct {
	mu    sync.Mutex
	cond  *sync.Cond
	count int
}

func newSemaphore() *semaphore {
	s := &semaphore{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// wait decrements the count if positive, else sleeps until a signal
// makes it so.
func (s *semaphore) wait() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.count == 0 {
		s.cond.Wait()
	}
	s.count--
}

// signal increments the count and wakes one waiter.
func (s *semaphore) signal() {
	s.mu.Lock()
	s.count++
	s.mu.Unlock()
	s.cond.Signal()
}
