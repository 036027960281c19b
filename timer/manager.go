// File: timer/manager.go
// Author: momentics <momentics@gmail.com>

package timer

import (
	"container/heap"
	"sync"
	"sync/atomic"
	"time"
)

// timerHeap orders *Timer by (next, id), breaking ties on the ascending
// allocation order of the timer — the identity tiebreak the original's
// ordered set used pointer identity for.
type timerHeap []*Timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].next.Equal(h[j].next) {
		return h[i].id < h[j].id
	}
	return h[i].next.Before(h[j].next)
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIndex = i
	h[j].heapIndex = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*Timer)
	t.heapIndex = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	t.heapIndex = -1
	return t
}

// Manager is the Timer Manager: an ordered timer set plus clock-rollover
// detection and front-of-set change notification, per
// original_source/iomanager/timer.cpp.
type Manager struct {
	mu           sync.Mutex
	h            timerHeap
	tickled      bool
	previousTime time.Time
	onFront      func() // called when a new timer becomes the earliest; nil is a valid no-op

	idCounter atomic.Uint64
}

// NewManager returns a Manager that invokes onFront when AddTimer or
// Reset inserts a timer that becomes the new earliest deadline, at most
// once between calls to NextTimeoutMs (which clears the latch). onFront
// may be nil, matching the base Scheduler's tickle being a no-op.
func NewManager(onFront func()) *Manager {
	return &Manager{previousTime: time.Now(), onFront: onFront}
}

// rawInsertLocked pushes t without evaluating front-of-heap notification;
// used for recurring-timer reinsertion during ListExpired, matching the
// original's direct m_timers.insert call at that site.
func (m *Manager) rawInsertLocked(t *Timer) {
	heap.Push(&m.h, t)
}

// insertLocked pushes t and reports whether it became the new earliest
// timer while m.tickled was false, latching m.tickled in that case.
func (m *Manager) insertLocked(t *Timer) (atFront bool) {
	heap.Push(&m.h, t)
	atFront = m.h[0] == t && !m.tickled
	if atFront {
		m.tickled = true
	}
	return atFront
}

func (m *Manager) removeLocked(t *Timer) {
	if t.heapIndex >= 0 {
		heap.Remove(&m.h, t.heapIndex)
	}
}

// AddTimer schedules cb to run after ms milliseconds, optionally
// recurring.
func (m *Manager) AddTimer(ms uint64, cb func(), recurring bool) *Timer {
	t := &Timer{
		id:        m.idCounter.Add(1),
		ms:        ms,
		recurring: recurring,
		cb:        cb,
		manager:   m,
		heapIndex: -1,
	}
	t.next = time.Now().Add(time.Duration(ms) * time.Millisecond)

	m.mu.Lock()
	atFront := m.insertLocked(t)
	m.mu.Unlock()

	if atFront && m.onFront != nil {
		m.onFront()
	}
	return t
}

// AddConditionTimer schedules cb to run after ms milliseconds, but only
// if witness is still alive when the timer fires. This is the witness
// stand-in for the original's weak_ptr-guarded condition timer.
func (m *Manager) AddConditionTimer(ms uint64, cb func(), witness *Witness, recurring bool) *Timer {
	wrapped := func() {
		if witness.Alive() {
			cb()
		}
	}
	return m.AddTimer(ms, wrapped, recurring)
}

// AddExisting reinserts a timer already populated by Timer.Reset,
// applying the same front-of-heap notification AddTimer does.
func (m *Manager) AddExisting(t *Timer) {
	m.mu.Lock()
	atFront := m.insertLocked(t)
	m.mu.Unlock()

	if atFront && m.onFront != nil {
		m.onFront()
	}
}

// NextTimeoutMs returns the number of milliseconds until the earliest
// timer fires, 0 if one is already due, or ^uint64(0) if there are none.
// Calling this clears the internal tickled latch, matching
// TimerManager::getNextTimer's reset of m_tickled.
func (m *Manager) NextTimeoutMs() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tickled = false
	if len(m.h) == 0 {
		return ^uint64(0)
	}

	now := time.Now()
	earliest := m.h[0].next
	if !now.Before(earliest) {
		return 0
	}
	return uint64(earliest.Sub(now) / time.Millisecond)
}

// ListExpired pops every timer due to fire (or, on clock rollover,
// every timer outright) and returns their callbacks in fire order.
// Recurring timers are rescheduled and reinserted before returning.
func (m *Manager) ListExpired() []func() {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	rollover := m.detectClockRolloverLocked(now)

	var cbs []func()
	for len(m.h) > 0 && (rollover || !m.h[0].next.After(now)) {
		t := heap.Pop(&m.h).(*Timer)

		t.mu.Lock()
		cb := t.cb
		if cb != nil {
			cbs = append(cbs, cb)
		}
		if t.recurring && cb != nil {
			t.next = now.Add(time.Duration(t.ms) * time.Millisecond)
			t.mu.Unlock()
			m.rawInsertLocked(t)
		} else {
			t.cb = nil
			t.mu.Unlock()
		}
	}
	return cbs
}

// HasTimer reports whether any timer is currently scheduled.
func (m *Manager) HasTimer() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.h) > 0
}

// detectClockRolloverLocked reports whether the clock reading jumped
// backward by more than an hour since the previous observation. Both
// readings come from time.Now, so the comparison uses their monotonic
// component.
func (m *Manager) detectClockRolloverLocked(now time.Time) bool {
	rollover := now.Before(m.previousTime.Add(-time.Hour))
	m.previousTime = now
	return rollover
}
