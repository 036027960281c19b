package timer

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestAddTimerFiresAfterDelay(t *testing.T) {
	m := NewManager(nil)
	m.AddTimer(10, func() {}, false)

	if got := m.NextTimeoutMs(); got == ^uint64(0) {
		t.Fatal("expected a finite timeout")
	}

	time.Sleep(20 * time.Millisecond)
	cbs := m.ListExpired()
	if len(cbs) != 1 {
		t.Fatalf("expected 1 expired timer, got %d", len(cbs))
	}
	if m.HasTimer() {
		t.Fatal("non-recurring timer should be removed after firing")
	}
}

func TestRecurringTimerReinsertsItself(t *testing.T) {
	m := NewManager(nil)
	var fires atomic.Int32
	m.AddTimer(5, func() { fires.Add(1) }, true)

	time.Sleep(10 * time.Millisecond)
	cbs := m.ListExpired()
	for _, cb := range cbs {
		cb()
	}
	if !m.HasTimer() {
		t.Fatal("recurring timer should reinsert itself")
	}
	if fires.Load() != 1 {
		t.Fatalf("expected 1 fire, got %d", fires.Load())
	}
}

func TestOnFrontCalledOnlyForNewEarliest(t *testing.T) {
	var notified atomic.Int32
	m := NewManager(func() { notified.Add(1) })

	m.AddTimer(1000, func() {}, false)
	if notified.Load() != 1 {
		t.Fatalf("expected onFront after first insert, got %d", notified.Load())
	}

	m.AddTimer(2000, func() {}, false) // later, not the new earliest
	if notified.Load() != 1 {
		t.Fatalf("onFront should not fire for a later timer, got %d", notified.Load())
	}

	// NextTimeoutMs clears the tickled latch, so a new earliest triggers
	// onFront again.
	m.NextTimeoutMs()
	m.AddTimer(1, func() {}, false)
	if notified.Load() != 2 {
		t.Fatalf("expected a second onFront after latch reset, got %d", notified.Load())
	}
}

func TestCancelRemovesTimer(t *testing.T) {
	m := NewManager(nil)
	timer := m.AddTimer(1000, func() {}, false)
	if !timer.Cancel() {
		t.Fatal("Cancel should succeed the first time")
	}
	if timer.Cancel() {
		t.Fatal("Cancel should be idempotent")
	}
	if m.HasTimer() {
		t.Fatal("cancelled timer should be removed")
	}
}

func TestRefreshMovesDeadlineForward(t *testing.T) {
	m := NewManager(nil)
	timer := m.AddTimer(50, func() {}, false)
	before := timer.next

	time.Sleep(5 * time.Millisecond)
	if !timer.Refresh() {
		t.Fatal("Refresh should succeed on a live timer")
	}
	if !timer.next.After(before) {
		t.Fatal("Refresh should move the deadline forward")
	}
}

func TestResetRecomputesFromNow(t *testing.T) {
	m := NewManager(nil)
	timer := m.AddTimer(1000, func() {}, false)
	if !timer.Reset(10, true) {
		t.Fatal("Reset should succeed on a live timer")
	}
	time.Sleep(20 * time.Millisecond)
	cbs := m.ListExpired()
	if len(cbs) != 1 {
		t.Fatalf("expected the reset timer to fire quickly, got %d expired", len(cbs))
	}
}

func TestConditionTimerSkipsWhenWitnessReleased(t *testing.T) {
	m := NewManager(nil)
	w := NewWitness()
	var fired atomic.Bool
	m.AddConditionTimer(5, func() { fired.Store(true) }, w, false)
	w.Release()

	time.Sleep(10 * time.Millisecond)
	for _, cb := range m.ListExpired() {
		cb()
	}
	if fired.Load() {
		t.Fatal("condition timer should not fire once its witness is released")
	}
}

func TestClockRolloverExpiresEverything(t *testing.T) {
	m := NewManager(nil)
	m.AddTimer(1_000_000, func() {}, false) // effectively "never" under normal clock
	m.previousTime = time.Now().Add(2 * time.Hour)

	cbs := m.ListExpired()
	if len(cbs) != 1 {
		t.Fatalf("rollover should expire all timers, got %d", len(cbs))
	}
}

func TestNextTimeoutMsNoTimers(t *testing.T) {
	m := NewManager(nil)
	if got := m.NextTimeoutMs(); got != ^uint64(0) {
		t.Fatalf("expected max uint64 with no timers, got %d", got)
	}
}
