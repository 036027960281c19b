package fiber

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestThreadConstructionHandshake(t *testing.T) {
	var ranOn atomic.Int64
	var ran atomic.Bool

	th := NewThread("worker-0", func() {
		ranOn.Store(int64(ThreadID()))
		ran.Store(true)
	})
	// By the time NewThread returns, the handshake has fired, so the
	// thread's name/tid are observable.
	if th.Tid == 0 {
		t.Fatal("thread id not recorded before NewThread returned")
	}
	if th.Name != "worker-0" {
		t.Fatalf("unexpected thread name: %q", th.Name)
	}

	th.Join()
	if !ran.Load() {
		t.Fatal("thread function never ran")
	}
	if got := int(ranOn.Load()); got != th.Tid {
		t.Fatalf("thread function ran on tid %d, handshake recorded %d", got, th.Tid)
	}
}

func TestThreadJoinWaitsForCompletion(t *testing.T) {
	var done atomic.Bool
	th := NewThread("worker-1", func() {
		time.Sleep(20 * time.Millisecond)
		done.Store(true)
	})
	th.Join()
	if !done.Load() {
		t.Fatal("Join returned before the thread function finished")
	}
}

func TestSemaphoreWaitSignal(t *testing.T) {
	s := newSemaphore()
	done := make(chan struct{})
	go func() {
		s.wait()
		close(done)
	}()
	select {
	case <-done:
		t.Fatal("wait returned before signal")
	case <-time.After(10 * time.Millisecond):
	}
	s.signal()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("wait never returned after signal")
	}
}
