package fiber

import (
	"sync/atomic"
	"testing"
)

func TestCreateMainMustBeFirst(t *testing.T) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		main := CreateMain()
		if main.State() != Running {
			t.Errorf("main fiber should start Running, got %s", main.State())
		}
		if !main.IsMain() {
			t.Errorf("CreateMain should produce a main fiber")
		}
	}()
	<-done
}

func TestResumeYieldRoundTrip(t *testing.T) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		CreateMain()

		var ran int32
		f := Create(func() {
			atomic.AddInt32(&ran, 1)
			Current().Yield()
			atomic.AddInt32(&ran, 1)
		}, 0, false)

		if f.State() != Ready {
			t.Fatalf("new fiber should be Ready, got %s", f.State())
		}
		if err := f.Resume(); err != nil {
			t.Fatalf("first Resume failed: %v", err)
		}
		if got := atomic.LoadInt32(&ran); got != 1 {
			t.Fatalf("expected entry to run once before yielding, got %d", got)
		}
		if f.State() != Ready {
			t.Fatalf("fiber should be Ready after yield, got %s", f.State())
		}

		if err := f.Resume(); err != nil {
			t.Fatalf("second Resume failed: %v", err)
		}
		if got := atomic.LoadInt32(&ran); got != 2 {
			t.Fatalf("expected entry to resume and finish, got %d", got)
		}
		if f.State() != Terminated {
			t.Fatalf("fiber should be Terminated, got %s", f.State())
		}
	}()
	<-done
}

func TestResumeOnNonReadyFails(t *testing.T) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		CreateMain()
		f := Create(func() {}, 0, false)
		if err := f.Resume(); err != nil {
			t.Fatalf("first Resume: %v", err)
		}
		if f.State() != Terminated {
			t.Fatalf("expected Terminated, got %s", f.State())
		}
		if err := f.Resume(); err == nil {
			t.Fatal("expected Resume on a Terminated fiber to fail")
		}
	}()
	<-done
}

func TestYieldOutsideRunningPanics(t *testing.T) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r == nil {
				t.Error("expected Yield on a non-Running fiber to panic")
			}
		}()
		CreateMain()
		f := Create(func() {}, 0, false)
		f.Yield()
	}()
	<-done
}

func TestResetAfterTerminated(t *testing.T) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		CreateMain()

		var calls int32
		body := func() { atomic.AddInt32(&calls, 1) }
		f := Create(body, 0, false)
		if err := f.Resume(); err != nil {
			t.Fatalf("Resume: %v", err)
		}
		if f.State() != Terminated {
			t.Fatalf("expected Terminated, got %s", f.State())
		}

		f.Reset(body)
		if f.State() != Ready {
			t.Fatalf("expected Ready after Reset, got %s", f.State())
		}
		if err := f.Resume(); err != nil {
			t.Fatalf("Resume after Reset: %v", err)
		}
		if got := atomic.LoadInt32(&calls); got != 2 {
			t.Fatalf("expected entry to have run twice, got %d", got)
		}
	}()
	<-done
}

func TestFiberPanicPropagatesToResumer(t *testing.T) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		CreateMain()
		f := Create(func() { panic("boom") }, 0, false)

		defer func() {
			r := recover()
			if r == nil {
				t.Fatal("expected the fiber's panic to propagate to Resume's caller")
			}
			if r != "boom" {
				t.Fatalf("unexpected panic value: %v", r)
			}
		}()
		_ = f.Resume()
	}()
	<-done
}

func TestStackReleasedOnTermination(t *testing.T) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		CreateMain()
		f := Create(func() {}, 4096, false)
		if f.StackSize() != 4096 {
			t.Fatalf("expected stack size 4096, got %d", f.StackSize())
		}
		if err := f.Resume(); err != nil {
			t.Fatalf("Resume: %v", err)
		}
		if f.stack != nil {
			t.Fatal("expected stack to be released back to the pool on termination")
		}
	}()
	<-done
}
