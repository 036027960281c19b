//go:build linux
// +build linux

package hook

import (
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-fiber/api"
	"github.com/momentics/hioload-fiber/ioreactor"
	"github.com/momentics/hioload-fiber/scheduler"
)

func newTestManager(t *testing.T) *ioreactor.IOManager {
	t.Helper()
	mgr, err := ioreactor.NewIOManager(1, ioreactor.WithUseCaller(false), ioreactor.WithMaxIdlePoll(20*time.Millisecond))
	if err != nil {
		t.Fatalf("NewIOManager: %v", err)
	}
	if err := mgr.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = mgr.Close() })
	prev := manager()
	SetManager(mgr)
	t.Cleanup(func() { SetManager(prev) })
	return mgr
}

func socketpair(t *testing.T) (int, int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	for _, fd := range fds {
		if err := unix.SetNonblock(fd, true); err != nil {
			t.Fatalf("SetNonblock: %v", err)
		}
	}
	t.Cleanup(func() {
		unix.Close(fds[0])
		unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

// runInFiber schedules fn to run as a fiber on the manager's worker
// thread and returns without waiting for it, so hook calls that rely
// on fiber.Current()/Yield run in a valid fiber context while the test
// goroutine goes on to supply data or close fds; tests collect fn's
// outcome through channels. Hooks are enabled for that fiber's
// dedicated goroutine only, since Enable is keyed per goroutine.
func runInFiber(mgr *ioreactor.IOManager, fn func()) {
	mgr.ScheduleFunc(func() {
		Enable()
		defer Disable()
		fn()
	}, scheduler.AnyThread)
}

func TestSleepSuspendsAndResumes(t *testing.T) {
	mgr := newTestManager(t)

	start := make(chan time.Time, 1)
	end := make(chan time.Time, 1)
	runInFiber(mgr, func() {
		start <- time.Now()
		Sleep(30 * time.Millisecond)
		end <- time.Now()
	})

	if (<-end).Sub(<-start) < 25*time.Millisecond {
		t.Fatal("Sleep returned too early")
	}
}

func TestReadRetriesUntilDataArrives(t *testing.T) {
	mgr := newTestManager(t)
	a, b := socketpair(t)
	mgr.FdManager().Get(a, true)

	buf := make([]byte, 4)
	result := make(chan struct {
		n   int
		err error
	}, 1)

	runInFiber(mgr, func() {
		n, err := Read(a, buf)
		result <- struct {
			n   int
			err error
		}{n, err}
	})

	time.Sleep(10 * time.Millisecond)
	if _, err := unix.Write(b, []byte("hi")); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case r := <-result:
		if r.err != nil {
			t.Fatalf("Read returned error: %v", r.err)
		}
		if r.n != 2 || string(buf[:r.n]) != "hi" {
			t.Fatalf("Read returned %q", buf[:r.n])
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Read never returned")
	}
}

func TestAcceptRegistersNewFd(t *testing.T) {
	mgr := newTestManager(t)

	listenFd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socket: %v", err)
	}
	defer unix.Close(listenFd)

	sockPath := t.TempDir() + "/hook_accept_test.sock"
	if err := unix.Bind(listenFd, &unix.SockaddrUnix{Name: sockPath}); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if err := unix.Listen(listenFd, 1); err != nil {
		t.Fatalf("listen: %v", err)
	}
	if err := unix.SetNonblock(listenFd, true); err != nil {
		t.Fatalf("SetNonblock: %v", err)
	}
	mgr.FdManager().Get(listenFd, true)

	type acceptResult struct {
		fd  int
		err error
	}
	result := make(chan acceptResult, 1)
	runInFiber(mgr, func() {
		fd, _, err := Accept(listenFd)
		result <- acceptResult{fd, err}
	})

	time.Sleep(10 * time.Millisecond)
	connFd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("client socket: %v", err)
	}
	defer unix.Close(connFd)
	if err := unix.Connect(connFd, &unix.SockaddrUnix{Name: sockPath}); err != nil {
		t.Fatalf("connect: %v", err)
	}

	select {
	case r := <-result:
		if r.err != nil {
			t.Fatalf("Accept returned error: %v", r.err)
		}
		defer unix.Close(r.fd)
		if mgr.FdManager().Get(r.fd, false) == nil {
			t.Fatal("expected Accept to register the accepted fd")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Accept never returned")
	}
}

func TestCloseFiresPendingWaiter(t *testing.T) {
	mgr := newTestManager(t)
	a, _ := socketpair(t)
	mgr.FdManager().Get(a, true)

	buf := make([]byte, 4)
	result := make(chan error, 1)
	runInFiber(mgr, func() {
		_, err := Read(a, buf)
		result <- err
	})

	time.Sleep(10 * time.Millisecond)
	if err := Close(a); err != nil {
		t.Fatalf("Close: %v", err)
	}

	select {
	case err := <-result:
		if err == nil {
			t.Fatal("expected Read to observe an error after Close fired it")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Read never returned after Close")
	}
}

func TestFcntlTracksUserNonblockIntentSeparatelyFromKernelFlag(t *testing.T) {
	mgr := newTestManager(t)
	a, _ := socketpair(t)
	mgr.FdManager().Get(a, true)

	if _, err := Fcntl(a, unix.F_SETFL, 0); err != nil {
		t.Fatalf("Fcntl F_SETFL: %v", err)
	}

	flags, err := unix.FcntlInt(uintptr(a), unix.F_GETFL, 0)
	if err != nil {
		t.Fatalf("FcntlInt F_GETFL: %v", err)
	}
	if flags&unix.O_NONBLOCK == 0 {
		t.Fatal("expected the kernel fd to remain nonblocking regardless of user intent")
	}

	got, err := Fcntl(a, unix.F_GETFL, 0)
	if err != nil {
		t.Fatalf("Fcntl F_GETFL: %v", err)
	}
	if got&unix.O_NONBLOCK != 0 {
		t.Fatal("expected Fcntl to report the user's blocking intent, not the kernel flag")
	}
}

func TestSetsockoptTimeoutRecordsOnFdContext(t *testing.T) {
	mgr := newTestManager(t)
	a, _ := socketpair(t)
	ctx := mgr.FdManager().Get(a, true)

	if err := SetsockoptTimeout(a, unix.SOL_SOCKET, unix.SO_RCVTIMEO, 50*time.Millisecond); err != nil {
		t.Fatalf("SetsockoptTimeout: %v", err)
	}

	if got := ctx.Timeout(api.TimeoutReceive); got != 50*time.Millisecond {
		t.Fatalf("expected FdContext recv timeout 50ms, got %v", got)
	}
}
