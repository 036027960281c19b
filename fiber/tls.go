// File: fiber/tls.go
// Author: momentics <momentics@gmail.com>
//
// Thread-local slots. Go has no native thread-local storage, so this
// models the spec's "three thread-local slots" (current fiber, main
// fiber, scheduler fiber) as a table indexed by the calling goroutine's
// id, per the reference design's own note that a target language with
// no thread-locals should use a thread-indexed table instead. A
// goroutine id is stable for the lifetime of the goroutine that owns
// it regardless of which OS thread the Go runtime schedules it onto,
// which is exactly the granularity a Fiber's dedicated backing
// goroutine needs.

package fiber

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// TLS holds the three yield targets the spec assigns to each OS thread.
type TLS struct {
	Current   *Fiber
	Main      *Fiber
	Scheduler *Fiber
}

var tlsTable sync.Map // int64 goroutine id -> *TLS

// goroutineID extracts the numeric id Go prints at the head of a stack
// trace. It is the same trick used by goroutine-local-storage packages
// throughout the ecosystem in the absence of a supported runtime API.
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseInt(string(b), 10, 64)
	return id
}

// currentTLS returns (allocating on first use) the calling goroutine's
// TLS slots.
func currentTLS() *TLS {
	gid := goroutineID()
	if v, ok := tlsTable.Load(gid); ok {
		return v.(*TLS)
	}
	t := &TLS{}
	actual, _ := tlsTable.LoadOrStore(gid, t)
	return actual.(*TLS)
}

// forgetTLS drops the calling goroutine's slot. Threads started by
// NewThread and each fiber's backing goroutine call this on exit so
// the table does not grow without bound across a long server lifetime
// with churning threads and fibers.
func forgetTLS() {
	tlsTable.Delete(goroutineID())
}

// CurrentTLS exposes the calling goroutine's thread-local slots. The
// scheduler and I/O manager use it to inspect the scheduler-fiber
// slot; ordinary callers should prefer Current.
func CurrentTLS() *TLS {
	return currentTLS()
}

// GoroutineID exposes the calling goroutine's numeric id for packages
// that need their own goroutine-keyed table, such as hook's per-goroutine
// enablement flag.
func GoroutineID() int64 {
	return goroutineID()
}
