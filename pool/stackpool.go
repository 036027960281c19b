// File: pool/stackpool.go
// Author: momentics <momentics@gmail.com>
//
// Size-classed []byte pool backing fiber stack accounting buffers.
// Grounded on the teacher's baseBufferPool channel-per-class scheme,
// but keyed on size alone (no NUMA dimension applies here) and backed
// by the package's own lock-free RingBuffer instead of a channel.

package pool

import "sync"

const ringClassSize = 1024

// StackPool hands out reusable []byte buffers, grouped by exact
// requested size. A miss allocates a fresh buffer; a Put whose ring is
// full simply drops the buffer for the GC to reclaim.
type StackPool struct {
	mu      sync.Mutex
	classes map[int]*RingBuffer[[]byte]
}

// NewStackPool creates an empty pool.
func NewStackPool() *StackPool {
	return &StackPool{classes: make(map[int]*RingBuffer[[]byte])}
}

func (p *StackPool) classFor(size int) *RingBuffer[[]byte] {
	p.mu.Lock()
	defer p.mu.Unlock()
	rb, ok := p.classes[size]
	if !ok {
		rb = NewRingBuffer[[]byte](ringClassSize)
		p.classes[size] = rb
	}
	return rb
}

// Get returns a buffer of exactly size bytes, reused from the pool
// when one of the right size is available.
func (p *StackPool) Get(size int) []byte {
	rb := p.classFor(size)
	p.mu.Lock()
	buf, ok := rb.Dequeue()
	p.mu.Unlock()
	if ok && len(buf) == size {
		return buf
	}
	return make([]byte, size)
}

// Put returns buf to the pool for reuse by a future Get of the same
// size. Safe to call with a nil or empty buffer (a no-op).
func (p *StackPool) Put(buf []byte) {
	if len(buf) == 0 {
		return
	}
	rb := p.classFor(len(buf))
	p.mu.Lock()
	rb.Enqueue(buf)
	p.mu.Unlock()
}

var (
	defaultOnce sync.Once
	defaultPool *StackPool
)

// Default returns a process-wide StackPool, analogous to the teacher's
// DefaultManager: every fiber in the process shares it rather than
// fragmenting allocations across ad hoc pools.
func Default() *StackPool {
	defaultOnce.Do(func() { defaultPool = NewStackPool() })
	return defaultPool
}
