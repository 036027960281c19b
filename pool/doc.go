// Package pool
// Author: momentics <momentics@gmail.com>
//
// Package pool provides a size-classed []byte pool. The fiber package
// leases a fiber's stack-accounting buffer from it and returns the
// buffer when the fiber terminates. Grounded on
// the teacher's baseBufferPool channel-per-class scheme, trimmed of
// its NUMA-node dimension: nothing in this module's domain has a NUMA
// placement concern, so the pool is keyed on size alone.
// See stackpool.go for the implementation.
package pool
