// File: scheduler/doc.go
// Author: momentics <momentics@gmail.com>
//
// Package scheduler implements the work-queue dispatcher over a pool of
// OS threads that executes fibers and plain callbacks, grounded on
// original_source/scheduler/scheduler.cpp. The FIFO task queue is
// backed by github.com/eapache/queue. A Scheduler's tickle/stopping/idle
// behavior is overridable through the Hooks interface, the Go stand-in
// for the original's virtual-method subclassing (ioreactor.IOManager
// installs itself as a Scheduler's Hooks to become an I/O-aware
// scheduler without literal inheritance).
package scheduler
