// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics and debug introspection: a MetricsRegistry for
// point-in-time counters and a DebugProbes registry of named callbacks
// a runtime instance (ioreactor.IOManager, scheduler.Scheduler) wires
// itself into so an operator can query its internal state without
// hot-reload or config-file machinery, neither of which this system
// needs.
package control
