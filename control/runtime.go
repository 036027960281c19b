// control/runtime.go
// Author: momentics <momentics@gmail.com>

package control

// Probes is the minimal set of introspection primitives a scheduler or
// I/O manager exposes to RegisterRuntimeProbes. Both scheduler.Scheduler
// and ioreactor.IOManager already satisfy this shape.
type Probes interface {
	Name() string
	ActiveCount() int
	IdleCount() int
	QueueLength() int
}

// TimerProbes is implemented by runtimes that also front a Timer
// Manager (ioreactor.IOManager); NextTimeoutMs lets a probe report how
// soon the next timer is due.
type TimerProbes interface {
	NextTimeoutMs() uint64
}

// RegisterRuntimeProbes wires p's introspection surface into dp under
// keys scoped by name: name+".active_threads", ".idle_threads" and
// ".queue_length" always; ".next_timer_ms" when p implements
// TimerProbes; ".pending_event_count" when p has a
// PendingEventCount() int64 method.
func RegisterRuntimeProbes(dp *DebugProbes, name string, p Probes) {
	dp.RegisterProbe(name+".active_threads", func() any { return p.ActiveCount() })
	dp.RegisterProbe(name+".idle_threads", func() any { return p.IdleCount() })
	dp.RegisterProbe(name+".queue_length", func() any { return p.QueueLength() })

	if tp, ok := p.(TimerProbes); ok {
		dp.RegisterProbe(name+".next_timer_ms", func() any { return tp.NextTimeoutMs() })
	}
	if pc, ok := p.(interface{ PendingEventCount() int64 }); ok {
		dp.RegisterProbe(name+".pending_event_count", func() any { return pc.PendingEventCount() })
	}
}
