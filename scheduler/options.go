// File: scheduler/options.go
// Author: momentics <momentics@gmail.com>
//
// Functional options, grounded on the teacher's server/options.go.

package scheduler

import "github.com/momentics/hioload-fiber/api"

type config struct {
	name      string
	useCaller bool
	stackSize int
	affinity  []int
}

func defaultConfig() *config {
	return &config{
		name:      "scheduler",
		useCaller: true,
		stackSize: api.DefaultStackSize,
	}
}

// Option configures a Scheduler at construction time.
type Option func(*config)

// WithName sets the scheduler's name, used as the worker thread name
// prefix.
func WithName(name string) Option {
	return func(c *config) { c.name = name }
}

// WithUseCaller controls whether the constructing goroutine participates
// as a worker (default true).
func WithUseCaller(useCaller bool) Option {
	return func(c *config) { c.useCaller = useCaller }
}

// WithStackSize overrides the default fiber stack size used for the
// idle fiber and callback-wrapping fibers.
func WithStackSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.stackSize = n
		}
	}
}

// WithWorkerAffinity pins spawned worker threads 1:1 to the given CPU
// list (the i-th spawned worker to cpus[i]); workers beyond len(cpus)
// are left unpinned. Purely an optimization.
func WithWorkerAffinity(cpus []int) Option {
	return func(c *config) { c.affinity = cpus }
}
