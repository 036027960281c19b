// File: ioreactor/options.go
// Author: momentics <momentics@gmail.com>

package ioreactor

import (
	"time"

	"github.com/momentics/hioload-fiber/api"
	"github.com/momentics/hioload-fiber/scheduler"
)

type config struct {
	maxEvents     int
	maxIdlePoll   time.Duration
	schedulerOpts []scheduler.Option
}

func defaultConfig() *config {
	return &config{
		maxEvents:   api.DefaultMaxEvents,
		maxIdlePoll: api.DefaultMaxIdlePoll,
	}
}

// Option configures an IOManager at construction time.
type Option func(*config)

// WithMaxEvents caps how many ready events a single poll reports.
func WithMaxEvents(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxEvents = n
		}
	}
}

// WithMaxIdlePoll caps how long idle blocks in the reactor wait when no
// timer is pending.
func WithMaxIdlePoll(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.maxIdlePoll = d
		}
	}
}

// WithName sets the underlying Scheduler's name.
func WithName(name string) Option {
	return func(c *config) { c.schedulerOpts = append(c.schedulerOpts, scheduler.WithName(name)) }
}

// WithUseCaller controls whether the constructing goroutine participates
// as a worker (default true).
func WithUseCaller(useCaller bool) Option {
	return func(c *config) {
		c.schedulerOpts = append(c.schedulerOpts, scheduler.WithUseCaller(useCaller))
	}
}

// WithStackSize overrides the default fiber stack size.
func WithStackSize(n int) Option {
	return func(c *config) { c.schedulerOpts = append(c.schedulerOpts, scheduler.WithStackSize(n)) }
}

// WithWorkerAffinity pins spawned worker threads 1:1 to the given CPU
// list.
func WithWorkerAffinity(cpus []int) Option {
	return func(c *config) {
		c.schedulerOpts = append(c.schedulerOpts, scheduler.WithWorkerAffinity(cpus))
	}
}
