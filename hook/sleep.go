// File: hook/sleep.go
// Author: momentics <momentics@gmail.com>

package hook

import (
	"time"

	"github.com/momentics/hioload-fiber/fiber"
	"github.com/momentics/hioload-fiber/scheduler"
)

// Sleep suspends the calling fiber for d without blocking its OS
// thread, when hooks are enabled and a manager is installed; otherwise
// it forwards to time.Sleep.
func Sleep(d time.Duration) {
	mgr := manager()
	if !Enabled() || mgr == nil {
		time.Sleep(d)
		return
	}

	self := fiber.Current()
	mgr.AddTimer(uint64(d/time.Millisecond), func() {
		mgr.ScheduleFiber(self, scheduler.AnyThread)
	}, false)
	self.Yield()
}
