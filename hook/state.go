// File: hook/state.go
// Author: momentics <momentics@gmail.com>

package hook

import (
	"sync"
	"sync/atomic"

	"github.com/momentics/hioload-fiber/fiber"
	"github.com/momentics/hioload-fiber/ioreactor"
)

var activeManager atomic.Pointer[ioreactor.IOManager]

// SetManager installs the IOManager that backs every hook's timers and
// event registration. A process has exactly one active manager at a
// time; call this once, before Start, with the IOManager the hooked
// code should suspend into.
func SetManager(io *ioreactor.IOManager) {
	activeManager.Store(io)
}

func manager() *ioreactor.IOManager {
	return activeManager.Load()
}

var enabledTable sync.Map // int64 goroutine id -> struct{}

// Enable turns on transparent blocking-to-async translation for the
// calling goroutine. Per spec §4.7, this is the per-thread hook_enabled
// flag; it defaults to false.
func Enable() {
	enabledTable.Store(fiber.GoroutineID(), struct{}{})
}

// Disable reverts the calling goroutine's hooks to pass-through.
func Disable() {
	enabledTable.Delete(fiber.GoroutineID())
}

// Enabled reports whether hooks are active for the calling goroutine.
func Enabled() bool {
	_, ok := enabledTable.Load(fiber.GoroutineID())
	return ok
}
