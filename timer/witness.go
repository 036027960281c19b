// File: timer/witness.go
// Author: momentics <momentics@gmail.com>

package timer

import "sync/atomic"

// Witness stands in for timer.cpp's std::weak_ptr<void> condition: a
// condition timer's callback only fires while the object it guards is
// still alive. Go has no weak pointers in this toolchain, so the guarded
// object's owner must call Release explicitly when it goes away.
type Witness struct {
	alive atomic.Bool
}

// NewWitness returns a live witness.
func NewWitness() *Witness {
	w := &Witness{}
	w.alive.Store(true)
	return w
}

// Release marks the witness dead; any condition timer still pending
// against it becomes a no-op the next time it fires.
func (w *Witness) Release() {
	w.alive.Store(false)
}

// Alive reports whether the guarded object is still live.
func (w *Witness) Alive() bool {
	return w.alive.Load()
}
