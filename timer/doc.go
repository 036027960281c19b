// File: timer/doc.go
// Author: momentics <momentics@gmail.com>
//
// Package timer implements the Timer Manager: an ordered set of timers
// keyed by (next, identity), with condition timers, clock-rollover
// detection, and front-of-set change notification. Grounded on
// original_source/iomanager/timer.cpp, ported to a container/heap-backed
// structure since Go's standard library has no ordered-set container.
package timer
