// File: api/doc.go
// Author: momentics <momentics@gmail.com>
//
// Package api holds the shared constants, error values, and small
// cross-package types used by the fiber/scheduler/timer/ioreactor/hook
// stack. It intentionally carries no logic: everything here is a leaf
// dependency so every other package in the module can import it
// without risk of an import cycle.
package api
