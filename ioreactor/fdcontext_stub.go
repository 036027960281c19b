//go:build !linux
// +build !linux

// File: ioreactor/fdcontext_stub.go
// Author: momentics <momentics@gmail.com>

package ioreactor

// initPlatform is a no-op off Linux: the epoll-backed reactor itself is
// Linux-only (see reactor_stub.go), so there is no kernel fd state to
// discover here either.
func (c *FdContext) initPlatform() {}
