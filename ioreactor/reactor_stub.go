//go:build !linux
// +build !linux

// File: ioreactor/reactor_stub.go
// Author: momentics <momentics@gmail.com>
//
// Non-Linux placeholder: this library's readiness multiplexer is
// epoll-specific, matching the teacher's own reactor package which only
// ships a real backend for Linux.

package ioreactor

func newReactor() (netReactor, error) {
	return nil, ErrUnsupported
}

func isEINTR(err error) bool { return false }
