// File: ioreactor/fdmanager.go
// Author: momentics <momentics@gmail.com>

package ioreactor

import (
	"sync"

	"github.com/momentics/hioload-fiber/api"
)

// FdManager is an indexed table of FdContext, indexed by fd, per
// spec §4.6.
type FdManager struct {
	mu  sync.RWMutex
	fds []*FdContext
}

// NewFdManager returns an empty FdManager.
func NewFdManager() *FdManager {
	return &FdManager{}
}

// Get returns the FdContext for fd, creating it (growing the table by
// api.FdTableGrowthFactor if needed) when autoCreate is true and no
// entry exists yet. Returns nil if autoCreate is false and there is no
// entry.
func (m *FdManager) Get(fd int, autoCreate bool) *FdContext {
	if fd < 0 {
		return nil
	}

	m.mu.RLock()
	if fd < len(m.fds) && m.fds[fd] != nil {
		ctx := m.fds[fd]
		m.mu.RUnlock()
		return ctx
	}
	m.mu.RUnlock()

	if !autoCreate {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if fd >= len(m.fds) {
		newSize := int(float64(len(m.fds)) * api.FdTableGrowthFactor)
		if newSize <= fd {
			newSize = fd + 1
		}
		grown := make([]*FdContext, newSize)
		copy(grown, m.fds)
		m.fds = grown
	}
	if m.fds[fd] == nil {
		m.fds[fd] = newFdContext(fd)
	}
	return m.fds[fd]
}

// Del drops the table entry for fd.
func (m *FdManager) Del(fd int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if fd >= 0 && fd < len(m.fds) {
		m.fds[fd] = nil
	}
}
