// Package memoryblockio is an in-memory blockio.Engine backed by a single
// growable byte slice, used by tests and the demo CLI. Grounded on dittofs's
// pkg/store/block/memory.Store.
package memoryblockio

import (
	"context"
	"sync"

	"github.com/curvefs/curvefs-client/pkg/volume/blockio"
)

// Engine is an in-memory implementation of blockio.Engine.
type Engine struct {
	mu     sync.RWMutex
	volume []byte
	closed bool
}

// New returns an empty engine. The backing volume grows as writes reach
// beyond its current size.
func New() *Engine {
	return &Engine{}
}

func (e *Engine) growLocked(size uint64) {
	if uint64(len(e.volume)) >= size {
		return
	}
	grown := make([]byte, size)
	copy(grown, e.volume)
	e.volume = grown
}

// ReadAt implements blockio.Engine.
func (e *Engine) ReadAt(_ context.Context, physicalOffset uint64, buf []byte) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return blockio.ErrClosed
	}
	end := physicalOffset + uint64(len(buf))
	if end > uint64(len(e.volume)) {
		return blockio.ErrOutOfBounds
	}
	copy(buf, e.volume[physicalOffset:end])
	return nil
}

// WriteAt implements blockio.Engine.
func (e *Engine) WriteAt(_ context.Context, physicalOffset uint64, data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return blockio.ErrClosed
	}
	e.growLocked(physicalOffset + uint64(len(data)))
	n := copy(e.volume[physicalOffset:], data)
	if n != len(data) {
		return blockio.ErrShortWrite
	}
	return nil
}

// HealthCheck implements blockio.Engine.
func (e *Engine) HealthCheck(context.Context) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return blockio.ErrClosed
	}
	return nil
}

// Close implements blockio.Engine.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.volume = nil
	return nil
}

// Size returns the current size of the backing volume, for tests.
func (e *Engine) Size() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.volume)
}

var _ blockio.Engine = (*Engine)(nil)
