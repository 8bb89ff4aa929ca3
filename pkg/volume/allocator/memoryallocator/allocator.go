// Package memoryallocator is a bump allocator over a fixed-size
// in-memory volume, used by tests and the demo CLI. Grounded on dittofs's
// pkg/store/block/memory.Store — same "in-memory backing with a mutex, for
// testing" idiom applied to space allocation instead of block storage.
package memoryallocator

import (
	"context"

	"github.com/curvefs/curvefs-client/pkg/volume/allocator"
	"github.com/curvefs/curvefs-client/pkg/volume/extentcache"

	"sync"
)

// Allocator bump-allocates physical space from a fixed-size volume. It
// never reclaims freed space — sufficient for tests and demos, not a
// production placement policy.
type Allocator struct {
	mu         sync.Mutex
	volumeSize uint64
	cursor     uint64
}

// New returns an allocator backed by a volume of the given size in bytes.
func New(volumeSize uint64) *Allocator {
	return &Allocator{volumeSize: volumeSize}
}

// Allocate implements allocator.Allocator.
func (a *Allocator) Allocate(_ context.Context, req extentcache.AllocInfo) (extentcache.PExtent, error) {
	if req.Length == 0 {
		return extentcache.PExtent{}, allocator.ErrInvalidRequest
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cursor+req.Length > a.volumeSize {
		return extentcache.PExtent{}, allocator.ErrOutOfSpace
	}
	physical := a.cursor
	a.cursor += req.Length

	return extentcache.PExtent{
		LogicalOffset:  req.LogicalOffset,
		Length:         req.Length,
		PhysicalOffset: physical,
		Unwritten:      true,
	}, nil
}

// Used returns the number of bytes allocated so far, for tests.
func (a *Allocator) Used() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cursor
}

var _ allocator.Allocator = (*Allocator)(nil)
