// Package allocator defines the collaborator the extent cache's
// DivideForWrite consults for new physical extents. The cache only
// describes what must be allocated (an AllocInfo); it never implements
// placement policy itself.
package allocator

import (
	"context"
	"errors"

	"github.com/curvefs/curvefs-client/pkg/volume/extentcache"
)

// Common errors returned by Allocator implementations.
var (
	// ErrOutOfSpace is returned when the backing volume has no room left
	// for the requested extent.
	ErrOutOfSpace = errors.New("allocator: volume out of space")

	// ErrInvalidRequest is returned when the request is not block-aligned
	// or has zero length — a programmer error from the caller's side.
	ErrInvalidRequest = errors.New("allocator: invalid allocation request")
)

// Allocator hands back a new physical extent for a logical hole the cache
// has identified. The returned PExtent must be block-aligned, exactly
// req.Length long, and Unwritten; the caller is responsible for calling
// Cache.Merge with the result and, once the I/O engine confirms the write,
// Cache.MarkWritten.
type Allocator interface {
	Allocate(ctx context.Context, req extentcache.AllocInfo) (extentcache.PExtent, error)
}
