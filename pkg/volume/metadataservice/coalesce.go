package metadataservice

import (
	"context"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/curvefs/curvefs-client/pkg/volume/extentcache"
)

// Coalesce wraps a Client so that concurrent LoadInode calls for the same
// inode share one underlying fetch instead of each issuing a separate
// round trip to the backing store. Grounded on avogabo-EDRmount's use of
// golang.org/x/sync/singleflight to deduplicate concurrent range fetches
// for the same key.
type Coalesce struct {
	inner Client
	group singleflight.Group
}

// NewCoalesce returns a Client that deduplicates concurrent LoadInode calls
// against inner.
func NewCoalesce(inner Client) *Coalesce {
	return &Coalesce{inner: inner}
}

// LoadInode implements Client, coalescing concurrent callers for the same
// inodeID into a single call to the wrapped Client.
func (c *Coalesce) LoadInode(ctx context.Context, inodeID uint64) (extentcache.InodeExtents, error) {
	key := strconv.FormatUint(inodeID, 10)
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		return c.inner.LoadInode(ctx, inodeID)
	})
	if err != nil {
		return extentcache.InodeExtents{}, err
	}
	return v.(extentcache.InodeExtents), nil
}

// SaveInode implements Client, delegating directly: writes are never
// coalesced, since doing so could silently drop one caller's update.
func (c *Coalesce) SaveInode(ctx context.Context, inodeID uint64, extents extentcache.InodeExtents) error {
	return c.inner.SaveInode(ctx, inodeID, extents)
}

var _ Client = (*Coalesce)(nil)
