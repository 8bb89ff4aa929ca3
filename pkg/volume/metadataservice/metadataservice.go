// Package metadataservice defines the collaborator that persists an
// inode's extent map — the output of extentcache.Cache.ToInode and the
// input to extentcache.Build. The cache itself never touches storage; a
// file instance loads a cache via this service at open time and saves it
// back at flush/close time.
package metadataservice

import (
	"context"
	"errors"

	"github.com/curvefs/curvefs-client/pkg/volume/extentcache"
)

// ErrNotFound is returned when no persisted extent map exists for an inode.
var ErrNotFound = errors.New("metadataservice: inode not found")

// Client loads and saves the persisted extent map for an inode.
type Client interface {
	LoadInode(ctx context.Context, inodeID uint64) (extentcache.InodeExtents, error)
	SaveInode(ctx context.Context, inodeID uint64, extents extentcache.InodeExtents) error
}
