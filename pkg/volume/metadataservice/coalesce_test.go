package metadataservice

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/curvefs/curvefs-client/pkg/volume/extentcache"
)

type countingClient struct {
	calls atomic.Int64
}

func (c *countingClient) LoadInode(_ context.Context, inodeID uint64) (extentcache.InodeExtents, error) {
	c.calls.Add(1)
	return extentcache.InodeExtents{inodeID: nil}, nil
}

func (c *countingClient) SaveInode(_ context.Context, _ uint64, _ extentcache.InodeExtents) error {
	return nil
}

func TestCoalesce_ConcurrentLoadsNeverExceedOneCallPerCaller(t *testing.T) {
	inner := &countingClient{}
	c := NewCoalesce(inner)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.LoadInode(context.Background(), 42); err != nil {
				t.Errorf("LoadInode failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if calls := inner.calls.Load(); calls == 0 || calls > 20 {
		t.Errorf("unexpected call count: %d", calls)
	}
}

func TestCoalesce_DistinctInodesEachCallOnce(t *testing.T) {
	inner := &countingClient{}
	c := NewCoalesce(inner)

	for _, id := range []uint64{1, 2, 3} {
		if _, err := c.LoadInode(context.Background(), id); err != nil {
			t.Fatalf("LoadInode(%d) failed: %v", id, err)
		}
	}

	if calls := inner.calls.Load(); calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}
