package extentcache

import (
	"sort"
	"sync"
)

// Cache is the logical-to-physical extent map for a single inode. It is
// safe for concurrent use by many goroutines.
type Cache struct {
	mu      sync.RWMutex
	opts    Options
	ranges  map[uint64]*extentRange
	metrics Metrics
}

// New returns an empty cache using the process-wide default alignment
// parameters in effect at call time.
func New() *Cache {
	return NewWithOptions(CurrentOption())
}

// NewWithOptions returns an empty cache using the given alignment
// parameters, ignoring the process-wide default. Panics if opts is invalid.
func NewWithOptions(opts Options) *Cache {
	if err := opts.Validate(); err != nil {
		panic(err)
	}
	return &Cache{opts: opts, ranges: make(map[uint64]*extentRange), metrics: noopMetrics{}}
}

// SetMetrics attaches a metrics collector to the cache. Passing nil
// disables collection again.
func (c *Cache) SetMetrics(m Metrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m == nil {
		m = noopMetrics{}
	}
	c.metrics = m
}

// recordSizesLocked reports the current range/extent counts to the attached
// metrics collector. Callers must hold at least the read lock.
func (c *Cache) recordSizesLocked() {
	extentCount := 0
	for _, r := range c.ranges {
		extentCount += len(r.extents)
	}
	c.metrics.RecordRangeCount(len(c.ranges))
	c.metrics.RecordExtentCount(extentCount)
}

// Build populates a fresh cache from a persisted snapshot. The input is
// trusted to already be in canonical form: Build validates invariants 1-3
// but does not re-merge adjacent entries. It returns an InvalidPersistedInput
// error, leaving the cache unpopulated, if any entry is misaligned,
// misplaced, or overlaps another.
func Build(persisted InodeExtents) (*Cache, error) {
	return BuildWithOptions(persisted, CurrentOption())
}

// BuildWithOptions is Build using explicit alignment parameters.
func BuildWithOptions(persisted InodeExtents, opts Options) (*Cache, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	c := &Cache{opts: opts, ranges: make(map[uint64]*extentRange), metrics: noopMetrics{}}

	rangeStarts := make([]uint64, 0, len(persisted))
	for start := range persisted {
		rangeStarts = append(rangeStarts, start)
	}
	sort.Slice(rangeStarts, func(i, j int) bool { return rangeStarts[i] < rangeStarts[j] })

	for _, start := range rangeStarts {
		if start%c.opts.RangeSize != 0 {
			return nil, newPersistedInputError("range start %d is not a multiple of rangeSize %d", start, c.opts.RangeSize)
		}
		r := newExtentRange(start)
		entries := persisted[start]
		for i, entry := range entries {
			e := PExtent{
				LogicalOffset:  entry.FSOffset,
				Length:         entry.Length,
				PhysicalOffset: entry.VolumeOffset,
				Unwritten:      !entry.IsWritten,
			}
			if err := c.validateExtentAlignment(e); err != nil {
				return nil, err
			}
			if e.LogicalOffset < start || e.end() > start+c.opts.RangeSize {
				return nil, newPersistedInputError("extent [%d,%d) is not contained in range starting at %d", e.LogicalOffset, e.end(), start)
			}
			if i > 0 {
				prev := entries[i-1]
				if entry.FSOffset < prev.FSOffset+prev.Length {
					return nil, newPersistedInputError("overlapping persisted extents at range %d: [%d,%d) and [%d,%d)",
						start, prev.FSOffset, prev.FSOffset+prev.Length, entry.FSOffset, entry.FSOffset+entry.Length)
				}
			}
			r.extents = append(r.extents, e)
		}
		c.ranges[start] = r
	}
	return c, nil
}

func (c *Cache) validateExtentAlignment(e PExtent) error {
	if e.Length == 0 {
		return newPersistedInputError("zero-length extent at offset %d", e.LogicalOffset)
	}
	if e.LogicalOffset%c.opts.BlockSize != 0 {
		return newPersistedInputError("logical offset %d is not block-aligned", e.LogicalOffset)
	}
	if e.Length%c.opts.BlockSize != 0 {
		return newPersistedInputError("length %d is not block-aligned", e.Length)
	}
	if e.PhysicalOffset%c.opts.BlockSize != 0 {
		return newPersistedInputError("physical offset %d is not block-aligned", e.PhysicalOffset)
	}
	return nil
}

// ToInode serializes the cache to its persisted form. Ranges are walked in
// ascending start order, and within each range extents in ascending logical
// offset order, so the result is a bit-exact round trip with Build for any
// cache reachable through the public API.
func (c *Cache) ToInode() InodeExtents {
	c.mu.RLock()
	defer c.mu.RUnlock()

	starts := make([]uint64, 0, len(c.ranges))
	for start, r := range c.ranges {
		if !r.empty() {
			starts = append(starts, start)
		}
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })

	out := make(InodeExtents, len(starts))
	for _, start := range starts {
		r := c.ranges[start]
		entries := make([]InodeExtent, len(r.extents))
		for i, e := range r.extents {
			entries[i] = InodeExtent{
				FSOffset:     e.LogicalOffset,
				Length:       e.Length,
				VolumeOffset: e.PhysicalOffset,
				IsUsed:       true,
				IsWritten:    !e.Unwritten,
			}
		}
		out[start] = entries
	}
	return out
}

// getOrCreateRange returns the range owning offset, creating it lazily if
// this is the first write into it. Callers must hold the write lock.
func (c *Cache) getOrCreateRange(offset uint64) *extentRange {
	start := c.rangeOf(offset)
	r, ok := c.ranges[start]
	if !ok {
		r = newExtentRange(start)
		c.ranges[start] = r
	}
	return r
}
