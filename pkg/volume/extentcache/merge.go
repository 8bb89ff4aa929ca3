package extentcache

import "time"

// Merge integrates a newly-allocated extent into the cache, coalescing with
// neighbors where invariant 4 allows. The new extent must be block-aligned,
// nonzero-length, and lie entirely within one range; splitting a multi-range
// allocation result is the caller's responsibility.
func (c *Cache) Merge(logicalOffset uint64, e PExtent) error {
	e.LogicalOffset = logicalOffset

	start := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.validateExtentAlignment(e); err != nil {
		return newInvariantError("%s", err.(*Error).Message)
	}
	rangeStart := c.rangeOf(logicalOffset)
	if e.end() > rangeStart+c.opts.RangeSize {
		return newInvariantError("extent [%d,%d) crosses range boundary at %d", e.LogicalOffset, e.end(), rangeStart+c.opts.RangeSize)
	}

	r := c.getOrCreateRange(logicalOffset)

	lo, hi := r.intersecting(e.LogicalOffset, e.Length)
	if hi > lo {
		overlap := r.extents[lo]
		return newInvariantError("merge extent [%d,%d) overlaps existing extent [%d,%d)",
			e.LogicalOffset, e.end(), overlap.LogicalOffset, overlap.end())
	}

	// lo == hi is the insertion point: the predecessor (if any) sits at
	// lo-1, the successor (if any) still sits at lo since nothing has been
	// inserted yet.
	merged := e
	replaceLo := lo
	replaceHi := lo
	if lo > 0 && coalescable(r.extents[lo-1], merged) {
		pred := r.extents[lo-1]
		pred.Length += merged.Length
		merged = pred
		replaceLo = lo - 1
	}
	if lo < len(r.extents) && coalescable(merged, r.extents[lo]) {
		succ := r.extents[lo]
		merged.Length += succ.Length
		replaceHi = lo + 1
	}

	r.replaceSpan(replaceLo, replaceHi, []PExtent{merged})
	c.recordSizesLocked()
	c.metrics.ObserveMerge(time.Since(start))
	return nil
}

// coalescable reports whether a followed immediately by b may be stored as
// a single extent under invariant 4: adjacent, physically contiguous, and
// sharing the same unwritten flag.
func coalescable(a, b PExtent) bool {
	return a.end() == b.LogicalOffset &&
		a.physicalEnd() == b.PhysicalOffset &&
		a.Unwritten == b.Unwritten
}
