package extentcache

import "time"

// MarkWritten records that the covered logical bytes have been successfully
// written, flipping any intersecting unwritten extents to written and
// coalescing afterward. Bytes that correspond to no mapping are silently
// ignored: MarkWritten confirms writes to already-allocated space, it does
// not allocate. It is idempotent: calling it twice with the same range has
// the same effect as calling it once.
func (c *Cache) MarkWritten(offset, length uint64) error {
	if length == 0 {
		return newInvariantError("zero-length MarkWritten at offset %d", offset)
	}

	start := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range c.splitByRange(offset, length) {
		if err := c.markWrittenInRange(s); err != nil {
			return err
		}
	}
	c.recordSizesLocked()
	c.metrics.ObserveMarkWritten(time.Since(start))
	return nil
}

func (c *Cache) markWrittenInRange(s span) error {
	start := c.rangeOf(s.Start)
	r, ok := c.ranges[start]
	if !ok || r.empty() {
		return nil
	}

	lo, hi := r.intersecting(s.Start, s.length())
	if hi <= lo {
		return nil
	}

	replacements := make([]PExtent, 0, hi-lo+2)
	for i := lo; i < hi; i++ {
		e := r.extents[i]
		interStart := max(e.LogicalOffset, s.Start)
		interEnd := min(e.end(), s.End)

		if e.LogicalOffset < interStart {
			replacements = append(replacements, PExtent{
				LogicalOffset:  e.LogicalOffset,
				Length:         interStart - e.LogicalOffset,
				PhysicalOffset: e.PhysicalOffset,
				Unwritten:      e.Unwritten,
			})
		}
		replacements = append(replacements, PExtent{
			LogicalOffset:  interStart,
			Length:         interEnd - interStart,
			PhysicalOffset: e.PhysicalOffset + (interStart - e.LogicalOffset),
			Unwritten:      false,
		})
		if interEnd < e.end() {
			replacements = append(replacements, PExtent{
				LogicalOffset:  interEnd,
				Length:         e.end() - interEnd,
				PhysicalOffset: e.PhysicalOffset + (interEnd - e.LogicalOffset),
				Unwritten:      e.Unwritten,
			})
		}
	}

	// Extend the coalescing window to the immediate neighbors of the
	// touched span, then recompute the whole run by repeated coalescing.
	windowLo, windowHi := lo, hi
	if windowLo > 0 {
		windowLo--
	}
	if windowHi < len(r.extents) {
		windowHi++
	}
	merged := coalesceRun(append(append([]PExtent{}, r.extents[windowLo:lo]...), append(replacements, r.extents[hi:windowHi]...)...))
	r.replaceSpan(windowLo, windowHi, merged)
	return nil
}

// coalesceRun folds a sequence of already-ordered, non-overlapping extents
// down to canonical form by merging any adjacent pair that satisfies
// invariant 4.
func coalesceRun(extents []PExtent) []PExtent {
	if len(extents) == 0 {
		return extents
	}
	out := make([]PExtent, 0, len(extents))
	cur := extents[0]
	for _, next := range extents[1:] {
		if coalescable(cur, next) {
			cur.Length += next.Length
			continue
		}
		out = append(out, cur)
		cur = next
	}
	out = append(out, cur)
	return out
}
