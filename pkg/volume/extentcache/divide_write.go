package extentcache

import "time"

// DivideForWrite splits a logical write into parts that are already mapped
// (allocated, to be written through) and parts that need a new physical
// extent from the allocator. It acquires the exclusive lock: the caller
// acts on the returned snapshot, so the cache must not change underneath it
// between this call and the caller's subsequent Merge/MarkWritten.
func (c *Cache) DivideForWrite(offset, length uint64, data []byte) (allocated []WritePart, needAlloc []AllocPart, err error) {
	if length == 0 {
		return nil, nil, nil
	}
	if uint64(len(data)) < length {
		return nil, nil, newInvariantError("data buffer shorter than length: %d < %d", len(data), length)
	}

	start := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range c.splitByRange(offset, length) {
		dataOff := s.Start - offset
		a, n := c.divideForWriteInRange(s, data[dataOff:dataOff+s.length()])
		allocated = append(allocated, a...)
		needAlloc = append(needAlloc, n...)
	}
	c.metrics.ObserveDivideForWrite(time.Since(start), len(allocated), len(needAlloc))
	return allocated, needAlloc, nil
}

func (c *Cache) divideForWriteInRange(s span, data []byte) ([]WritePart, []AllocPart) {
	rangeStart := c.rangeOf(s.Start)
	rangeEnd := rangeStart + c.opts.RangeSize
	r, ok := c.ranges[rangeStart]

	if !ok || r.empty() {
		alloc := c.expandAllocRequest(nil, s.Start, s.End, rangeStart, rangeEnd)
		return nil, []AllocPart{c.buildAllocPart(s.Start, s.End, alloc, data)}
	}

	var writes []WritePart
	var allocs []AllocPart

	lo, hi := r.intersecting(s.Start, s.length())
	cursor := s.Start
	for i := lo; i < hi; i++ {
		e := r.extents[i]
		interStart := max(e.LogicalOffset, s.Start)
		interEnd := min(e.end(), s.End)

		if cursor < interStart {
			alloc := c.expandAllocRequest(r, cursor, interStart, rangeStart, rangeEnd)
			allocs = append(allocs, c.buildAllocPart(cursor, interStart, alloc, dataSlice(data, s.Start, cursor, interStart)))
		}

		writes = append(writes, WritePart{
			LogicalOffset: interStart,
			Length:        interEnd - interStart,
			Data:          dataSlice(data, s.Start, interStart, interEnd),
		})
		cursor = interEnd
	}
	if cursor < s.End {
		alloc := c.expandAllocRequest(r, cursor, s.End, rangeStart, rangeEnd)
		allocs = append(allocs, c.buildAllocPart(cursor, s.End, alloc, dataSlice(data, s.Start, cursor, s.End)))
	}
	return writes, allocs
}

// dataSlice extracts the bytes of data (which starts at bufStart in logical
// space) corresponding to [from, to).
func dataSlice(data []byte, bufStart, from, to uint64) []byte {
	return data[from-bufStart : to-bufStart]
}

// expandAllocRequest computes the block-aligned, preallocSize-expanded
// allocation request for the hole [gapStart, gapEnd), clipped so it never
// overlaps an existing extent in r and never leaves the range. r may be nil
// when the whole range is still empty.
//
// The open question in spec.md §9 on exactly how far to expand against a
// close neighbor is resolved here: expansion always attempts to reach
// preallocSize from the aligned gap start, then clips to whichever is
// nearer, the existing neighbor or the range boundary.
func (c *Cache) expandAllocRequest(r *extentRange, gapStart, gapEnd, rangeStart, rangeEnd uint64) AllocInfo {
	alignedStart := alignDown(gapStart, c.opts.BlockSize)
	alignedEnd := alignUp(gapEnd, c.opts.BlockSize)

	if want := alignedStart + c.opts.PreallocSize; alignedEnd < want {
		alignedEnd = want
	}

	leftLimit, rightLimit := rangeStart, rangeEnd
	if r != nil {
		if predIdx := r.predecessorIndex(gapStart); predIdx >= 0 {
			if end := r.extents[predIdx].end(); end > leftLimit {
				leftLimit = end
			}
		}
		if succIdx := r.indexAtOrAfter(gapEnd); succIdx < len(r.extents) {
			if start := r.extents[succIdx].LogicalOffset; start < rightLimit {
				rightLimit = start
			}
		}
	}
	if alignedStart < leftLimit {
		alignedStart = leftLimit
	}
	if alignedEnd > rightLimit {
		alignedEnd = rightLimit
	}

	return AllocInfo{LogicalOffset: alignedStart, Length: alignedEnd - alignedStart}
}

func (c *Cache) buildAllocPart(gapStart, gapEnd uint64, info AllocInfo, data []byte) AllocPart {
	return AllocPart{
		Info:        info,
		Padding:     gapStart - info.LogicalOffset,
		WriteLength: gapEnd - gapStart,
		Data:        data,
	}
}
