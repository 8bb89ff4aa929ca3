package extentcache

import "time"

// DivideForRead splits a logical read into parts backed by a written extent
// (the caller issues physical I/O) and holes — unmapped or unwritten bytes
// the caller must zero-fill. reads and holes perfectly tile
// [offset, offset+length) with no overlap.
func (c *Cache) DivideForRead(offset, length uint64, data []byte) (reads []ReadPart, holes []ReadPart, err error) {
	if length == 0 {
		return nil, nil, nil
	}
	if uint64(len(data)) < length {
		return nil, nil, newInvariantError("data buffer shorter than length: %d < %d", len(data), length)
	}

	start := time.Now()
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, s := range c.splitByRange(offset, length) {
		dataOff := s.Start - offset
		rs, hs := c.divideForReadInRange(s, data[dataOff:dataOff+s.length()])
		reads = append(reads, rs...)
		holes = append(holes, hs...)
	}
	c.metrics.ObserveDivideForRead(time.Since(start), len(reads), len(holes))
	return reads, holes, nil
}

func (c *Cache) divideForReadInRange(s span, data []byte) ([]ReadPart, []ReadPart) {
	rangeStart := c.rangeOf(s.Start)
	r, ok := c.ranges[rangeStart]
	if !ok || r.empty() {
		return nil, []ReadPart{{
			LogicalOffset: s.Start,
			Length:        s.length(),
			Data:          data,
		}}
	}

	var reads, holes []ReadPart
	lo, hi := r.intersecting(s.Start, s.length())
	cursor := s.Start
	for i := lo; i < hi; i++ {
		e := r.extents[i]
		interStart := max(e.LogicalOffset, s.Start)
		interEnd := min(e.end(), s.End)

		if cursor < interStart {
			holes = append(holes, ReadPart{
				LogicalOffset: cursor,
				Length:        interStart - cursor,
				Data:          dataSlice(data, s.Start, cursor, interStart),
			})
		}

		part := ReadPart{
			LogicalOffset: interStart,
			Length:        interEnd - interStart,
			Data:          dataSlice(data, s.Start, interStart, interEnd),
		}
		if e.Unwritten {
			holes = append(holes, part)
		} else {
			part.PhysicalOffset = e.PhysicalOffset + (interStart - e.LogicalOffset)
			reads = append(reads, part)
		}
		cursor = interEnd
	}
	if cursor < s.End {
		holes = append(holes, ReadPart{
			LogicalOffset: cursor,
			Length:        s.End - cursor,
			Data:          dataSlice(data, s.Start, cursor, s.End),
		})
	}
	return reads, holes
}
