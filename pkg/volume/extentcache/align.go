package extentcache

// alignDown rounds x down to the nearest multiple of a. a must be nonzero.
func alignDown(x, a uint64) uint64 {
	return x - (x % a)
}

// alignUp rounds x up to the nearest multiple of a. a must be nonzero.
func alignUp(x, a uint64) uint64 {
	return alignDown(x+a-1, a)
}

// rangeOf returns the start offset of the range owning the logical offset.
func (c *Cache) rangeOf(offset uint64) uint64 {
	return alignDown(offset, c.opts.RangeSize)
}

// span is a half-open logical interval [Start, End).
type span struct {
	Start uint64
	End   uint64
}

func (s span) length() uint64 {
	return s.End - s.Start
}

// splitByRange cuts [offset, offset+length) at every rangeSize boundary it
// crosses, returning one span per range it touches in ascending order.
func (c *Cache) splitByRange(offset, length uint64) []span {
	if length == 0 {
		return nil
	}
	end := offset + length
	var spans []span
	cur := offset
	for cur < end {
		rangeEnd := c.rangeOf(cur) + c.opts.RangeSize
		next := end
		if rangeEnd < next {
			next = rangeEnd
		}
		spans = append(spans, span{Start: cur, End: next})
		cur = next
	}
	return spans
}
