package extentcache

import "sort"

// extentRange is one outer partition's inner map: a slice of PExtent kept
// sorted by LogicalOffset ascending (invariant 5). A sorted slice with
// binary search is used instead of an ordered map type — see SPEC_FULL.md
// §9 for why.
type extentRange struct {
	start   uint64
	extents []PExtent
}

func newExtentRange(start uint64) *extentRange {
	return &extentRange{start: start}
}

// indexAtOrAfter returns the index of the first extent whose LogicalOffset
// is >= offset.
func (r *extentRange) indexAtOrAfter(offset uint64) int {
	return sort.Search(len(r.extents), func(i int) bool {
		return r.extents[i].LogicalOffset >= offset
	})
}

// predecessorIndex returns the index of the last extent whose LogicalOffset
// is <= offset, or -1 if none.
func (r *extentRange) predecessorIndex(offset uint64) int {
	idx := r.indexAtOrAfter(offset + 1)
	return idx - 1
}

// find returns the extent (if any) whose interval contains offset.
func (r *extentRange) find(offset uint64) (PExtent, bool) {
	idx := r.predecessorIndex(offset)
	if idx < 0 {
		return PExtent{}, false
	}
	e := r.extents[idx]
	if offset < e.end() {
		return e, true
	}
	return PExtent{}, false
}

// intersecting returns the indices [lo, hi) of extents that intersect
// [offset, offset+length).
func (r *extentRange) intersecting(offset, length uint64) (lo, hi int) {
	end := offset + length
	lo = r.indexAtOrAfter(offset)
	if lo > 0 && r.extents[lo-1].end() > offset {
		lo--
	}
	hi = r.indexAtOrAfter(end)
	if lo > hi {
		lo = hi
	}
	return lo, hi
}

// insertAt inserts e at position idx, shifting later entries right.
func (r *extentRange) insertAt(idx int, e PExtent) {
	r.extents = append(r.extents, PExtent{})
	copy(r.extents[idx+1:], r.extents[idx:])
	r.extents[idx] = e
}

// replaceSpan replaces the extents in [lo, hi) with the given replacements,
// which must already be in ascending, non-overlapping order.
func (r *extentRange) replaceSpan(lo, hi int, replacements []PExtent) {
	tail := append([]PExtent{}, r.extents[hi:]...)
	r.extents = append(r.extents[:lo], replacements...)
	r.extents = append(r.extents, tail...)
}

func (r *extentRange) empty() bool {
	return len(r.extents) == 0
}
