package extentcache

import (
	"math/rand"
	"testing"
)

// checkInvariants asserts invariants 1 (no overlap), 2 (alignment), 3 (range
// containment), and 5 (ascending order) hold for every range in the cache.
func checkInvariants(t *testing.T, c *Cache) {
	t.Helper()
	for start, r := range c.ranges {
		var prevEnd uint64
		for i, e := range r.extents {
			if e.Length == 0 {
				t.Fatalf("zero-length extent in range %d: %+v", start, e)
			}
			if e.LogicalOffset%c.opts.BlockSize != 0 || e.Length%c.opts.BlockSize != 0 || e.PhysicalOffset%c.opts.BlockSize != 0 {
				t.Fatalf("misaligned extent in range %d: %+v", start, e)
			}
			if e.LogicalOffset < start || e.end() > start+c.opts.RangeSize {
				t.Fatalf("extent escapes its range %d: %+v", start, e)
			}
			if i > 0 && e.LogicalOffset < prevEnd {
				t.Fatalf("overlap in range %d at index %d: %+v", start, i, r.extents)
			}
			if i > 0 && e.LogicalOffset <= r.extents[i-1].LogicalOffset {
				t.Fatalf("extents not in ascending order in range %d: %+v", start, r.extents)
			}
			prevEnd = e.end()
		}
	}
}

// TestRandomMergeSequencesPreserveInvariants drives the cache through a long
// deterministic sequence of non-overlapping Merge calls (as a real allocator
// would produce) and checks invariants after every step.
func TestRandomMergeSequencesPreserveInvariants(t *testing.T) {
	c := NewWithOptions(testOptions())
	rng := rand.New(rand.NewSource(42))

	const blockSize = 4096
	var nextPhysical uint64 = 0x10000
	occupied := map[uint64]bool{}

	for i := 0; i < 500; i++ {
		blockIdx := uint64(rng.Intn(4096))
		offset := blockIdx * blockSize
		if occupied[offset] {
			continue
		}
		lengthBlocks := 1 + rng.Intn(4)
		length := uint64(lengthBlocks) * blockSize
		overlap := false
		for b := uint64(0); b < uint64(lengthBlocks); b++ {
			if occupied[offset+b*blockSize] {
				overlap = true
				break
			}
		}
		if overlap {
			continue
		}

		unwritten := rng.Intn(2) == 0
		if err := c.Merge(offset, PExtent{Length: length, PhysicalOffset: nextPhysical, Unwritten: unwritten}); err != nil {
			t.Fatalf("iteration %d: unexpected merge error at offset %d len %d: %v", i, offset, length, err)
		}
		for b := uint64(0); b < uint64(lengthBlocks); b++ {
			occupied[offset+b*blockSize] = true
		}
		nextPhysical += length + blockSize // leave a physical gap so not every merge coalesces

		checkInvariants(t, c)
	}
}

// TestMergeThenMarkWrittenThenDivide exercises all four mutators/readers
// together and checks DivideForRead/DivideForWrite guarantees continuously.
func TestMergeThenMarkWrittenThenDivide(t *testing.T) {
	c := NewWithOptions(testOptions())
	rng := rand.New(rand.NewSource(7))

	const blockSize = 4096
	var cursor uint64
	var physCursor uint64 = 0x20000

	for i := 0; i < 100; i++ {
		length := uint64(1+rng.Intn(8)) * blockSize
		if err := c.Merge(cursor, PExtent{Length: length, PhysicalOffset: physCursor, Unwritten: true}); err != nil {
			t.Fatalf("iteration %d: merge failed: %v", i, err)
		}
		checkInvariants(t, c)

		if rng.Intn(2) == 0 {
			writeLen := length / 2
			if writeLen == 0 {
				writeLen = blockSize
			}
			writeLen = alignDown(writeLen, blockSize)
			if writeLen > 0 {
				if err := c.MarkWritten(cursor, writeLen); err != nil {
					t.Fatalf("iteration %d: markwritten failed: %v", i, err)
				}
				checkInvariants(t, c)
			}
		}

		buf := make([]byte, length)
		reads, holes, err := c.DivideForRead(cursor, length, buf)
		if err != nil {
			t.Fatalf("iteration %d: divideforread failed: %v", i, err)
		}
		var total uint64
		for _, r := range reads {
			total += r.Length
		}
		for _, h := range holes {
			total += h.Length
		}
		if total != length {
			t.Fatalf("iteration %d: reads+holes = %d, want %d", i, total, length)
		}

		cursor += length + blockSize
		physCursor += length + blockSize
	}
}
