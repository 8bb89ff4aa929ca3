package extentcache

// PExtent is one contiguous physical extent backing a contiguous logical
// region of a single range.
type PExtent struct {
	LogicalOffset  uint64
	Length         uint64
	PhysicalOffset uint64
	// Unwritten is true when the space is allocated but has never been
	// written: reads within the extent must return zeros without issuing I/O.
	Unwritten bool
}

// end returns the exclusive logical end offset of the extent.
func (e PExtent) end() uint64 {
	return e.LogicalOffset + e.Length
}

// physicalEnd returns the exclusive physical end offset of the extent.
func (e PExtent) physicalEnd() uint64 {
	return e.PhysicalOffset + e.Length
}

// AllocInfo is a request for a new physical extent, sent to the allocator.
type AllocInfo struct {
	LogicalOffset uint64
	Length        uint64
}

// WritePart describes a slice of a write whose backing is already mapped
// (written or unwritten — the caller writes through; MarkWritten clears the
// unwritten flag afterward). Data points into the caller's buffer and is
// never copied by the cache.
type WritePart struct {
	LogicalOffset uint64
	Length        uint64
	Data          []byte
}

// AllocPart describes a slice of a write for which no mapping exists yet.
// The allocation request in Info has been expanded to block alignment and,
// where possible, to preallocSize; Padding and WriteLength describe where
// the caller's actual bytes sit inside that expanded request.
type AllocPart struct {
	Info        AllocInfo
	Padding     uint64
	WriteLength uint64
	Data        []byte
}

// ReadPart describes a slice of a read. When PhysicalOffset is meaningful
// (a "read" result) the caller issues physical I/O into Data at
// PhysicalOffset; when it is a "hole" result the caller zero-fills Data and
// PhysicalOffset is not meaningful.
type ReadPart struct {
	LogicalOffset  uint64
	Length         uint64
	PhysicalOffset uint64
	Data           []byte
}

// InodeExtent is one persisted extent entry, as stored in inode state by
// the metadata service.
type InodeExtent struct {
	FSOffset     uint64
	Length       uint64
	VolumeOffset uint64
	// IsUsed is reserved; ignored by the cache on read.
	IsUsed bool
	// IsWritten is the inverse of PExtent.Unwritten.
	IsWritten bool
}

// InodeExtents is the persisted form of an entire cache: every range's
// extent list, keyed by the range's logical start offset.
type InodeExtents map[uint64][]InodeExtent
