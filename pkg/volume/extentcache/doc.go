// Package extentcache maintains the logical-to-physical extent map for a
// single inode backed by a block-addressed volume.
//
// The cache answers three questions for any logical byte range of a file:
// which physical ranges already back it, which bytes are holes that still
// need allocation, and which allocated bytes have never been written (and so
// must read back as zero). It does not perform I/O and does not persist
// itself; it is consulted by a file instance around calls to the allocator,
// the block I/O engine, and the metadata service.
package extentcache
