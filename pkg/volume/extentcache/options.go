package extentcache

import "sync"

// Default alignment parameters, matching the values curve's volume client
// has always used: 4KiB blocks, 64KiB preallocation quantum, 1GiB ranges.
const (
	DefaultBlockSize    uint64 = 4096
	DefaultPreallocSize uint64 = 64 * 1024
	DefaultRangeSize    uint64 = 1 << 30
)

// Options holds the alignment parameters shared by every extent cache in
// the process. §5 of the specification treats them as process-wide,
// one-time-initialized infrastructure constants; §9 notes an implementation
// may instead attach them per instance. This package does both: SetOption
// changes the process-wide default that New/Build pick up, but each Cache
// keeps its own copy once created so that changing the default later never
// mutates a cache already in use.
type Options struct {
	BlockSize    uint64
	PreallocSize uint64
	RangeSize    uint64
}

// DefaultOptions returns the built-in alignment parameters.
func DefaultOptions() Options {
	return Options{
		BlockSize:    DefaultBlockSize,
		PreallocSize: DefaultPreallocSize,
		RangeSize:    DefaultRangeSize,
	}
}

// Validate checks that the options are internally consistent: rangeSize
// must be a power-of-two multiple of blocksize, and preallocSize must be a
// multiple of blocksize.
func (o Options) Validate() error {
	if o.BlockSize == 0 || o.PreallocSize == 0 || o.RangeSize == 0 {
		return newInvariantError("alignment parameters must be nonzero: %+v", o)
	}
	if o.RangeSize%o.BlockSize != 0 {
		return newInvariantError("rangeSize %d must be a multiple of blocksize %d", o.RangeSize, o.BlockSize)
	}
	if (o.RangeSize/o.BlockSize)&((o.RangeSize/o.BlockSize)-1) != 0 {
		return newInvariantError("rangeSize %d must be a power-of-two multiple of blocksize %d", o.RangeSize, o.BlockSize)
	}
	if o.PreallocSize%o.BlockSize != 0 {
		return newInvariantError("preallocSize %d must be a multiple of blocksize %d", o.PreallocSize, o.BlockSize)
	}
	return nil
}

var (
	globalOptionsMu sync.RWMutex
	globalOptions   = DefaultOptions()
)

// SetOption sets the process-wide default alignment parameters. It must be
// called before any cache that relies on the default is created; existing
// caches are unaffected. Panics if opts fails Validate, mirroring the
// "set once before use" contract of §5 — a bad call here is a startup-time
// programming error, not something callers are expected to recover from.
func SetOption(opts Options) {
	if err := opts.Validate(); err != nil {
		panic(err)
	}
	globalOptionsMu.Lock()
	defer globalOptionsMu.Unlock()
	globalOptions = opts
}

// CurrentOption returns the process-wide default alignment parameters.
func CurrentOption() Options {
	globalOptionsMu.RLock()
	defer globalOptionsMu.RUnlock()
	return globalOptions
}
