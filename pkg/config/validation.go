package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks cfg against its struct tags via go-playground/validator,
// then enforces the cross-field volume geometry invariants that struct tags
// can't express on their own.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return err
	}
	return validateAlignment(cfg.Alignment)
}

// validateAlignment enforces the same block-alignment invariants the extent
// cache itself checks at construction time (see extentcache.Options.Validate),
// surfaced here so a misconfigured volume fails at config load instead of on
// the first extent merge.
func validateAlignment(a AlignmentConfig) error {
	if !a.RangeSize.IsPowerOfTwoMultiple(a.BlockSize) {
		return fmt.Errorf("alignment.range_size (%s) must be a power-of-two multiple of block_size (%s)", a.RangeSize, a.BlockSize)
	}
	if !a.PreallocSize.IsAligned(a.BlockSize) {
		return fmt.Errorf("alignment.prealloc_size (%s) must be a multiple of block_size (%s)", a.PreallocSize, a.BlockSize)
	}
	return nil
}
