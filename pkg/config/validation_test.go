package config

import "testing"

func TestValidate_ValidConfig(t *testing.T) {
	cfg := GetDefaultConfig()
	if err := Validate(cfg); err != nil {
		t.Errorf("expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Level = "INVALID"

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for invalid log level")
	}
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Format = "xml"

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for invalid log format")
	}
}

func TestValidate_InvalidBlockIOBackend(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Volume.BlockIO.Backend = "nonsense"

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for invalid block I/O backend")
	}
}

func TestValidate_InvalidMetadataServiceBackend(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Volume.MetadataService.Backend = "nonsense"

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for invalid metadata service backend")
	}
}

func TestValidate_ZeroShutdownTimeout(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.ShutdownTimeout = 0

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for zero shutdown timeout")
	}
}

func TestValidate_RangeSizeNotPowerOfTwoMultiple(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Alignment.RangeSize = cfg.Alignment.BlockSize * 3

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for non-power-of-two range size")
	}
}

func TestValidate_PreallocSizeNotBlockAligned(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Alignment.PreallocSize = cfg.Alignment.BlockSize + 1

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for unaligned prealloc size")
	}
}
