package config

import (
	"strings"
	"time"

	"github.com/curvefs/curvefs-client/internal/bytesize"
	"github.com/curvefs/curvefs-client/pkg/volume/extentcache"
)

// ApplyDefaults sets default values for any unspecified configuration
// fields. Called after loading from file and environment, before
// validation.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyMetricsDefaults(&cfg.Metrics)
	applyDebugAPIDefaults(&cfg.DebugAPI)
	applyAlignmentDefaults(&cfg.Alignment)
	applyVolumeDefaults(&cfg.Volume)

	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
	applyProfilingDefaults(&cfg.Profiling)
}

func applyProfilingDefaults(cfg *ProfilingConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}
	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = []string{"cpu", "alloc_objects", "alloc_space", "inuse_objects", "inuse_space", "goroutines"}
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	// Enabled defaults to false (opt-in, zero overhead).
}

func applyDebugAPIDefaults(cfg *DebugAPIConfig) {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8090"
	}
}

// applyAlignmentDefaults mirrors extentcache.DefaultOptions so a config
// file that omits the alignment section gets the cache's own defaults.
func applyAlignmentDefaults(cfg *AlignmentConfig) {
	if cfg.BlockSize == 0 {
		cfg.BlockSize = bytesize.ByteSize(extentcache.DefaultBlockSize)
	}
	if cfg.PreallocSize == 0 {
		cfg.PreallocSize = bytesize.ByteSize(extentcache.DefaultPreallocSize)
	}
	if cfg.RangeSize == 0 {
		cfg.RangeSize = bytesize.ByteSize(extentcache.DefaultRangeSize)
	}
}

func applyVolumeDefaults(cfg *VolumeConfig) {
	if cfg.BlockIO.Backend == "" {
		cfg.BlockIO.Backend = "memory"
	}
	if cfg.Allocator.Backend == "" {
		cfg.Allocator.Backend = "memory"
	}
	if cfg.Allocator.Memory.VolumeSize == 0 {
		cfg.Allocator.Memory.VolumeSize = bytesize.ByteSize(bytesize.GiB) * 64
	}
	if cfg.MetadataService.Backend == "" {
		cfg.MetadataService.Backend = "badger"
	}
	if cfg.MetadataService.Badger.Dir == "" {
		cfg.MetadataService.Badger.Dir = "/var/lib/curvefs-client/metadata"
	}
	if cfg.MetadataService.Postgres.Port == 0 {
		cfg.MetadataService.Postgres.Port = 5432
	}
	if cfg.MetadataService.Postgres.SSLMode == "" {
		cfg.MetadataService.Postgres.SSLMode = "disable"
	}
}

// GetDefaultConfig returns a Config struct with all default values applied.
// Useful for generating a sample configuration file or as a starting point
// in tests.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Volume: VolumeConfig{
			BlockIO:   BlockIOConfig{Backend: "memory"},
			Allocator: AllocatorConfig{Backend: "memory"},
			MetadataService: MetadataServiceConfig{
				Backend: "badger",
			},
		},
	}

	ApplyDefaults(cfg)
	return cfg
}
