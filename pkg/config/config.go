// Package config loads curvefs-client configuration from environment
// variables, a YAML file, and built-in defaults, in that order of
// decreasing precedence. Environment variables override only keys present
// in the config file; when no config file is found, the built-in defaults
// are used as they are. Grounded on dittofs's pkg/config package: viper
// for layered config sourcing, mitchellh/mapstructure decode hooks for
// bytesize.ByteSize and time.Duration, gopkg.in/yaml.v3 for round-tripping
// a config file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/curvefs/curvefs-client/internal/bytesize"
)

// Config is the complete curvefs-client configuration.
//
// Configuration sources, in order of precedence:
//  1. Environment variables (CURVEFS_*, highest priority)
//  2. Configuration file (YAML)
//  3. Default values (lowest priority)
type Config struct {
	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry controls OpenTelemetry distributed tracing.
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// Metrics controls Prometheus metrics collection; the metrics are served
	// on the debug API's /metrics endpoint.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// DebugAPI controls the /healthz and /metrics debug HTTP server.
	DebugAPI DebugAPIConfig `mapstructure:"debug_api" yaml:"debug_api"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	// Alignment configures the extent cache's block size, preallocation
	// size, and outer range partition size.
	Alignment AlignmentConfig `mapstructure:"alignment" yaml:"alignment"`

	// Volume configures the collaborators the extent cache is built
	// against: block I/O, block allocation, and metadata persistence.
	Volume VolumeConfig `mapstructure:"volume" yaml:"volume"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized
	// to uppercase).
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format.
	// Valid values: text, json.
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written.
	// Valid values: stdout, stderr, or a file path.
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing. When
// enabled, trace data is exported to an OTLP-compatible collector.
type TelemetryConfig struct {
	// Enabled controls whether distributed tracing is enabled.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP collector endpoint (host:port).
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Insecure controls whether to use an insecure (non-TLS) connection.
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate controls the trace sampling rate (0.0 to 1.0).
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`

	// Profiling contains Pyroscope continuous profiling configuration.
	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls Pyroscope continuous profiling.
type ProfilingConfig struct {
	// Enabled controls whether continuous profiling is enabled.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the Pyroscope server endpoint (URL).
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// ProfileTypes specifies which profile types to collect.
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// MetricsConfig configures the Prometheus metrics registry. When Enabled is
// false, no metrics are collected (zero overhead).
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// DebugAPIConfig configures the /healthz and /metrics HTTP server.
type DebugAPIConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr    string `mapstructure:"addr" validate:"omitempty,hostname_port" yaml:"addr"`
}

// AlignmentConfig maps directly onto extentcache.Options.
type AlignmentConfig struct {
	// BlockSize is the volume's physical block size.
	BlockSize bytesize.ByteSize `mapstructure:"block_size" yaml:"block_size"`

	// PreallocSize is how far DivideForWrite expands an allocation
	// request beyond the immediate write, to amortize allocator calls.
	PreallocSize bytesize.ByteSize `mapstructure:"prealloc_size" yaml:"prealloc_size"`

	// RangeSize is the size of each outer range partition in the cache's
	// two-level map.
	RangeSize bytesize.ByteSize `mapstructure:"range_size" yaml:"range_size"`
}

// VolumeConfig selects and configures the extent cache's collaborators.
type VolumeConfig struct {
	BlockIO         BlockIOConfig         `mapstructure:"block_io" yaml:"block_io"`
	Allocator       AllocatorConfig       `mapstructure:"allocator" yaml:"allocator"`
	MetadataService MetadataServiceConfig `mapstructure:"metadata_service" yaml:"metadata_service"`
}

// BlockIOConfig selects the physical block I/O engine.
type BlockIOConfig struct {
	// Backend selects the engine implementation.
	// Valid values: memory, s3.
	Backend string      `mapstructure:"backend" validate:"required,oneof=memory s3" yaml:"backend"`
	S3      S3IOConfig  `mapstructure:"s3" yaml:"s3"`
}

// S3IOConfig configures the S3-backed block I/O engine.
type S3IOConfig struct {
	Bucket         string `mapstructure:"bucket" yaml:"bucket"`
	Key            string `mapstructure:"key" yaml:"key"`
	Region         string `mapstructure:"region" yaml:"region"`
	Endpoint       string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	ForcePathStyle bool   `mapstructure:"force_path_style" yaml:"force_path_style,omitempty"`
}

// AllocatorConfig selects the block allocator.
type AllocatorConfig struct {
	// Backend selects the allocator implementation.
	// Valid values: memory, rest.
	Backend string             `mapstructure:"backend" validate:"required,oneof=memory rest" yaml:"backend"`
	Memory  MemoryAllocConfig  `mapstructure:"memory" yaml:"memory"`
	Rest    RestAllocConfig    `mapstructure:"rest" yaml:"rest"`
	Audit   AllocatorAuditConfig `mapstructure:"audit" yaml:"audit"`
}

// MemoryAllocConfig configures the in-memory bump allocator.
type MemoryAllocConfig struct {
	VolumeSize bytesize.ByteSize `mapstructure:"volume_size" yaml:"volume_size"`
}

// RestAllocConfig configures the REST-backed allocator client.
type RestAllocConfig struct {
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url" yaml:"base_url"`
	Token   string `mapstructure:"token" yaml:"token,omitempty"`
}

// AllocatorAuditConfig configures the optional Postgres audit log wrapper.
type AllocatorAuditConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	DSN     string `mapstructure:"dsn" yaml:"dsn,omitempty"`
}

// MetadataServiceConfig selects the extent persistence backend.
type MetadataServiceConfig struct {
	// Backend selects the metadataservice.Client implementation.
	// Valid values: badger, postgres, rest.
	Backend  string                 `mapstructure:"backend" validate:"required,oneof=badger postgres rest" yaml:"backend"`
	Badger   BadgerMetadataConfig   `mapstructure:"badger" yaml:"badger"`
	Postgres PostgresMetadataConfig `mapstructure:"postgres" yaml:"postgres"`
	Rest     RestMetadataConfig     `mapstructure:"rest" yaml:"rest"`
}

// BadgerMetadataConfig configures the embedded badger metadata store.
type BadgerMetadataConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// PostgresMetadataConfig configures the PostgreSQL metadata store.
type PostgresMetadataConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
	Database string `mapstructure:"database" yaml:"database"`
	User     string `mapstructure:"user" yaml:"user"`
	Password string `mapstructure:"password" yaml:"password,omitempty"`
	SSLMode  string `mapstructure:"ssl_mode" yaml:"ssl_mode"`
}

// RestMetadataConfig configures the REST-backed metadata service client.
type RestMetadataConfig struct {
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url" yaml:"base_url"`
	Token   string `mapstructure:"token" yaml:"token,omitempty"`
}

// Load loads configuration from file, environment, and defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	configFileFound, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	if !configFileFound {
		cfg := GetDefaultConfig()
		return cfg, nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration with helpful error messages when the config
// file is missing.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please initialize a configuration file first:\n"+
				"  curvefs-client init\n\n"+
				"Or specify a custom config file:\n"+
				"  curvefs-client <command> --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s\n\n"+
			"Please create the configuration file:\n"+
			"  curvefs-client init --config %s",
			configPath, configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to the specified file path in YAML.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// 0600: config files may carry DSNs and tokens.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("CURVEFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		configDir := getConfigDir()
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}

	return true, nil
}

func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

// byteSizeDecodeHook converts strings and numbers to bytesize.ByteSize,
// enabling human-readable sizes like "1Gi" or "4096" in config files.
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return bytesize.ParseByteSize(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

// durationDecodeHook converts strings to time.Duration, enabling
// human-readable durations like "30s" in config files.
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "curvefs-client")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "curvefs-client")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	path := GetDefaultConfigPath()
	_, err := os.Stat(path)
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for the
// init command).
func GetConfigDir() string {
	return getConfigDir()
}
