package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_NoConfigFileUsesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	cfg, err := Load(filepath.Join(tmpDir, "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Logging.Level != "INFO" {
		t.Errorf("expected default logging level INFO, got %q", cfg.Logging.Level)
	}
	if cfg.Volume.BlockIO.Backend != "memory" {
		t.Errorf("expected default block I/O backend memory, got %q", cfg.Volume.BlockIO.Backend)
	}
}

func TestLoad_ConfigFileOverridesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
logging:
  level: "DEBUG"
  format: "json"
  output: "stdout"
shutdown_timeout: 10s
alignment:
  block_size: 4096
  prealloc_size: 65536
  range_size: 1073741824
volume:
  block_io:
    backend: memory
  allocator:
    backend: memory
  metadata_service:
    backend: badger
    badger:
      dir: "` + filepath.ToSlash(tmpDir) + `/metadata"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("expected logging level DEBUG, got %q", cfg.Logging.Level)
	}
	if cfg.Alignment.RangeSize != 1073741824 {
		t.Errorf("expected range size 1073741824, got %d", cfg.Alignment.RangeSize)
	}
	if cfg.Volume.MetadataService.Badger.Dir == "" {
		t.Error("expected badger dir to be set from config file")
	}
}

func TestLoad_RejectsInvalidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
logging:
  level: "NOT_A_LEVEL"
  format: "text"
  output: "stdout"
volume:
  block_io:
    backend: memory
  allocator:
    backend: memory
  metadata_service:
    backend: badger
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Fatal("expected validation error for invalid log level")
	}
}

func TestSaveConfig_RoundTrips(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	cfg := GetDefaultConfig()
	cfg.Logging.Level = "WARN"

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Logging.Level != "WARN" {
		t.Errorf("expected logging level WARN after round trip, got %q", loaded.Logging.Level)
	}
}
