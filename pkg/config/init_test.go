package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInitConfig_Success(t *testing.T) {
	tmpDir := t.TempDir()

	oldXDG := os.Getenv("XDG_CONFIG_HOME")
	_ = os.Setenv("XDG_CONFIG_HOME", tmpDir)
	defer func() {
		if oldXDG != "" {
			_ = os.Setenv("XDG_CONFIG_HOME", oldXDG)
		} else {
			_ = os.Unsetenv("XDG_CONFIG_HOME")
		}
	}()

	configPath, err := InitConfig(false)
	if err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatalf("config file was not created at %s", configPath)
	}
}

func TestInitConfig_RefusesToOverwriteWithoutForce(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	if err := InitConfigToPath(path, false); err != nil {
		t.Fatalf("first InitConfigToPath failed: %v", err)
	}

	if err := InitConfigToPath(path, false); err == nil {
		t.Fatal("expected error overwriting existing config without --force")
	}

	if err := InitConfigToPath(path, true); err != nil {
		t.Fatalf("expected force overwrite to succeed, got: %v", err)
	}
}
