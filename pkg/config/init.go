package config

import (
	"fmt"
	"os"
)

// InitConfig writes a sample configuration file at the default location.
// Returns the path written to. Fails if the file already exists unless
// force is true.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	return path, InitConfigToPath(path, force)
}

// InitConfigToPath writes a sample configuration file at path. Fails if the
// file already exists unless force is true.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists at %s (use --force to overwrite)", path)
		}
	}

	cfg := GetDefaultConfig()
	return SaveConfig(cfg, path)
}
