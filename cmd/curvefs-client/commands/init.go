package commands

import (
	"fmt"

	"github.com/curvefs/curvefs-client/pkg/config"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a sample curvefs-client configuration file.

By default, the configuration file is created at
$XDG_CONFIG_HOME/curvefs-client/config.yaml. Use --config to specify a
custom path.

Examples:
  # Initialize with default location
  curvefs-client init

  # Initialize with custom path
  curvefs-client init --config /etc/curvefs-client/config.yaml

  # Force overwrite existing config
  curvefs-client init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	var configPath string
	var err error

	if configFile != "" {
		err = config.InitConfigToPath(configFile, initForce)
		configPath = configFile
	} else {
		configPath, err = config.InitConfig(initForce)
	}

	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file to select block I/O, allocator, and metadata service backends")
	fmt.Println("  2. Start the daemon with: curvefs-client start")
	fmt.Printf("  3. Or specify custom config: curvefs-client start --config %s\n", configPath)

	return nil
}
