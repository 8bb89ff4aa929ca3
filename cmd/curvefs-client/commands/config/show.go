package config

import (
	"os"

	"github.com/curvefs/curvefs-client/internal/cli/output"
	"github.com/curvefs/curvefs-client/pkg/config"
	"github.com/spf13/cobra"
)

var showOutput string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long: `Display the current curvefs-client configuration.

By default outputs YAML format. Use --output to change format.

Examples:
  # Show default config as YAML
  curvefs-client config show

  # Show as JSON
  curvefs-client config show --output json

  # Show specific config file
  curvefs-client config show --config /etc/curvefs-client/config.yaml`,
	RunE: runConfigShow,
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "yaml", "Output format (yaml|json)")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(showOutput)
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, cfg)
	default:
		return output.PrintYAML(os.Stdout, cfg)
	}
}
