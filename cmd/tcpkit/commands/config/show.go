package config

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tcpkit/tcpkit/internal/cli/output"
	"github.com/tcpkit/tcpkit/pkg/config"
)

var showOutput string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long: `Display the effective tcpkit configuration after defaults and
environment overrides are applied.

Examples:
  # Show effective config as YAML
  tcpkit config show

  # Show as JSON
  tcpkit config show --output json

  # Show a specific config file
  tcpkit config show --config /etc/tcpkit/config.yaml`,
	RunE: runConfigShow,
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "yaml", "Output format (yaml|json)")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(showOutput)
	if err != nil {
		return err
	}

	return output.Print(os.Stdout, format, cfg)
}
