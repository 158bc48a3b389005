package config

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tcpkit/tcpkit/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Write a configuration file populated with the default values.

By default the file is created at $XDG_CONFIG_HOME/tcpkit/config.yaml.
Use --config to specify a custom path.

Examples:
  # Initialize at the default location
  tcpkit config init

  # Initialize at a custom path
  tcpkit config init --config /etc/tcpkit/config.yaml

  # Overwrite an existing file
  tcpkit config init --force`,
	RunE: runConfigInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	if _, err := os.Stat(configPath); err == nil && !initForce {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", configPath)
	}

	if err := config.SaveConfig(config.GetDefaultConfig(), configPath); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file to customize your setup")
	fmt.Printf("  2. Start the echo server with: tcpkit serve --config %s\n", configPath)
	return nil
}
