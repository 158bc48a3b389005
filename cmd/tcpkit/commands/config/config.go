// Package config implements the config subcommands.
package config

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for configuration management.
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Manage tcpkit configuration",
	Long:  `Inspect and initialize tcpkit configuration files.`,
}

func init() {
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(initCmd)
}
