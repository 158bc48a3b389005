// Package commands implements the tcpkit CLI commands.
package commands

import (
	"os"

	"github.com/spf13/cobra"

	configcmd "github.com/tcpkit/tcpkit/cmd/tcpkit/commands/config"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Global flags.
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "tcpkit",
	Short: "tcpkit - reactor-based TCP server toolkit",
	Long: `tcpkit is a TCP server toolkit built around acceptor and worker
reactor groups, per-connection pipelines, and an ordered lifecycle.

The serve command runs a framed echo server, useful for trying out the
transport selection, reactor sizing, and shutdown behavior from the
command line.

Use "tcpkit [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/tcpkit/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configcmd.Cmd)
}

// GetConfigFile returns the config file path from the global flag.
func GetConfigFile() string {
	return cfgFile
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}

// Exit prints an error and exits with code 1.
func Exit(format string, args ...any) {
	PrintErr(format, args...)
	os.Exit(1)
}
