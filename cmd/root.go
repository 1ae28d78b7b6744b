package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the schedly application
var rootCmd = &cobra.Command{
	Use:   "schedly",
	Short: "Builds a shared weekly availability grid from calendar busy times",
	Long: `schedly merges the busy times of a group of participants into a weekly
availability grid of 30-minute slots, and validates candidate event times
against it.

Busy times come from Google Calendar, subscribed ICS feeds, or an in-memory
store, depending on configuration.

It can run as:
  - A standalone CLI tool (default)
  - A periodic watcher that refreshes the grid on a cron schedule
  - An MCP (Model Context Protocol) server for AI assistants`,
	SilenceUsage: true,
}

// configPath is the shared --config flag value.
var configPath string

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "schedly version %s\n" .Version}}`)

	// If no subcommand is provided, run the check command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "check")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the configuration file (default: user config dir)")

	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
