// Package commands implements the CLI commands of the hatch server.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/hatch/cmd/hatch/commands/config"
)

var (
	// Version, Commit and Date describe the build; main sets them from ldflags.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "hatch",
	Short: "Hatch - HTTP server with managed service lifecycle",
	Long: `Hatch starts an HTTP server together with the services it depends on,
and shuts them down gracefully on SIGINT or SIGTERM.

Services start sequentially or in parallel (PARALLEL), the server listens on
PORT, and the shutdown sequence is bounded by SHUTDOWN_TIMEOUT milliseconds.

Use "hatch [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command selected by the process arguments. main prints
// the returned error and exits 1.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/hatch/config.yaml)")

	rootCmd.AddCommand(versionCmd, startCmd, initCmd, config.Cmd, completionCmd)

	// completion.go provides the completion command.
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// GetConfigFile returns the --config flag value.
func GetConfigFile() string {
	return cfgFile
}
