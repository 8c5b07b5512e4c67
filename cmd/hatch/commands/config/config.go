// Package config implements the "hatch config" subcommands.
package config

import (
	"github.com/spf13/cobra"
)

// Cmd groups the commands that inspect the effective configuration.
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the hatch configuration",
	Long: `Inspect the configuration hatch start would run with.

The effective configuration merges the config file, HATCH_* variables and
the PORT, PARALLEL and SHUTDOWN_TIMEOUT variables. Create a config file with
'hatch init'.

Subcommands:
  validate  Check the effective configuration and report warnings
  show      Print the effective configuration (yaml, json or table)
  schema    Write the JSON schema of the config file`,
}

func init() {
	Cmd.AddCommand(validateCmd, showCmd, schemaCmd)
}
