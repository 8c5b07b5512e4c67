package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marmos91/hatch/internal/cli/output"
	"github.com/marmos91/hatch/pkg/config"
)

var showOutput string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long: `Display the effective hatch configuration, after defaults, the config
file and environment variables have been applied.

By default outputs YAML format. Use --output to change format.

Examples:
  # Show default config as YAML
  hatch config show

  # Show as JSON
  hatch config show --output json

  # Show the lifecycle settings as a table
  PORT=8080 hatch config show --output table`,
	RunE: runConfigShow,
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "yaml", "Output format (yaml|json|table)")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	// Get config path from parent's persistent flag
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(showOutput, output.FormatYAML)
	if err != nil {
		return err
	}

	if format == output.FormatTable {
		return output.PrintTable(cmd.OutOrStdout(), summary(cfg))
	}
	return output.Print(cmd.OutOrStdout(), format, cfg)
}

// summary lists the settings most often overridden.
func summary(cfg *config.Config) output.KeyValues {
	var kv output.KeyValues
	kv.Add("host", orDash(cfg.Host))
	kv.Add("port", fmt.Sprint(cfg.Port))
	kv.Add("parallel", fmt.Sprint(cfg.Parallel))
	kv.Add("shutdown_timeout", cfg.ShutdownTimeout.String())
	kv.Add("logging.level", cfg.Logging.Level)
	kv.Add("logging.format", cfg.Logging.Format)
	kv.Add("telemetry.enabled", fmt.Sprint(cfg.Telemetry.Enabled))
	kv.Add("telemetry.profiling.enabled", fmt.Sprint(cfg.Telemetry.Profiling.Enabled))
	if len(cfg.Telemetry.Profiling.ProfileTypes) > 0 {
		kv.Add("telemetry.profiling.profile_types", strings.Join(cfg.Telemetry.Profiling.ProfileTypes, ","))
	}
	kv.Add("metrics.enabled", fmt.Sprint(cfg.Metrics.Enabled))
	kv.Add("metrics.port", fmt.Sprint(cfg.Metrics.Port))
	kv.Add("journal.enabled", fmt.Sprint(cfg.Journal.Enabled))
	kv.Add("journal.database.type", string(cfg.Journal.Database.Type))
	return kv
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
