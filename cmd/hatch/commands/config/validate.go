package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/hatch/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the hatch configuration file.

Checks for syntax errors, missing required fields, and invalid values.
Environment overrides are applied before validation.

Examples:
  # Validate default config
  hatch config validate

  # Validate specific config file
  hatch config validate --config /etc/hatch/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	// Get config path from parent's persistent flag
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	displayPath := configPath
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	var warnings []string
	if cfg.Port == 0 {
		warnings = append(warnings, "port is 0; a free port is picked at startup")
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Host == "" {
		warnings = append(warnings, fmt.Sprintf("metrics server listens on all interfaces (port %d)", cfg.Metrics.Port))
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file: %s\n", displayPath)
	_, _ = fmt.Fprintln(out, "Validation: OK")

	if len(warnings) > 0 {
		_, _ = fmt.Fprintln(out, "\nWarnings:")
		for _, w := range warnings {
			_, _ = fmt.Fprintf(out, "  - %s\n", w)
		}
	}

	mode := "sequential"
	if cfg.Parallel {
		mode = "parallel"
	}

	_, _ = fmt.Fprintf(out, "\nConfiguration summary:\n")
	_, _ = fmt.Fprintf(out, "  HTTP port:        %d\n", cfg.Port)
	_, _ = fmt.Fprintf(out, "  Service mode:     %s\n", mode)
	_, _ = fmt.Fprintf(out, "  Shutdown timeout: %s\n", cfg.ShutdownTimeout)
	_, _ = fmt.Fprintf(out, "  Log level:        %s\n", cfg.Logging.Level)

	return nil
}
