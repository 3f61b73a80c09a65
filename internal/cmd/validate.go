package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harrison/routegen/internal/config"
)

// NewValidateCommand creates and returns the validate subcommand
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the routegen configuration",
		Long: `Load and validate the configuration without writing anything, checking:
  - The generate table has at least one mapping
  - Option values are well-formed (quotes, log level, debounce)
  - Each source directory exists and is a directory
  - Each destination's parent directory exists (routegen never creates it)
  - No two mappings share a destination file

Exit code: 0 if valid, 1 if errors found`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			return validateConfig(configPath, cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .routegen/config.yaml)")

	return cmd
}

// validateConfig loads the configuration and reports every problem found,
// rather than stopping at the first one.
func validateConfig(configPath string, output io.Writer) error {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
	} else {
		cfg, err = config.LoadConfigFromDir(".")
	}
	if err != nil {
		return err
	}

	var problems []string

	if err := cfg.Validate(); err != nil {
		problems = append(problems, err.Error())
	}

	seen := make(map[string]string)
	for _, m := range cfg.Mappings() {
		info, err := os.Stat(m.Source)
		switch {
		case os.IsNotExist(err):
			problems = append(problems, fmt.Sprintf("mapping %s: source directory does not exist", m.Source))
		case err != nil:
			problems = append(problems, fmt.Sprintf("mapping %s: cannot access source directory: %v", m.Source, err))
		case !info.IsDir():
			problems = append(problems, fmt.Sprintf("mapping %s: source path is not a directory", m.Source))
		}

		destDir := filepath.Dir(m.Destination)
		if info, err := os.Stat(destDir); err != nil || !info.IsDir() {
			problems = append(problems,
				fmt.Sprintf("mapping %s: destination directory %s does not exist (it is never created)", m.Source, destDir))
		}

		dest := filepath.Clean(m.Destination)
		if prev, dup := seen[dest]; dup {
			problems = append(problems,
				fmt.Sprintf("mappings %s and %s share destination %s (last write wins)", prev, m.Source, m.Destination))
		}
		seen[dest] = m.Source
	}

	if len(problems) > 0 {
		fmt.Fprintf(output, "Configuration has %d problem(s):\n", len(problems))
		for _, p := range problems {
			fmt.Fprintf(output, "  - %s\n", p)
		}
		return fmt.Errorf("configuration is invalid")
	}

	fmt.Fprintf(output, "Configuration is valid: %d mapping(s)\n", len(cfg.Mappings()))
	for _, m := range cfg.Mappings() {
		fmt.Fprintf(output, "  %s -> %s\n", m.Source, m.Destination)
	}

	return nil
}
