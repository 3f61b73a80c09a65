package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrison/routegen/internal/config"
	"github.com/harrison/routegen/internal/formatter"
	"github.com/harrison/routegen/internal/history"
	"github.com/harrison/routegen/internal/logger"
	"github.com/harrison/routegen/internal/manifest"
	"github.com/harrison/routegen/internal/models"
)

// NewGenerateCommand creates the generate command
func NewGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Regenerate all configured route manifests once",
		Long: `Regenerate every configured manifest in a single pass.

Each mapping in the config's generate table is processed independently:
its source directory is scanned recursively, .js and .ts files become
import entries bound as route1..routeN in scan order, and the manifest is
written wholesale to the destination file. A failing mapping never stops
the others; the command exits non-zero if any mapping failed.

Configuration is loaded from .routegen/config.yaml if present.
CLI flags override configuration file settings.

Examples:
  routegen generate
  routegen generate --config routegen.yaml
  routegen generate --quotes '"'          # double-quoted specifiers
  routegen generate --autoformat          # run prettier after each write
  routegen generate --verbose             # show debug output`,
		Args: cobra.NoArgs,
		RunE: generateCommand,
	}

	addGenerationFlags(cmd)

	return cmd
}

// addGenerationFlags registers the flags shared by generate and watch.
func addGenerationFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Path to config file (default: .routegen/config.yaml)")
	cmd.Flags().String("quotes", "", `Quote character for import specifiers (' or ")`)
	cmd.Flags().Bool("autoformat", false, "Run a formatter command after each manifest write")
	cmd.Flags().String("autoformat-command", "", "Formatter command (destination path is appended)")
	cmd.Flags().String("log-dir", "", "Directory for log files")
	cmd.Flags().Bool("verbose", false, "Show detailed output")
}

// loadMergedConfig loads the config file and merges changed CLI flags over it.
func loadMergedConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.LoadConfigFromDir(".")
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	// Build flag pointers for merge (only values the user set)
	var quotesPtr *string
	if cmd.Flags().Changed("quotes") {
		quotes, _ := cmd.Flags().GetString("quotes")
		quotesPtr = &quotes
	}

	var autoformatPtr *bool
	if cmd.Flags().Changed("autoformat") {
		autoformat, _ := cmd.Flags().GetBool("autoformat")
		autoformatPtr = &autoformat
	}

	var autoformatCommandPtr *string
	if cmd.Flags().Changed("autoformat-command") {
		autoformatCommand, _ := cmd.Flags().GetString("autoformat-command")
		autoformatCommandPtr = &autoformatCommand
	}

	var logDirPtr *string
	if cmd.Flags().Changed("log-dir") {
		logDir, _ := cmd.Flags().GetString("log-dir")
		logDirPtr = &logDir
	}

	cfg.MergeWithFlags(quotesPtr, autoformatPtr, autoformatCommandPtr, logDirPtr)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupGenerator wires a Generator with loggers, formatter, and history
// store from the merged config. The returned cleanup closes log files and
// the history store.
func setupGenerator(cmd *cobra.Command, cfg *config.Config) (*manifest.Generator, *history.Store, func(), error) {
	logLevel := cfg.LogLevel
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logLevel = "debug"
	}

	consoleLog := logger.NewConsoleLogger(os.Stdout, logLevel)

	fileLog, err := logger.NewFileLogger(cfg.LogDir, logLevel)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create file logger: %w", err)
	}

	gen := manifest.NewGenerator(cfg.Mappings(), cfg.Quotes)
	gen.SetLogger(&multiLogger{loggers: []manifest.Logger{consoleLog, fileLog}})

	if cfg.Autoformat {
		gen.SetFormatter(formatter.New(cfg.AutoformatCommand))
	}

	var store *history.Store
	if cfg.History.Enabled {
		store, err = history.NewStore(cfg.History.DBPath)
		if err != nil {
			fileLog.Close()
			return nil, nil, nil, fmt.Errorf("failed to open history store: %w", err)
		}
	}

	cleanup := func() {
		fileLog.Close()
		if store != nil {
			store.Close()
		}
	}

	return gen, store, cleanup, nil
}

// generateCommand implements the generate command logic
func generateCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadMergedConfig(cmd)
	if err != nil {
		return err
	}

	gen, store, cleanup, err := setupGenerator(cmd, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	run := gen.GenerateAll(context.Background())

	if store != nil {
		if err := store.RecordRun(run); err != nil {
			fmt.Fprintf(cmd.OutOrStderr(), "Warning: failed to record run history: %v\n", err)
		}
	}

	if failed := run.Failed(); failed > 0 {
		return fmt.Errorf("%d mapping(s) failed", failed)
	}

	return nil
}

// multiLogger implements manifest.Logger by delegating to multiple loggers
type multiLogger struct {
	loggers []manifest.Logger
}

// LogRunStart forwards to all loggers
func (ml *multiLogger) LogRunStart(runID string, mappingCount int) {
	for _, l := range ml.loggers {
		l.LogRunStart(runID, mappingCount)
	}
}

// LogMappingResult forwards to all loggers
func (ml *multiLogger) LogMappingResult(result models.MappingResult) {
	for _, l := range ml.loggers {
		l.LogMappingResult(result)
	}
}

// LogFormatResult forwards to all loggers
func (ml *multiLogger) LogFormatResult(dest string, err error) {
	for _, l := range ml.loggers {
		l.LogFormatResult(dest, err)
	}
}

// LogSummary forwards to all loggers
func (ml *multiLogger) LogSummary(result models.RunResult) {
	for _, l := range ml.loggers {
		l.LogSummary(result)
	}
}
