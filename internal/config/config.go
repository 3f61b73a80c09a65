// Package config loads and validates routegen configuration.
//
// Configuration is read from a YAML file (default .routegen/config.yaml),
// merged over built-in defaults, and then overridden by any CLI flags the
// user set. The merged value is immutable for the process lifetime and is
// passed explicitly into the generator.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harrison/routegen/internal/manifest"
	"github.com/harrison/routegen/internal/models"
)

// WatchConfig holds file-watching options.
type WatchConfig struct {
	// Debounce is the quiet period used to coalesce rapid file events
	// into a single regeneration trigger
	Debounce time.Duration `yaml:"debounce"`
}

// HistoryConfig holds generation-history store options.
type HistoryConfig struct {
	// Enabled turns on recording of generation runs
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the history database
	DBPath string `yaml:"db_path"`
}

// Config represents routegen configuration options.
type Config struct {
	// Generate maps each source directory to its destination manifest file
	Generate map[string]string `yaml:"generate"`

	// Quotes is the quote character used around import specifiers (' or ")
	Quotes string `yaml:"quotes"`

	// Autoformat runs a formatter command after each manifest write
	Autoformat bool `yaml:"autoformat"`

	// AutoformatCommand overrides the default formatter invocation;
	// the destination path is appended as in the default form
	AutoformatCommand string `yaml:"autoformat_command"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where run logs are written
	LogDir string `yaml:"log_dir"`

	// Watch contains file-watching options
	Watch WatchConfig `yaml:"watch"`

	// History contains generation-history options
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Generate:   map[string]string{},
		Quotes:     manifest.SingleQuote,
		Autoformat: false,
		LogLevel:   "info",
		LogDir:     ".routegen/logs",
		Watch: WatchConfig{
			Debounce: 100 * time.Millisecond,
		},
		History: HistoryConfig{
			Enabled: false,
			DBPath:  ".routegen/history.db",
		},
	}
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Temporary struct so the debounce duration can be parsed from a string.
	type yamlWatch struct {
		Debounce string `yaml:"debounce"`
	}
	type yamlConfig struct {
		Generate          map[string]string `yaml:"generate"`
		Quotes            string            `yaml:"quotes"`
		Autoformat        bool              `yaml:"autoformat"`
		AutoformatCommand string            `yaml:"autoformat_command"`
		LogLevel          string            `yaml:"log_level"`
		LogDir            string            `yaml:"log_dir"`
		Watch             yamlWatch         `yaml:"watch"`
		History           HistoryConfig     `yaml:"history"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if len(yamlCfg.Generate) > 0 {
		cfg.Generate = yamlCfg.Generate
	}
	if yamlCfg.Quotes != "" {
		cfg.Quotes = yamlCfg.Quotes
	}
	if yamlCfg.Autoformat {
		cfg.Autoformat = yamlCfg.Autoformat
	}
	if yamlCfg.AutoformatCommand != "" {
		cfg.AutoformatCommand = yamlCfg.AutoformatCommand
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.LogDir != "" {
		cfg.LogDir = yamlCfg.LogDir
	}
	if yamlCfg.Watch.Debounce != "" {
		debounce, err := time.ParseDuration(yamlCfg.Watch.Debounce)
		if err != nil {
			return nil, fmt.Errorf("invalid watch.debounce format %q: %w", yamlCfg.Watch.Debounce, err)
		}
		cfg.Watch.Debounce = debounce
	}

	// Merge the history section only if it is present in the file.
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if historySection, exists := rawMap["history"]; exists && historySection != nil {
			historyMap, _ := historySection.(map[string]interface{})
			if _, exists := historyMap["enabled"]; exists {
				cfg.History.Enabled = yamlCfg.History.Enabled
			}
			if _, exists := historyMap["db_path"]; exists {
				cfg.History.DBPath = yamlCfg.History.DBPath
			}
		}
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .routegen/config.yaml in the
// specified directory. If the directory or file doesn't exist, returns
// default configuration without error.
func LoadConfigFromDir(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ".routegen", "config.yaml")
	return LoadConfig(configPath)
}

// MergeWithFlags merges CLI flags into the configuration.
// Non-nil flag values override configuration values.
func (c *Config) MergeWithFlags(quotes *string, autoformat *bool, autoformatCommand *string, logDir *string) {
	if quotes != nil {
		c.Quotes = *quotes
	}
	if autoformat != nil {
		c.Autoformat = *autoformat
	}
	if autoformatCommand != nil {
		c.AutoformatCommand = *autoformatCommand
	}
	if logDir != nil {
		c.LogDir = *logDir
	}
}

// Validate validates the configuration values.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	if len(c.Generate) == 0 {
		return fmt.Errorf("generate must contain at least one source -> destination mapping")
	}
	for source, dest := range c.Generate {
		if source == "" {
			return fmt.Errorf("generate contains an empty source directory")
		}
		if dest == "" {
			return fmt.Errorf("generate mapping for %q has an empty destination file", source)
		}
	}

	if c.Quotes != manifest.SingleQuote && c.Quotes != manifest.DoubleQuote {
		return fmt.Errorf("invalid quotes %q, must be ' or \"", c.Quotes)
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must be >= 0, got %v", c.Watch.Debounce)
	}

	if c.History.Enabled && c.History.DBPath == "" {
		return fmt.Errorf("history.db_path cannot be empty when history is enabled")
	}

	return nil
}

// Mappings converts the generate table into an ordered mapping list.
// Entries are sorted by source directory so runs, logs, and history records
// are reproducible; processing order across mappings carries no semantics.
func (c *Config) Mappings() []models.Mapping {
	sources := make([]string, 0, len(c.Generate))
	for source := range c.Generate {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	mappings := make([]models.Mapping, 0, len(sources))
	for _, source := range sources {
		mappings = append(mappings, models.Mapping{
			Source:      source,
			Destination: c.Generate[source],
		})
	}
	return mappings
}
