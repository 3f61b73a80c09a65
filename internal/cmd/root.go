package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for routegen
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routegen",
		Short: "Route manifest generator for file-per-route projects",
		Long: `Routegen scans configured source directories for .js and .ts files and
generates, per mapping, a single module that imports each file and
re-exports them as an ordered array.

It replaces hand-maintained import lists in projects that follow a
file-per-route convention: point a mapping at your routes directory and
routegen keeps the aggregate module current, either one-shot (generate)
or continuously on file changes (watch).`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.AddCommand(NewGenerateCommand())
	cmd.AddCommand(NewWatchCommand())
	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
