package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/routegen/internal/config"
	"github.com/harrison/routegen/internal/history"
)

// NewHistoryCommand creates the history command and its subcommands
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded generation runs",
		Long: `Inspect the generation history recorded by the optional history store
(history.enabled in the configuration). Generation itself never reads
this data; it exists purely for inspection.`,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file (default: .routegen/config.yaml)")

	cmd.AddCommand(newHistoryShowCommand())
	cmd.AddCommand(newHistoryStatsCommand())

	return cmd
}

// openHistoryStore loads config and opens the history store it names.
func openHistoryStore(cmd *cobra.Command) (*history.Store, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
	} else {
		cfg, err = config.LoadConfigFromDir(".")
	}
	if err != nil {
		return nil, err
	}

	if !cfg.History.Enabled {
		return nil, fmt.Errorf("history is not enabled; set history.enabled: true in the configuration")
	}

	return history.NewStore(cfg.History.DBPath)
}

func newHistoryShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show recent generation runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			store, err := openHistoryStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.RecentRuns(limit)
			if err != nil {
				return err
			}

			printRunRecords(cmd.OutOrStdout(), records)
			return nil
		},
	}

	cmd.Flags().Int("limit", 20, "Maximum number of records to show")

	return cmd
}

func newHistoryStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show per-mapping aggregate statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistoryStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.Stats()
			if err != nil {
				return err
			}

			printMappingStats(cmd.OutOrStdout(), stats)
			return nil
		},
	}
}

func printRunRecords(output io.Writer, records []history.RunRecord) {
	if len(records) == 0 {
		fmt.Fprintln(output, "No generation runs recorded yet.")
		return
	}

	fmt.Fprintf(output, "Recent generation runs (%d):\n", len(records))
	for _, r := range records {
		status := "ok"
		if !r.Success {
			status = "FAILED: " + r.ErrorMessage
		}
		fmt.Fprintf(output, "  %s  %s -> %s  %d import(s)  %dms  %s\n",
			r.Timestamp.Format(time.RFC3339), r.Source, r.Destination, r.ImportCount, r.DurationMS, status)
	}
}

func printMappingStats(output io.Writer, stats []history.MappingStats) {
	if len(stats) == 0 {
		fmt.Fprintln(output, "No generation runs recorded yet.")
		return
	}

	fmt.Fprintln(output, "Per-mapping statistics:")
	for _, st := range stats {
		fmt.Fprintf(output, "  %s -> %s\n", st.Source, st.Destination)
		fmt.Fprintf(output, "    runs: %d, failures: %d, avg imports: %.1f, last run: %s\n",
			st.Runs, st.Failures, st.AvgImports, st.LastRun.Format(time.RFC3339))
	}
}
