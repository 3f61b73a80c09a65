package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harrison/routegen/internal/watcher"
)

// NewWatchCommand creates the watch command
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch source directories and regenerate manifests on change",
		Long: `Watch every configured source directory recursively and regenerate all
manifests whenever a file changes.

The trigger carries no information about which file changed: every event
burst causes a full rescan of every mapping, which is always consistent
regardless of what changed. Rapid bursts are coalesced with a debounce
window (watch.debounce, default 100ms). Writes to the destination files
themselves are ignored so regeneration does not re-trigger itself.

An initial regeneration pass runs at startup. The command keeps running
until interrupted (Ctrl-C / SIGTERM); mapping failures are logged and
watching continues.

Examples:
  routegen watch
  routegen watch --config routegen.yaml
  routegen watch --autoformat --verbose`,
		Args: cobra.NoArgs,
		RunE: watchCommand,
	}

	addGenerationFlags(cmd)

	return cmd
}

// watchCommand implements the watch command logic
func watchCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadMergedConfig(cmd)
	if err != nil {
		return err
	}

	gen, store, cleanup, err := setupGenerator(cmd, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown on SIGINT/SIGTERM
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			fmt.Fprintf(cmd.OutOrStdout(), "\nReceived interrupt signal, shutting down...\n")
			cancel()
		case <-ctx.Done():
		}
	}()

	recordRun := func() {
		run := gen.GenerateAll(ctx)
		if store != nil {
			if err := store.RecordRun(run); err != nil {
				fmt.Fprintf(cmd.OutOrStderr(), "Warning: failed to record run history: %v\n", err)
			}
		}
	}

	// Initial pass so the manifests are current before the first change.
	recordRun()

	var roots, destinations []string
	for _, m := range gen.Mappings() {
		roots = append(roots, m.Source)
		destinations = append(destinations, m.Destination)
	}

	w, err := watcher.New(roots, destinations, cfg.Watch.Debounce)
	if err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	defer w.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %d directory tree(s) for changes...\n", len(roots))

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.Triggers():
			recordRun()
		case err := <-w.Errors():
			fmt.Fprintf(cmd.OutOrStderr(), "Warning: watcher error: %v\n", err)
		}
	}
}
