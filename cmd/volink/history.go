package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmsalzman/volink/internal/config"
	"github.com/jmsalzman/volink/internal/journal"
)

var historyOpts struct {
	limit  int
	format string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent volume sync events",
	Long: `Show the most recent volume sync events recorded by the daemon.

Each entry records which device changed, which device was updated to
match, and the propagated volume.

Examples:
  # Last 20 sync events
  volink history

  # Last 5, as JSON
  volink history -n 5 --format json`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyOpts.limit, "limit", "n", 20,
		"Maximum number of events to show")
	historyCmd.Flags().StringVarP(&historyOpts.format, "format", "f", "plain",
		"Output format (plain, json, yaml)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	jnl, err := journal.Open(config.JournalPath())
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer jnl.Close()

	entries := jnl.Recent(historyOpts.limit)

	switch historyOpts.format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "yaml":
		return yaml.NewEncoder(os.Stdout).Encode(entries)
	case "plain":
		if len(entries) == 0 {
			fmt.Println("No sync events recorded.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "WHEN\tFROM\tTO\tVOLUME")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d%%\n",
				humanize.Time(time.Unix(e.Timestamp, 0)),
				displayName(e.FromName, e.FromID),
				displayName(e.ToName, e.ToID),
				int(e.Volume*100+0.5))
		}
		return w.Flush()
	default:
		return fmt.Errorf("unknown format %q (plain, json, yaml)", historyOpts.format)
	}
}
