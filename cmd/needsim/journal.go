package main

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/needsim/internal/events"
	"github.com/talgya/needsim/internal/persistence"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var journalLimit int

var journalCmd = &cobra.Command{
	Use:   "journal [db]",
	Short: "Show recent events and the goal mix from a journal",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		} else {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			path = cfg.Storage.Path
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("journal %q: %w", path, err)
		}
		db, err := persistence.Open(path)
		if err != nil {
			return err
		}
		defer db.Close()

		out := cmd.OutOrStdout()
		rows, err := db.RecentEvents(journalLimit)
		if err != nil {
			return err
		}
		for _, r := range rows {
			at := time.UnixMilli(r.At).UTC().Format("2006-01-02 15:04:05")
			fmt.Fprintf(out, "%8d  %s  %-16s agent=%-4d %s%s\n", r.Tick, at, r.Kind, r.AgentID, r.Need, r.Cause)
		}
		counts, err := db.GoalTypeCounts()
		if err != nil {
			return err
		}
		for _, t := range slices.Sorted(maps.Keys(counts)) {
			fmt.Fprintf(out, "%-14s %s\n", t, humanize.Comma(int64(counts[t])))
		}
		return nil
	},
}

func init() {
	journalCmd.Flags().IntVarP(&journalLimit, "limit", "n", 20, "events to show")
}

// summarize logs the journal totals after a run.
func summarize(db *persistence.DB) {
	deaths, err := db.CountEvents(events.AgentDeath)
	if err != nil {
		slog.Warn("journal summary failed", "error", err)
		return
	}
	critical, _ := db.CountEvents(events.NeedCritical)
	last, _, _ := db.LastTick()
	slog.Info("journal summary",
		"last_tick", humanize.Comma(int64(last)),
		"deaths", deaths,
		"critical", humanize.Comma(int64(critical)),
	)
}
