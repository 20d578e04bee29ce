package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tilemaps/internal/platform/tui"
	"github.com/vovakirdan/tilemaps/internal/storage"
)

var (
	flagHistoryLimit int
	flagHistoryTUI   bool
	flagHistoryStats bool
	flagHistoryClear bool
)

var historyCmd = &cobra.Command{
	Use:   "history [file]",
	Short: "Show past conversions",
	Long: `Show recorded conversions, newest first.

With a file name only that level's conversions are shown.

Examples:
  mapgen history
  mapgen history level1.png
  mapgen history --limit 50
  mapgen history --stats
  mapgen history --tui
  mapgen history --clear`,
	Args: cobra.MaximumNArgs(1),
	Run:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "Maximum number of conversions to show")
	historyCmd.Flags().BoolVar(&flagHistoryTUI, "tui", false, "Open the interactive history table")
	historyCmd.Flags().BoolVar(&flagHistoryStats, "stats", false, "Show per-file summary instead of individual runs")
	historyCmd.Flags().BoolVar(&flagHistoryClear, "clear", false, "Delete all recorded conversions")
}

func runHistory(_ *cobra.Command, args []string) {
	cfg := mustLoadConfig()
	if cfg.DBPath == "" {
		fmt.Fprintln(os.Stderr, "Error: history is disabled (db_path is empty)")
		os.Exit(1)
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening history database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := showHistory(store, args); err != nil {
		store.Close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func showHistory(store *storage.Store, args []string) error {
	switch {
	case flagHistoryClear:
		if err := store.ClearHistory(); err != nil {
			return err
		}
		fmt.Println("History cleared.")
		return nil

	case flagHistoryTUI:
		width, height := 80, 24
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width, height = w, h
		}
		return tui.RunHistory(store, width, height)

	case flagHistoryStats:
		return printStats(store)
	}

	var (
		conversions []storage.Conversion
		err         error
	)
	if len(args) == 1 {
		conversions, err = store.ConversionsFor(args[0], flagHistoryLimit)
	} else {
		conversions, err = store.RecentConversions(flagHistoryLimit)
	}
	if err != nil {
		return err
	}

	if len(conversions) == 0 {
		fmt.Println("No conversions recorded yet.")
		fmt.Println()
		fmt.Println("Run 'mapgen build' to convert your levels.")
		return nil
	}

	fmt.Printf("  %-16s  %-24s  %-7s  %-6s  %6s  %6s  %6s\n", "Date", "File", "Status", "Stage", "Walls", "Segs", "ms")
	fmt.Printf("  %-16s  %-24s  %-7s  %-6s  %6s  %6s  %6s\n", "----", "----", "------", "-----", "-----", "----", "--")
	for _, c := range conversions {
		fmt.Printf("  %-16s  %-24s  %-7s  %-6s  %6d  %6d  %6d\n",
			c.CreatedAt.Local().Format("2006-01-02 15:04"),
			c.Source, c.Status, c.Stage, c.Walls, c.Segments, c.DurationMs)
		if c.Error != "" {
			fmt.Printf("      %s\n", c.Error)
		}
	}
	return nil
}

func printStats(store *storage.Store) error {
	stats, err := store.GetSourceStats()
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		fmt.Println("No conversions recorded yet.")
		return nil
	}

	fmt.Printf("  %-24s  %5s  %8s  %-7s  %6s  %8s  %s\n", "File", "Runs", "Failures", "Last", "Walls", "Avg ms", "Last run")
	fmt.Printf("  %-24s  %5s  %8s  %-7s  %6s  %8s  %s\n", "----", "----", "--------", "----", "-----", "------", "--------")
	for _, s := range stats {
		fmt.Printf("  %-24s  %5d  %8d  %-7s  %6d  %8.1f  %s\n",
			s.Source, s.Runs, s.Failures, s.LastStatus, s.LastWalls, s.AvgDuration,
			s.LastRun.Local().Format("2006-01-02 15:04"))
	}
	return nil
}
