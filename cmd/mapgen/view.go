package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tilemaps/internal/config"
	"github.com/vovakirdan/tilemaps/internal/platform/tui"
	"github.com/vovakirdan/tilemaps/internal/source"
	"github.com/vovakirdan/tilemaps/internal/tilemap"
)

var (
	flagPlain      bool
	flagNoSegments bool
)

var viewCmd = &cobra.Command{
	Use:   "view [dir|file]",
	Short: "Browse converted maps in the terminal",
	Long: `Browse map records in an interactive viewer.

With no argument the configured output directory is shown. A directory
shows every map record in it. A single file may be a map record or a
level image, which is converted in memory without writing anything.

Legend:
  #  wall           +  boundary tile    S  spawn
  -  horizontal     |  vertical         *  crossing runs    o  lone tile

Examples:
  mapgen view
  mapgen view ./src/maps
  mapgen view ./maps/level1.png
  mapgen view ./src/maps/level1.map.json --plain`,
	Args: cobra.MaximumNArgs(1),
	Run:  runView,
}

func init() {
	viewCmd.Flags().BoolVar(&flagPlain, "plain", false, "Print the map as text instead of opening the viewer")
	viewCmd.Flags().BoolVar(&flagNoSegments, "no-segments", false, "Hide the segment overlay in --plain output")
}

func runView(_ *cobra.Command, args []string) {
	cfg := mustLoadConfig()

	target := cfg.OutputDir
	if len(args) == 1 {
		target = config.ExpandHome(args[0])
	}

	entries, err := loadViewEntries(target, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if flagPlain {
		printPlain(entries)
		return
	}

	// Get terminal size
	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}

	if err := tui.RunBrowser(entries, width, height); err != nil {
		fmt.Fprintf(os.Stderr, "Error running viewer: %v\n", err)
		os.Exit(1)
	}
}

// loadViewEntries resolves a directory or single file to browser entries.
func loadViewEntries(target string, cfg config.Config) ([]tui.MapEntry, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return tui.LoadEntries(target, cfg.OutputSuffix)
	}

	name := filepath.Base(target)
	if strings.HasSuffix(name, cfg.OutputSuffix) || strings.EqualFold(filepath.Ext(name), ".json") {
		rec, err := readRecord(target)
		if err != nil {
			return nil, err
		}
		return []tui.MapEntry{{Name: strings.TrimSuffix(name, cfg.OutputSuffix), Record: rec}}, nil
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return nil, err
	}
	img, err := source.Load(target, data, sourceOptions(cfg))
	if err != nil {
		return nil, err
	}
	return []tui.MapEntry{{Name: name, Record: tilemap.FromImage(img)}}, nil
}

func readRecord(path string) (*tilemap.MapRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rec, err := tilemap.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rec, nil
}

func printPlain(entries []tui.MapEntry) {
	if len(entries) == 0 {
		fmt.Println("No maps found.")
		return
	}

	opts := tilemap.DefaultRenderOptions()
	opts.Segments = !flagNoSegments

	for i, e := range entries {
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("== %s ==\n", e.Name)
		if e.Err != nil {
			fmt.Printf("error: %v\n", e.Err)
			continue
		}
		fmt.Println(tilemap.RenderASCII(e.Record, opts))
	}
}
