// mapgen converts level images into map records for the game client.
//
// Usage:
//
//	mapgen build              - Convert every level image in the input directory
//	mapgen view [dir|file]    - Browse converted maps in the terminal
//	mapgen render <file>      - Draw a map record to a PNG for debugging
//	mapgen history [name]     - Show past conversions
//	mapgen serve              - Serve the map browser over SSH
//	mapgen formats            - List supported input formats
//
// Global flags:
//
//	--config <path>     - Config file (default: ~/.mapgen/mapgen.yaml, then ./configs/mapgen.yaml)
//	--log-level <level> - debug, info, warn or error
//	--db <path>         - Conversion history database (default: ~/.mapgen/history.db)
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tilemaps/internal/config"
	"github.com/vovakirdan/tilemaps/internal/pipeline"
	"github.com/vovakirdan/tilemaps/internal/source"
)

var (
	// Global flags
	flagConfig   string
	flagLogLevel string
	flagDBPath   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mapgen",
	Short: "mapgen - Convert level images into map records",
	Long: `mapgen turns level images into map records: wall tiles, spawn tiles and
the reduced set of wall segments used for collision.

A pixel that is opaque pure black is a wall, opaque pure red is a spawn
point. Everything else is empty floor.

Available commands:
  build    - Convert every level in the input directory
  view     - Browse converted maps
  render   - Draw a map record to a PNG
  history  - Show past conversions
  serve    - Serve the map browser over SSH
  formats  - List supported input formats

Examples:
  mapgen build --in ./maps --out ./src/maps
  mapgen build --incremental --workers 4
  mapgen view ./src/maps
  mapgen render ./src/maps/level1.map.json -o level1.png --scale 8`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to conversion history database")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(formatsCmd)
}

// loadConfig loads the config file and applies the global flags.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, err
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if flagDBPath != "" {
		cfg.DBPath = flagDBPath
	}
	cfg.InputDir = config.ExpandHome(cfg.InputDir)
	cfg.OutputDir = config.ExpandHome(cfg.OutputDir)
	return cfg, nil
}

// mustLoadConfig is loadConfig for commands that cannot continue without it.
func mustLoadConfig() config.Config {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// newLogger creates the stderr logger used by every command.
func newLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "mapgen",
	})
	if lvl, err := log.ParseLevel(strings.ToLower(level)); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}

// sourceOptions converts the TMX settings into loader options.
func sourceOptions(cfg config.Config) source.Options {
	opts := source.DefaultOptions()
	if cfg.TMX.WallLayer != "" {
		opts.TMX.WallLayer = cfg.TMX.WallLayer
	}
	if cfg.TMX.SpawnGroup != "" {
		opts.TMX.SpawnGroup = cfg.TMX.SpawnGroup
	}
	return opts
}

// pipelineOptions converts a validated config into runner options.
func pipelineOptions(cfg config.Config) pipeline.Options {
	return pipeline.Options{
		InputDir:    cfg.InputDir,
		OutputDir:   cfg.OutputDir,
		Suffix:      cfg.OutputSuffix,
		Extensions:  cfg.Extensions,
		Workers:     cfg.Workers,
		Incremental: cfg.Incremental,
		Indent:      cfg.Indent,
		Source:      sourceOptions(cfg),
	}
}
