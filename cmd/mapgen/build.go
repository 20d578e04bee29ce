package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tilemaps/internal/config"
	"github.com/vovakirdan/tilemaps/internal/pipeline"
	"github.com/vovakirdan/tilemaps/internal/storage"
)

var (
	flagInDir       string
	flagOutDir      string
	flagSuffix      string
	flagExts        []string
	flagWorkers     int
	flagIncremental bool
	flagIndent      bool
	flagNoHistory   bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Convert every level image in the input directory",
	Long: `Convert every level image in the input directory into a map record.

Each file is converted independently. A file that cannot be decoded or
written is reported and skipped; the other files are still converted.
The command exits with status 1 if the input directory cannot be read
or any file failed.

Flags override the config file.

Examples:
  mapgen build
  mapgen build --in ./maps --out ./src/maps
  mapgen build --ext .png --ext .tmx
  mapgen build --incremental       # skip levels unchanged since the last build
  mapgen build --workers 1 --indent`,
	Args: cobra.NoArgs,
	Run:  runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&flagInDir, "in", "", "Input directory of level images")
	buildCmd.Flags().StringVar(&flagOutDir, "out", "", "Output directory for map records")
	buildCmd.Flags().StringVar(&flagSuffix, "suffix", "", "Output file suffix (default .map.json)")
	buildCmd.Flags().StringSliceVar(&flagExts, "ext", nil, "Input extensions to convert (repeatable)")
	buildCmd.Flags().IntVar(&flagWorkers, "workers", 0, "Files converted concurrently (0 = one per CPU)")
	buildCmd.Flags().BoolVar(&flagIncremental, "incremental", false, "Skip levels unchanged since their last conversion")
	buildCmd.Flags().BoolVar(&flagIndent, "indent", false, "Pretty-print output JSON")
	buildCmd.Flags().BoolVar(&flagNoHistory, "no-history", false, "Do not record conversions in the history database")
}

// applyBuildFlags copies explicitly set flags over the config.
func applyBuildFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("in") {
		cfg.InputDir = config.ExpandHome(flagInDir)
	}
	if flags.Changed("out") {
		cfg.OutputDir = config.ExpandHome(flagOutDir)
	}
	if flags.Changed("suffix") {
		cfg.OutputSuffix = flagSuffix
	}
	if flags.Changed("ext") {
		cfg.Extensions = flagExts
	}
	if flags.Changed("workers") {
		cfg.Workers = flagWorkers
	}
	if flags.Changed("incremental") {
		cfg.Incremental = flagIncremental
	}
	if flags.Changed("indent") {
		cfg.Indent = flagIndent
	}
	if flagNoHistory {
		cfg.DBPath = ""
	}
}

func runBuild(cmd *cobra.Command, _ []string) {
	cfg := mustLoadConfig()
	applyBuildFlags(cmd, &cfg)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	report, err := build(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	printReport(report)
	if len(report.Failed()) > 0 {
		os.Exit(1)
	}
}

// build runs one conversion pass with history attached when available.
func build(cfg config.Config) (pipeline.Report, error) {
	logger := newLogger(cfg.LogLevel)

	var history pipeline.History
	if cfg.DBPath != "" {
		store, err := storage.Open(cfg.DBPath)
		if err != nil {
			// Continue without history
			logger.Warn("could not open history database", "path", cfg.DBPath, "error", err)
		} else {
			defer store.Close()
			history = store
		}
	}
	if cfg.Incremental && history == nil {
		logger.Warn("incremental builds need the history database; converting every file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	report, err := pipeline.New(pipelineOptions(cfg), logger, history).Run(ctx)
	if err != nil {
		return pipeline.Report{}, err
	}
	logger.Debug("build finished", "elapsed", time.Since(start).Round(time.Millisecond))
	return report, nil
}

func printReport(r pipeline.Report) {
	failed := r.Failed()
	fmt.Printf("Converted %d, up to date %d, failed %d\n", r.Converted(), r.Skipped(), len(failed))

	if len(failed) == 0 {
		return
	}
	fmt.Println()
	fmt.Printf("  %-30s  %-7s  %s\n", "File", "Stage", "Error")
	fmt.Printf("  %-30s  %-7s  %s\n", "----", "-----", "-----")
	for _, res := range failed {
		fmt.Printf("  %-30q  %-7s  %v\n", res.Source, res.Stage, res.Err)
	}
}
