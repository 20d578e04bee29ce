package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tilemaps/internal/source"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported input formats",
	Long:  `Shows the file extensions that build and view can read.`,
	Args:  cobra.NoArgs,
	Run:   runFormats,
}

func runFormats(_ *cobra.Command, _ []string) {
	formats := source.List()

	fmt.Println("Supported input formats:")
	fmt.Println()

	// Calculate column widths
	maxExtLen := 9 // "Extension" header
	for _, f := range formats {
		maxExtLen = max(maxExtLen, len(f.Ext))
	}

	fmt.Printf("  %-*s  %s\n", maxExtLen, "Extension", "Description")
	fmt.Printf("  %-*s  %s\n", maxExtLen, "---------", "-----------")
	for _, f := range formats {
		fmt.Printf("  %-*s  %s\n", maxExtLen, f.Ext, f.Description)
	}

	fmt.Println()
	fmt.Println("Select formats with 'mapgen build --ext <ext>' or the extensions config key.")
}
