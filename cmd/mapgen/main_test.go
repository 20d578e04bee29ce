package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/tilemaps/internal/config"
	"github.com/vovakirdan/tilemaps/internal/storage"
	"github.com/vovakirdan/tilemaps/internal/tilemap"
)

func writeLevel(t *testing.T, path string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	for x := 0; x < 3; x++ {
		img.SetNRGBA(x, 0, color.NRGBA{A: 255})
	}
	img.SetNRGBA(3, 1, color.NRGBA{R: 255, A: 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.InputDir = t.TempDir()
	cfg.OutputDir = filepath.Join(t.TempDir(), "out")
	cfg.DBPath = filepath.Join(t.TempDir(), "history.db")
	cfg.LogLevel = "error"
	return cfg
}

func TestBuildWritesRecordsAndHistory(t *testing.T) {
	cfg := testConfig(t)
	writeLevel(t, filepath.Join(cfg.InputDir, "level1.png"))

	report, err := build(cfg)
	if err != nil {
		t.Fatalf("build() failed: %v", err)
	}
	if report.Converted() != 1 || len(report.Failed()) != 0 {
		t.Fatalf("converted=%d failed=%d", report.Converted(), len(report.Failed()))
	}

	rec, err := readRecord(filepath.Join(cfg.OutputDir, "level1.map.json"))
	if err != nil {
		t.Fatalf("readRecord() failed: %v", err)
	}
	if len(rec.WallTiles) != 3 || len(rec.SpawnTiles) != 1 {
		t.Errorf("record walls=%d spawns=%d, want 3 and 1", len(rec.WallTiles), len(rec.SpawnTiles))
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		t.Fatalf("storage.Open() failed: %v", err)
	}
	defer store.Close()
	recent, err := store.RecentConversions(10)
	if err != nil {
		t.Fatalf("RecentConversions() failed: %v", err)
	}
	if len(recent) != 1 || recent[0].Source != "level1.png" || recent[0].Walls != 3 {
		t.Errorf("history = %+v", recent)
	}
}

func TestBuildIncrementalSkipsUnchanged(t *testing.T) {
	cfg := testConfig(t)
	cfg.Incremental = true
	writeLevel(t, filepath.Join(cfg.InputDir, "level1.png"))

	if _, err := build(cfg); err != nil {
		t.Fatalf("first build() failed: %v", err)
	}
	report, err := build(cfg)
	if err != nil {
		t.Fatalf("second build() failed: %v", err)
	}
	if report.Skipped() != 1 {
		t.Errorf("Skipped() = %d, want 1", report.Skipped())
	}
}

func TestBuildMissingInputIsFatal(t *testing.T) {
	cfg := testConfig(t)
	cfg.InputDir = filepath.Join(cfg.InputDir, "missing")
	cfg.DBPath = ""

	if _, err := build(cfg); err == nil {
		t.Error("expected error for missing input directory")
	}
}

func TestLoadViewEntries(t *testing.T) {
	cfg := testConfig(t)
	level := filepath.Join(cfg.InputDir, "level1.png")
	writeLevel(t, level)

	t.Run("image file", func(t *testing.T) {
		entries, err := loadViewEntries(level, cfg)
		if err != nil {
			t.Fatalf("loadViewEntries() failed: %v", err)
		}
		if len(entries) != 1 || entries[0].Name != "level1.png" || len(entries[0].Record.WallTiles) != 3 {
			t.Errorf("entries = %+v", entries)
		}
	})

	if _, err := build(cfg); err != nil {
		t.Fatalf("build() failed: %v", err)
	}

	t.Run("record file", func(t *testing.T) {
		entries, err := loadViewEntries(filepath.Join(cfg.OutputDir, "level1.map.json"), cfg)
		if err != nil {
			t.Fatalf("loadViewEntries() failed: %v", err)
		}
		if len(entries) != 1 || entries[0].Name != "level1" {
			t.Errorf("entries = %+v", entries)
		}
	})

	t.Run("directory", func(t *testing.T) {
		entries, err := loadViewEntries(cfg.OutputDir, cfg)
		if err != nil {
			t.Fatalf("loadViewEntries() failed: %v", err)
		}
		if len(entries) != 1 || entries[0].Err != nil {
			t.Errorf("entries = %+v", entries)
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, err := loadViewEntries(filepath.Join(cfg.OutputDir, "nope"), cfg); err == nil {
			t.Error("expected error for missing path")
		}
	})
}

func TestDefaultRenderPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"maps/level1.map.json", "maps/level1.png"},
		{"level.json", "level.png"},
		{"raw", "raw.png"},
	}
	for _, tt := range tests {
		if got := defaultRenderPath(tt.in); got != tt.want {
			t.Errorf("defaultRenderPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScaleImage(t *testing.T) {
	rec := tilemap.FromTiles([]tilemap.Tile{{X: 0, Y: 0}}, []tilemap.Tile{{X: 1, Y: 0}})
	src := tilemap.RenderImage(rec, tilemap.RenderOptions{Walls: true, Spawns: true})

	dst := scaleImage(src, 3)
	if dst.Bounds().Dx() != 6 || dst.Bounds().Dy() != 3 {
		t.Fatalf("scaled size = %v, want 6x3", dst.Bounds().Size())
	}
	if got := dst.NRGBAAt(2, 2); got != tilemap.Palette[tilemap.RuneWall] {
		t.Errorf("wall pixel = %v", got)
	}
	if got := dst.NRGBAAt(3, 0); got != tilemap.Palette[tilemap.RuneSpawn] {
		t.Errorf("spawn pixel = %v", got)
	}
	if scaleImage(src, 1) != src {
		t.Error("scale 1 should return the source image")
	}
}

func TestPortOf(t *testing.T) {
	if got := portOf(":23235"); got != "23235" {
		t.Errorf("portOf(:23235) = %q", got)
	}
	if got := portOf("localhost"); got != "localhost" {
		t.Errorf("portOf(localhost) = %q", got)
	}
}
