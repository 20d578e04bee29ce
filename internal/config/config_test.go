package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestEmbeddedDefaultsMatchHardcoded(t *testing.T) {
	cfg, err := parse(defaultYAML)
	if err != nil {
		t.Fatalf("parse embedded defaults failed: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("embedded defaults differ:\nembedded:  %+v\nhardcoded: %+v", cfg, Default())
	}
}

func TestLoadCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	data := `
input_dir: ./levels
workers: 3
extensions: [.png, .TMX]
tmx:
  wall_layer: collision
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.InputDir != "./levels" {
		t.Errorf("InputDir = %q, expected ./levels", cfg.InputDir)
	}
	if cfg.Workers != 3 {
		t.Errorf("Workers = %d, expected 3", cfg.Workers)
	}
	if !reflect.DeepEqual(cfg.Extensions, []string{".png", ".TMX"}) {
		t.Errorf("Extensions = %v", cfg.Extensions)
	}
	if cfg.TMX.WallLayer != "collision" {
		t.Errorf("TMX.WallLayer = %q, expected collision", cfg.TMX.WallLayer)
	}
	// Unset keys keep defaults
	if cfg.OutputSuffix != ".map.json" {
		t.Errorf("OutputSuffix = %q, expected default", cfg.OutputSuffix)
	}
	if cfg.TMX.SpawnGroup != "spawns" {
		t.Errorf("TMX.SpawnGroup = %q, expected default", cfg.TMX.SpawnGroup)
	}
}

func TestLoadCustomPathErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("workers: [1, 2"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed config")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"missing input", func(c *Config) { c.InputDir = " " }, "input_dir"},
		{"missing output", func(c *Config) { c.OutputDir = "" }, "output_dir"},
		{"missing suffix", func(c *Config) { c.OutputSuffix = "" }, "output_suffix"},
		{"suffix with separator", func(c *Config) { c.OutputSuffix = "/x.json" }, "path separators"},
		{"no extensions", func(c *Config) { c.Extensions = nil }, "extension"},
		{"negative workers", func(c *Config) { c.Workers = -1 }, "workers"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"upper log level", func(c *Config) { c.LogLevel = "DEBUG" }, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.modify(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, expected nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Validate() = %v, expected error containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	if got := ExpandHome("~/.mapgen/history.db"); got != filepath.Join(home, ".mapgen/history.db") {
		t.Errorf("ExpandHome = %q", got)
	}
	if got := ExpandHome("./relative"); got != "./relative" {
		t.Errorf("ExpandHome changed relative path: %q", got)
	}
	if got := ExpandHome("~other/x"); got != "~other/x" {
		t.Errorf("ExpandHome changed ~user path: %q", got)
	}
}
