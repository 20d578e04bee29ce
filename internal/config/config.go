// Package config provides YAML-based configuration loading for the map
// converter.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// Config contains all settings for a conversion run.
type Config struct {
	InputDir     string    `yaml:"input_dir"`
	OutputDir    string    `yaml:"output_dir"`
	OutputSuffix string    `yaml:"output_suffix"` // appended to the input file stem
	Extensions   []string  `yaml:"extensions"`    // matched case-insensitively
	Workers      int       `yaml:"workers"`       // 0 = one per CPU
	Incremental  bool      `yaml:"incremental"`   // skip inputs unchanged since the last successful run
	Indent       bool      `yaml:"indent"`        // pretty-print output JSON
	DBPath       string    `yaml:"db_path"`       // conversion history; empty disables it
	LogLevel     string    `yaml:"log_level"`     // debug, info, warn, error
	TMX          TMXConfig `yaml:"tmx"`
}

// TMXConfig names the Tiled layers used when converting .tmx files.
type TMXConfig struct {
	WallLayer  string `yaml:"wall_layer"`
	SpawnGroup string `yaml:"spawn_group"`
}

// Log levels accepted by LogLevel.
var logLevels = []string{"debug", "info", "warn", "error"}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if strings.TrimSpace(c.InputDir) == "" {
		return errors.New("config: input_dir is required")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return errors.New("config: output_dir is required")
	}
	if c.OutputSuffix == "" {
		return errors.New("config: output_suffix is required")
	}
	if strings.ContainsAny(c.OutputSuffix, `/\`) {
		return fmt.Errorf("config: output_suffix %q must not contain path separators", c.OutputSuffix)
	}
	if len(c.Extensions) == 0 {
		return errors.New("config: at least one extension is required")
	}
	if c.Workers < 0 {
		return fmt.Errorf("config: workers must be >= 0, got %d", c.Workers)
	}
	if !validLogLevel(c.LogLevel) {
		return fmt.Errorf("config: unknown log_level %q (want one of %s)", c.LogLevel, strings.Join(logLevels, ", "))
	}
	return nil
}

func validLogLevel(level string) bool {
	for _, l := range logLevels {
		if strings.EqualFold(level, l) {
			return true
		}
	}
	return false
}
