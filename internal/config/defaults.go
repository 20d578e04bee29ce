package config

import (
	_ "embed"
)

//go:embed defaults/mapgen.yaml
var defaultYAML []byte

// Default returns the default configuration.
func Default() Config {
	return Config{
		InputDir:     "./maps",
		OutputDir:    "./src/maps",
		OutputSuffix: ".map.json",
		Extensions:   []string{".png"},
		Workers:      0,
		Incremental:  false,
		Indent:       false,
		DBPath:       "~/.mapgen/history.db",
		LogLevel:     "info",
		TMX: TMXConfig{
			WallLayer:  "walls",
			SpawnGroup: "spawns",
		},
	}
}
