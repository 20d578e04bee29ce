// Package source turns level files into pixel grids for the tilemap package.
// Loaders register themselves per file extension, allowing the pipeline to
// accept any registered format without hardcoded dependencies.
package source

import (
	"errors"
	"fmt"
	"image"
	"sort"
	"strings"
	"sync"
)

// ErrUnsupportedFormat is returned for extensions with no registered loader.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Options carries format specific settings to loaders.
type Options struct {
	TMX TMXOptions
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{TMX: DefaultTMXOptions()}
}

// Loader reads the level at path into a pixel grid.
// data holds the file contents already read by the caller.
type Loader func(path string, data []byte, opts Options) (image.Image, error)

// FormatInfo describes a registered extension.
type FormatInfo struct {
	Ext         string
	Description string
}

type format struct {
	loader      Loader
	description string
}

var (
	formats = make(map[string]format)
	mu      sync.RWMutex
)

// Register adds a loader for ext (with leading dot, any case).
// Panics if the extension is already registered.
func Register(ext, description string, l Loader) {
	mu.Lock()
	defer mu.Unlock()

	ext = NormalizeExt(ext)
	if _, exists := formats[ext]; exists {
		panic(fmt.Sprintf("source: format %q already registered", ext))
	}
	formats[ext] = format{loader: l, description: description}
}

// Lookup returns the loader for ext.
func Lookup(ext string) (Loader, bool) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := formats[NormalizeExt(ext)]
	return f.loader, ok
}

// Supported reports whether ext has a loader.
func Supported(ext string) bool {
	_, ok := Lookup(ext)
	return ok
}

// List returns all registered formats, sorted by extension.
func List() []FormatInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]FormatInfo, 0, len(formats))
	for ext, f := range formats {
		result = append(result, FormatInfo{Ext: ext, Description: f.description})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Ext < result[j].Ext
	})
	return result
}

// NormalizeExt lower-cases ext and ensures a leading dot.
func NormalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Load reads path with the loader registered for its extension.
func Load(path string, data []byte, opts Options) (image.Image, error) {
	ext := extOf(path)
	l, ok := Lookup(ext)
	if !ok {
		return nil, fmt.Errorf("source: %s: %w %q", path, ErrUnsupportedFormat, ext)
	}
	img, err := l(path, data, opts)
	if err != nil {
		return nil, fmt.Errorf("source: %s: %w", path, err)
	}
	return img, nil
}
