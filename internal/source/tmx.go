package source

import (
	"fmt"
	"image"
	"math"

	"github.com/lafriks/go-tiled"

	"github.com/vovakirdan/tilemaps/internal/tilemap"
)

// TMXOptions names the Tiled layers read from .tmx files.
type TMXOptions struct {
	WallLayer  string // tile layer whose non-empty cells are walls
	SpawnGroup string // object group whose objects are spawn points
}

// DefaultTMXOptions returns the default layer names.
func DefaultTMXOptions() TMXOptions {
	return TMXOptions{WallLayer: "walls", SpawnGroup: "spawns"}
}

func init() {
	Register(".tmx", "Tiled map (wall layer + spawn object group)", loadTMX)
}

// loadTMX rasterizes a Tiled map at one pixel per map cell: wall layer cells
// become wall pixels, spawn objects become spawn pixels at the cell holding
// their origin. Spawns are painted last and win over walls.
func loadTMX(path string, _ []byte, opts Options) (image.Image, error) {
	m, err := tiled.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load TMX: %w", err)
	}
	return rasterizeTMX(m, opts.TMX)
}

func rasterizeTMX(m *tiled.Map, opts TMXOptions) (image.Image, error) {
	if opts.WallLayer == "" {
		opts.WallLayer = DefaultTMXOptions().WallLayer
	}
	if opts.SpawnGroup == "" {
		opts.SpawnGroup = DefaultTMXOptions().SpawnGroup
	}

	img := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))

	var walls *tiled.Layer
	for _, layer := range m.Layers {
		if layer.Name == opts.WallLayer {
			walls = layer
			break
		}
	}
	if walls == nil {
		return nil, fmt.Errorf("no tile layer named %q", opts.WallLayer)
	}

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			i := y*m.Width + x
			if i >= len(walls.Tiles) {
				break
			}
			if walls.Tiles[i].IsNil() {
				continue
			}
			img.SetNRGBA(x, y, tilemap.WallColor)
		}
	}

	if m.TileWidth <= 0 || m.TileHeight <= 0 {
		return img, nil
	}
	for _, og := range m.ObjectGroups {
		if og.Name != opts.SpawnGroup {
			continue
		}
		for _, o := range og.Objects {
			x := int(math.Floor(o.X / float64(m.TileWidth)))
			y := int(math.Floor(o.Y / float64(m.TileHeight)))
			if !image.Pt(x, y).In(img.Bounds()) {
				continue
			}
			img.SetNRGBA(x, y, tilemap.SpawnColor)
		}
	}

	return img, nil
}
