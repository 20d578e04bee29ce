package tilemap

import (
	"fmt"
	"image"
	"image/color"
	"strings"
)

// Cell runes used by the ASCII renderer.
const (
	RuneEmpty      = '.'
	RuneWall       = '#'
	RuneBoundary   = '+'
	RuneSpawn      = 'S'
	RuneHorizontal = '-'
	RuneVertical   = '|'
	RuneCrossing   = '*'
	RunePoint      = 'o'
)

// RenderOptions selects the layers drawn by RenderASCII and RenderImage.
type RenderOptions struct {
	Walls    bool // interior wall tiles
	Boundary bool // boundary tiles (wall_segment_tiles)
	Spawns   bool
	Segments bool
}

// DefaultRenderOptions draws every layer.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{Walls: true, Boundary: true, Spawns: true, Segments: true}
}

// Canvas is a rune raster covering a record's bounding box.
type Canvas struct {
	Bounds Bounds
	Cells  [][]rune
}

// Rasterize draws the selected layers of r onto a canvas.
// Layers are drawn in order walls, boundary, spawns, segments; later layers
// overwrite earlier ones.
func Rasterize(r *MapRecord, opts RenderOptions) Canvas {
	b, ok := r.Bounds()
	if !ok {
		return Canvas{}
	}

	c := Canvas{Bounds: b, Cells: make([][]rune, b.Height())}
	for y := range c.Cells {
		c.Cells[y] = []rune(strings.Repeat(string(RuneEmpty), b.Width()))
	}

	if opts.Walls {
		for _, t := range r.WallTiles {
			c.set(t, RuneWall)
		}
	}
	if opts.Boundary {
		for _, t := range r.WallSegmentTiles {
			c.set(t, RuneBoundary)
		}
	}
	if opts.Spawns {
		for _, t := range r.SpawnTiles {
			c.set(t, RuneSpawn)
		}
	}
	if opts.Segments {
		for _, s := range r.WallSegments {
			c.drawSegment(s)
		}
	}
	return c
}

func (c Canvas) set(t Tile, r rune) {
	if !c.Bounds.Contains(t) {
		return
	}
	c.Cells[t.Y-c.Bounds.MinY][t.X-c.Bounds.MinX] = r
}

// At returns the rune at t, or RuneEmpty outside the canvas.
func (c Canvas) At(t Tile) rune {
	if len(c.Cells) == 0 || !c.Bounds.Contains(t) {
		return RuneEmpty
	}
	return c.Cells[t.Y-c.Bounds.MinY][t.X-c.Bounds.MinX]
}

func (c Canvas) drawSegment(s Segment) {
	var r rune
	switch {
	case s.IsPoint():
		r = RunePoint
	case s.IsHorizontal():
		r = RuneHorizontal
	default:
		r = RuneVertical
	}

	for _, t := range s.Tiles() {
		prev := c.At(t)
		switch {
		case r == RunePoint && (prev == RuneHorizontal || prev == RuneVertical || prev == RuneCrossing):
			// a run already covers this tile
		case (prev == RuneHorizontal && r == RuneVertical) || (prev == RuneVertical && r == RuneHorizontal):
			c.set(t, RuneCrossing)
		default:
			c.set(t, r)
		}
	}
}

// String joins the canvas rows with newlines.
func (c Canvas) String() string {
	var sb strings.Builder
	for y, row := range c.Cells {
		if y > 0 {
			sb.WriteRune('\n')
		}
		sb.WriteString(string(row))
	}
	return sb.String()
}

// RenderASCII renders r as text with a one line header.
// Used by the viewer and for golden comparisons in tests.
func RenderASCII(r *MapRecord, opts RenderOptions) string {
	s := r.Stats()
	header := fmt.Sprintf("Walls: %d | Boundary: %d | Spawns: %d | Segments: %d",
		s.Walls, s.BoundaryTiles, s.Spawns, s.Segments)

	c := Rasterize(r, opts)
	if len(c.Cells) == 0 {
		return header + "\n(empty map)"
	}
	return header + "\n" + c.String()
}

// Palette maps canvas runes to colors for RenderImage.
var Palette = map[rune]color.NRGBA{
	RuneEmpty:      {R: 255, G: 255, B: 255, A: 255},
	RuneWall:       {R: 0, G: 0, B: 0, A: 255},
	RuneBoundary:   {R: 90, G: 90, B: 90, A: 255},
	RuneSpawn:      {R: 255, G: 0, B: 0, A: 255},
	RuneHorizontal: {R: 30, G: 144, B: 255, A: 255},
	RuneVertical:   {R: 50, G: 205, B: 50, A: 255},
	RuneCrossing:   {R: 0, G: 206, B: 209, A: 255},
	RunePoint:      {R: 255, G: 165, B: 0, A: 255},
}

// RenderImage draws r at one pixel per tile using Palette.
// The result covers the record's bounding box; an empty record yields a 0x0 image.
func RenderImage(r *MapRecord, opts RenderOptions) *image.NRGBA {
	c := Rasterize(r, opts)
	img := image.NewNRGBA(image.Rect(0, 0, len(firstRow(c.Cells)), len(c.Cells)))
	for y, row := range c.Cells {
		for x, ch := range row {
			img.SetNRGBA(x, y, Palette[ch])
		}
	}
	return img
}

func firstRow(cells [][]rune) []rune {
	if len(cells) == 0 {
		return nil
	}
	return cells[0]
}
