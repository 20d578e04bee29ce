// Package tilemap converts a decoded level image into the geometry consumed by
// the game client: occupied wall and spawn tiles plus a reduced set of
// axis-aligned wall segments for collision and rendering.
//
// The pipeline is Classify -> Center -> NewNeighborIndex -> ExtractSegments,
// wrapped by FromImage and FromTiles. Nothing in this package keeps state
// between maps, so separate maps can be built concurrently.
package tilemap

import (
	"encoding/json"
	"fmt"
)

// Tile is a cell on the unbounded map grid.
// X increases to the right, Y increases downward (image coordinates).
type Tile struct {
	X int
	Y int
}

// T is a convenience constructor for Tile.
func T(x, y int) Tile {
	return Tile{X: x, Y: y}
}

// Add returns the tile offset by (dx, dy).
func (t Tile) Add(dx, dy int) Tile {
	return Tile{X: t.X + dx, Y: t.Y + dy}
}

// Sub returns the tile translated by -o.
func (t Tile) Sub(o Tile) Tile {
	return Tile{X: t.X - o.X, Y: t.Y - o.Y}
}

// String returns a string representation of the tile.
func (t Tile) String() string {
	return fmt.Sprintf("(%d,%d)", t.X, t.Y)
}

// MarshalJSON encodes the tile as a two element array [x, y].
func (t Tile) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{t.X, t.Y})
}

// UnmarshalJSON decodes a [x, y] array.
func (t *Tile) UnmarshalJSON(data []byte) error {
	var v [2]int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("tile: %w", err)
	}
	t.X, t.Y = v[0], v[1]
	return nil
}

// Segment is a run of wall tiles reduced to its two endpoints.
// Horizontal runs have Y1 == Y2, vertical runs X1 == X2, and a lone tile is
// stored as a single point. The smaller coordinate always comes first.
type Segment struct {
	X1, Y1 int
	X2, Y2 int
}

// PointSegment returns the degenerate segment covering only t.
func PointSegment(t Tile) Segment {
	return Segment{X1: t.X, Y1: t.Y, X2: t.X, Y2: t.Y}
}

// SegmentBetween returns the segment from a to b.
func SegmentBetween(a, b Tile) Segment {
	return Segment{X1: a.X, Y1: a.Y, X2: b.X, Y2: b.Y}
}

// Start returns the first endpoint.
func (s Segment) Start() Tile {
	return Tile{X: s.X1, Y: s.Y1}
}

// End returns the second endpoint.
func (s Segment) End() Tile {
	return Tile{X: s.X2, Y: s.Y2}
}

// IsPoint reports whether the segment covers a single tile.
func (s Segment) IsPoint() bool {
	return s.X1 == s.X2 && s.Y1 == s.Y2
}

// IsHorizontal reports whether the segment is a horizontal run longer than one tile.
func (s Segment) IsHorizontal() bool {
	return s.Y1 == s.Y2 && s.X1 != s.X2
}

// IsVertical reports whether the segment is a vertical run longer than one tile.
func (s Segment) IsVertical() bool {
	return s.X1 == s.X2 && s.Y1 != s.Y2
}

// Valid reports whether the segment is axis-aligned with ordered endpoints.
func (s Segment) Valid() bool {
	if s.X1 > s.X2 || s.Y1 > s.Y2 {
		return false
	}
	return s.X1 == s.X2 || s.Y1 == s.Y2
}

// Len returns the number of tiles covered by the segment.
func (s Segment) Len() int {
	return abs(s.X2-s.X1) + abs(s.Y2-s.Y1) + 1
}

// Tiles returns every tile the segment covers, from Start to End.
// Only meaningful for valid segments.
func (s Segment) Tiles() []Tile {
	dx, dy := sign(s.X2-s.X1), sign(s.Y2-s.Y1)
	n := s.Len()
	tiles := make([]Tile, 0, n)
	for i, t := 0, s.Start(); i < n; i, t = i+1, t.Add(dx, dy) {
		tiles = append(tiles, t)
	}
	return tiles
}

// MarshalJSON encodes the segment as [x1, y1, x2, y2].
func (s Segment) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]int{s.X1, s.Y1, s.X2, s.Y2})
}

// UnmarshalJSON decodes a [x1, y1, x2, y2] array.
func (s *Segment) UnmarshalJSON(data []byte) error {
	var v [4]int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("segment: %w", err)
	}
	s.X1, s.Y1, s.X2, s.Y2 = v[0], v[1], v[2], v[3]
	return nil
}

func (s Segment) String() string {
	return fmt.Sprintf("[%d,%d -> %d,%d]", s.X1, s.Y1, s.X2, s.Y2)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x < 0:
		return -1
	case x > 0:
		return 1
	}
	return 0
}
