package tilemap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"io"
)

// MapRecord is the converted form of one level image.
// It is built once by FromImage or FromTiles and not modified afterwards.
type MapRecord struct {
	WallTiles        []Tile    `json:"wall_tiles"`
	SpawnTiles       []Tile    `json:"spawn_tiles"`
	WallSegments     []Segment `json:"wall_segments"`
	WallSegmentTiles []Tile    `json:"wall_segment_tiles"`

	offset Tile
}

// Stats summarises the size of a record.
type Stats struct {
	Walls         int
	Spawns        int
	Segments      int
	BoundaryTiles int
}

// FromImage classifies img and builds its record.
func FromImage(img image.Image) *MapRecord {
	walls, spawns := Classify(img)
	return FromTiles(walls, spawns)
}

// FromTiles centers the given uncentered tiles and extracts wall segments.
// The slices are copied; the caller's tiles are left untouched.
func FromTiles(walls, spawns []Tile) *MapRecord {
	r := &MapRecord{
		WallTiles:  append([]Tile{}, walls...),
		SpawnTiles: append([]Tile{}, spawns...),
	}
	r.offset, _ = Center(r.WallTiles, r.SpawnTiles)

	ext := ExtractSegments(r.WallTiles, NewNeighborIndex(r.WallTiles))
	r.WallSegments = ext.Segments
	r.WallSegmentTiles = ext.BoundaryTiles
	return r
}

// Offset returns the translation subtracted from the source tiles during
// centering. It is zero for decoded records.
func (r *MapRecord) Offset() Tile {
	return r.offset
}

// Bounds returns the bounding box of the record's wall and spawn tiles.
func (r *MapRecord) Bounds() (Bounds, bool) {
	return ComputeBounds(r.WallTiles, r.SpawnTiles)
}

// Stats returns tile and segment counts.
func (r *MapRecord) Stats() Stats {
	return Stats{
		Walls:         len(r.WallTiles),
		Spawns:        len(r.SpawnTiles),
		Segments:      len(r.WallSegments),
		BoundaryTiles: len(r.WallSegmentTiles),
	}
}

// Marshal serializes the record as JSON, optionally indented.
// Identical records always produce identical bytes.
func (r *MapRecord) Marshal(indent bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Encode(&buf, indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes the record as JSON to w.
func (r *MapRecord) Encode(w io.Writer, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(r.normalized()); err != nil {
		return fmt.Errorf("encoding map record: %w", err)
	}
	return nil
}

// normalized returns a copy with nil slices replaced by empty ones so they
// encode as [] rather than null.
func (r *MapRecord) normalized() *MapRecord {
	n := *r
	if n.WallTiles == nil {
		n.WallTiles = []Tile{}
	}
	if n.SpawnTiles == nil {
		n.SpawnTiles = []Tile{}
	}
	if n.WallSegments == nil {
		n.WallSegments = []Segment{}
	}
	if n.WallSegmentTiles == nil {
		n.WallSegmentTiles = []Tile{}
	}
	return &n
}

// Decode reads a JSON record written by Encode.
func Decode(rd io.Reader) (*MapRecord, error) {
	var r MapRecord
	if err := json.NewDecoder(rd).Decode(&r); err != nil {
		return nil, fmt.Errorf("decoding map record: %w", err)
	}
	return r.normalized(), nil
}
