package tilemap

// Neighbour thresholds used by the extractor.
const (
	// enclosedNeighbors is the neighbour count of a tile with no open side.
	enclosedNeighbors = 8

	// buriedThreshold: a tile with more than this many sides AND more than
	// this many corners occupied is treated as buried and breaks runs.
	buriedThreshold = 3

	// loneThreshold: tiles with at most this many neighbours become point segments.
	loneThreshold = 2
)

// Extraction is the output of ExtractSegments.
type Extraction struct {
	// Segments holds horizontal runs, then vertical runs, then lone tiles.
	// Segments are not deduplicated across the three passes.
	Segments []Segment

	// BoundaryTiles are wall tiles with at least one free neighbour, in
	// input order.
	BoundaryTiles []Tile
}

// ExtractSegments reduces wall tiles to boundary tiles and wall segments.
//
// Runs are found by scanning the wall bounding box grown by one tile on
// every side, rows for horizontal runs and columns for vertical runs. The
// extra ring is never occupied, so a run that reaches the edge of the box
// is closed there instead of being left open.
func ExtractSegments(walls []Tile, idx *NeighborIndex) Extraction {
	out := Extraction{
		Segments:      []Segment{},
		BoundaryTiles: []Tile{},
	}

	for _, t := range walls {
		if idx.Neighbors(t) < enclosedNeighbors {
			out.BoundaryTiles = append(out.BoundaryTiles, t)
		}
	}

	bounds, ok := ComputeBounds(walls)
	if !ok {
		return out
	}
	scan := bounds.Expand(1)

	// horizontal
	out.Segments = append(out.Segments, scanRuns(idx,
		span{scan.MinY, scan.MaxY}, span{scan.MinX, scan.MaxX},
		func(row, col int) Tile { return T(col, row) },
		T(1, 0),
	)...)

	// vertical
	out.Segments = append(out.Segments, scanRuns(idx,
		span{scan.MinX, scan.MaxX}, span{scan.MinY, scan.MaxY},
		func(col, row int) Tile { return T(col, row) },
		T(0, 1),
	)...)

	// lone tiles
	for _, t := range walls {
		if idx.Neighbors(t) <= loneThreshold {
			out.Segments = append(out.Segments, PointSegment(t))
		}
	}

	return out
}

// span is an inclusive integer range.
type span struct {
	lo, hi int
}

// scanRuns walks every line of the outer span and tracks runs along the
// inner span. A run starts on an exposed tile whose next tile along dir is a
// wall, and ends just before the first tile that is not exposed.
func scanRuns(idx *NeighborIndex, outer, inner span, at func(line, pos int) Tile, dir Tile) []Segment {
	var segments []Segment
	for line := outer.lo; line <= outer.hi; line++ {
		tracking := false
		var start Tile
		for pos := inner.lo; pos <= inner.hi; pos++ {
			t := at(line, pos)
			exposed, continues := idx.SegmentTriggers(t, dir.X, dir.Y)
			switch {
			case tracking && !exposed:
				segments = append(segments, SegmentBetween(start, t.Sub(dir)))
				tracking = false
			case !tracking && continues:
				tracking, start = true, t
			}
		}
	}
	return segments
}

// SegmentTriggers reports whether t is an exposed wall tile and whether a
// run through it continues toward (dx, dy).
//
// A tile is exposed when it is a wall and is not buried: it has at most
// three sides or at most three corners occupied. It continues a run when it
// is exposed and the tile at (x+dx, y+dy) is also a wall.
func (idx *NeighborIndex) SegmentTriggers(t Tile, dx, dy int) (exposed, continues bool) {
	if !idx.Contains(t) {
		return false, false
	}
	sides, corners := idx.NeighborCounts(t)
	exposed = sides <= buriedThreshold || corners <= buriedThreshold
	continues = exposed && idx.Exists(t.X+dx, t.Y+dy)
	return exposed, continues
}
