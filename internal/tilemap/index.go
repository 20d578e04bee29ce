package tilemap

// sideOffsets and cornerOffsets are the 4-neighbourhood and the diagonals.
var (
	sideOffsets   = [4]Tile{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	cornerOffsets = [4]Tile{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
)

// NeighborIndex answers occupancy queries over a map's wall tiles.
// Spawn tiles never go into the index.
type NeighborIndex struct {
	present map[Tile]struct{}
}

// NewNeighborIndex builds an index from centered wall tiles.
func NewNeighborIndex(walls []Tile) *NeighborIndex {
	idx := &NeighborIndex{present: make(map[Tile]struct{}, len(walls))}
	for _, t := range walls {
		idx.present[t] = struct{}{}
	}
	return idx
}

// Len returns the number of indexed tiles.
func (idx *NeighborIndex) Len() int {
	return len(idx.present)
}

// Exists reports whether a wall tile occupies (x, y).
func (idx *NeighborIndex) Exists(x, y int) bool {
	_, ok := idx.present[Tile{X: x, Y: y}]
	return ok
}

// Contains reports whether t is a wall tile.
func (idx *NeighborIndex) Contains(t Tile) bool {
	return idx.Exists(t.X, t.Y)
}

// NeighborCounts returns how many of t's four side neighbours and four
// diagonal neighbours are wall tiles.
func (idx *NeighborIndex) NeighborCounts(t Tile) (sides, corners int) {
	for _, o := range sideOffsets {
		if idx.Exists(t.X+o.X, t.Y+o.Y) {
			sides++
		}
	}
	for _, o := range cornerOffsets {
		if idx.Exists(t.X+o.X, t.Y+o.Y) {
			corners++
		}
	}
	return sides, corners
}

// Neighbors returns the total number of occupied tiles among t's eight neighbours.
func (idx *NeighborIndex) Neighbors(t Tile) int {
	sides, corners := idx.NeighborCounts(t)
	return sides + corners
}
