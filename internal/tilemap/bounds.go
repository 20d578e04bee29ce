package tilemap

// Bounds is the inclusive bounding box of a tile set.
type Bounds struct {
	MinX, MaxX int
	MinY, MaxY int
}

// ComputeBounds returns the bounding box over every tile in sets.
// ok is false when the sets hold no tiles; the returned Bounds is then zero
// and must not be used.
func ComputeBounds(sets ...[]Tile) (b Bounds, ok bool) {
	for _, set := range sets {
		for _, t := range set {
			if !ok {
				b = Bounds{MinX: t.X, MaxX: t.X, MinY: t.Y, MaxY: t.Y}
				ok = true
				continue
			}
			b.MinX = min(b.MinX, t.X)
			b.MaxX = max(b.MaxX, t.X)
			b.MinY = min(b.MinY, t.Y)
			b.MaxY = max(b.MaxY, t.Y)
		}
	}
	return b, ok
}

// Center returns the midpoint of the box. Halving truncates toward zero.
func (b Bounds) Center() Tile {
	return Tile{X: (b.MinX + b.MaxX) / 2, Y: (b.MinY + b.MaxY) / 2}
}

// Width returns the number of columns covered.
func (b Bounds) Width() int {
	return b.MaxX - b.MinX + 1
}

// Height returns the number of rows covered.
func (b Bounds) Height() int {
	return b.MaxY - b.MinY + 1
}

// Expand grows the box by n tiles on every side.
func (b Bounds) Expand(n int) Bounds {
	return Bounds{MinX: b.MinX - n, MaxX: b.MaxX + n, MinY: b.MinY - n, MaxY: b.MaxY + n}
}

// Contains reports whether t lies inside the box.
func (b Bounds) Contains(t Tile) bool {
	return t.X >= b.MinX && t.X <= b.MaxX && t.Y >= b.MinY && t.Y <= b.MaxY
}

// Translate returns the box shifted by (dx, dy).
func (b Bounds) Translate(dx, dy int) Bounds {
	return Bounds{MinX: b.MinX + dx, MaxX: b.MaxX + dx, MinY: b.MinY + dy, MaxY: b.MaxY + dy}
}
