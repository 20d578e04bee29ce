package tilemap

// Center recenters walls and spawns in place around the midpoint of their
// combined bounding box and returns the offset that was subtracted.
//
// The same offset is applied to both sets so their relative geometry is kept.
// Calling Center again recenters around the new bounds, so call it exactly
// once per map. With no tiles it does nothing and ok is false.
func Center(walls, spawns []Tile) (offset Tile, ok bool) {
	b, ok := ComputeBounds(walls, spawns)
	if !ok {
		return Tile{}, false
	}

	offset = b.Center()
	translate(walls, offset)
	translate(spawns, offset)
	return offset, true
}

func translate(tiles []Tile, offset Tile) {
	for i := range tiles {
		tiles[i] = tiles[i].Sub(offset)
	}
}
