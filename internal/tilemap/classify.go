package tilemap

import (
	"image"
	"image/color"
)

// Kind is the category a source pixel maps to.
type Kind uint8

const (
	KindNone Kind = iota
	KindWall
	KindSpawn
)

// String returns the string representation of a kind.
func (k Kind) String() string {
	switch k {
	case KindWall:
		return "wall"
	case KindSpawn:
		return "spawn"
	default:
		return "none"
	}
}

// Source pixel colors recognised by ClassifyPixel.
var (
	WallColor  = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	SpawnColor = color.NRGBA{R: 255, G: 0, B: 0, A: 255}
)

// ClassifyPixel maps a single 8-bit RGBA pixel to its tile kind.
// Only fully opaque pixels count: pure black is a wall, pure red a spawn.
func ClassifyPixel(c color.NRGBA) Kind {
	if c.A != 255 {
		return KindNone
	}
	if int(c.R)+int(c.G)+int(c.B) == 0 {
		return KindWall
	}
	if c.R == 255 && int(c.G)+int(c.B) == 0 {
		return KindSpawn
	}
	return KindNone
}

// Classify scans img and returns its wall and spawn tiles.
//
// Tiles are addressed relative to the image origin, so they always lie in
// [0,width)x[0,height). The scan is row-major: y outer, x inner. That order
// is kept in the returned slices and ends up in the serialized record.
func Classify(img image.Image) (walls, spawns []Tile) {
	walls, spawns = []Tile{}, []Tile{}
	if img == nil {
		return walls, spawns
	}

	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			switch ClassifyPixel(pixelNRGBA(img.At(x, y))) {
			case KindWall:
				walls = append(walls, T(x-b.Min.X, y-b.Min.Y))
			case KindSpawn:
				spawns = append(spawns, T(x-b.Min.X, y-b.Min.Y))
			}
		}
	}
	return walls, spawns
}

// pixelNRGBA reduces any color to 8-bit non-premultiplied RGBA, rounding to
// the nearest 8-bit value. color.NRGBAModel truncates 16-bit channels, which
// would turn 0x00FF into 0 and make near-black pixels walls.
func pixelNRGBA(c color.Color) color.NRGBA {
	if n, ok := c.(color.NRGBA); ok {
		return n
	}
	r, g, b, a := c.RGBA()
	if a == 0 {
		return color.NRGBA{}
	}
	if a != 0xffff {
		r = r * 0xffff / a
		g = g * 0xffff / a
		b = b * 0xffff / a
	}
	return color.NRGBA{R: round8(r), G: round8(g), B: round8(b), A: round8(a)}
}

func round8(v uint32) uint8 {
	return uint8((v + 128) / 257)
}
