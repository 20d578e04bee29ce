package source

import (
	"bytes"
	"errors"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/vovakirdan/tilemaps/internal/tilemap"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile(%s) failed: %v", path, err)
	}
}

func sampleImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(0, 0, tilemap.WallColor)
	img.SetNRGBA(1, 0, tilemap.WallColor)
	img.SetNRGBA(2, 1, tilemap.SpawnColor)
	return img
}

func TestRegistryBuiltins(t *testing.T) {
	for _, ext := range []string{".png", ".PNG", "png", ".bmp", ".webp", ".tiff", ".tmx"} {
		if !Supported(ext) {
			t.Errorf("expected %q to be supported", ext)
		}
	}
	if Supported(".txt") {
		t.Error("did not expect .txt to be supported")
	}

	list := List()
	for i := 1; i < len(list); i++ {
		if list[i-1].Ext >= list[i].Ext {
			t.Errorf("formats not sorted: %s >= %s", list[i-1].Ext, list[i].Ext)
		}
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	Register(".PNG", "again", decodeImage)
}

func TestNormalizeExt(t *testing.T) {
	tests := map[string]string{
		".png":   ".png",
		"PNG":    ".png",
		" .Tmx ": ".tmx",
		"":       "",
	}
	for in, expected := range tests {
		if got := NormalizeExt(in); got != expected {
			t.Errorf("NormalizeExt(%q) = %q, expected %q", in, got, expected)
		}
	}
}

func TestLoadPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, sampleImage()); err != nil {
		t.Fatalf("png.Encode failed: %v", err)
	}

	img, err := Load("level.PNG", buf.Bytes(), DefaultOptions())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	walls, spawns := tilemap.Classify(img)
	if !reflect.DeepEqual(walls, []tilemap.Tile{tilemap.T(0, 0), tilemap.T(1, 0)}) {
		t.Errorf("walls = %v", walls)
	}
	if !reflect.DeepEqual(spawns, []tilemap.Tile{tilemap.T(2, 1)}) {
		t.Errorf("spawns = %v", spawns)
	}
}

func TestLoadBMP(t *testing.T) {
	// BMP has no reliable alpha, so start from an opaque white canvas
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(img, img.Bounds(), sampleImage(), image.Point{}, draw.Over)

	var buf bytes.Buffer
	if err := bmp.Encode(&buf, img); err != nil {
		t.Fatalf("bmp.Encode failed: %v", err)
	}

	decoded, err := Load("level.bmp", buf.Bytes(), DefaultOptions())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	walls, _ := tilemap.Classify(decoded)
	if len(walls) != 2 {
		t.Errorf("expected 2 walls, got %v", walls)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load("notes.txt", nil, DefaultOptions()); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := Load("broken.png", []byte("not a png"), DefaultOptions()); err == nil {
		t.Error("expected decode error for corrupt png")
	}
}

const sampleTMX = `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" tiledversion="1.10.2" orientation="orthogonal" renderorder="right-down" width="4" height="3" tilewidth="16" tileheight="16" infinite="0" nextlayerid="3" nextobjectid="2">
 <tileset firstgid="1" name="walls" tilewidth="16" tileheight="16" tilecount="1" columns="1">
  <image source="walls.png" width="16" height="16"/>
 </tileset>
 <layer id="1" name="walls" width="4" height="3">
  <data encoding="csv">
1,1,1,1,
1,0,0,1,
1,1,1,1
</data>
 </layer>
 <objectgroup id="2" name="spawns">
  <object id="1" x="24" y="20"/>
 </objectgroup>
</map>
`

func TestLoadTMX(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "arena.tmx")
	writeFile(t, path, []byte(sampleTMX))

	img, err := Load(path, []byte(sampleTMX), DefaultOptions())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
		t.Fatalf("image size = %v, expected 4x3", img.Bounds())
	}

	walls, spawns := tilemap.Classify(img)
	if len(walls) != 10 {
		t.Errorf("expected 10 walls, got %d", len(walls))
	}
	if !reflect.DeepEqual(spawns, []tilemap.Tile{tilemap.T(1, 1)}) {
		t.Errorf("spawns = %v, expected [(1,1)]", spawns)
	}
}

func TestLoadTMXMissingLayer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "arena.tmx")
	writeFile(t, path, []byte(sampleTMX))

	opts := DefaultOptions()
	opts.TMX.WallLayer = "collision"
	if _, err := Load(path, nil, opts); err == nil {
		t.Error("expected error for missing wall layer")
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "A.PNG", "notes.txt", "c.Bmp", "bad\xff.png", "stray\xff.txt"} {
		writeFile(t, filepath.Join(dir, name), []byte("x"))
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.png"), 0o755); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}

	entries, skipped, err := Discover(dir, []string{".png", "bmp"})
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	expected := []string{"A.PNG", "b.png", "c.Bmp"}
	if !reflect.DeepEqual(names, expected) {
		t.Errorf("entries = %v, expected %v", names, expected)
	}

	if entries[0].Stem != "A" || entries[0].Ext != ".png" {
		t.Errorf("entry = %+v, expected stem A and ext .png", entries[0])
	}
	if entries[0].OutputName(".map.json") != "A.map.json" {
		t.Errorf("OutputName = %q", entries[0].OutputName(".map.json"))
	}

	// Only names with a wanted extension are reported; stray\xff.txt is ignored.
	if len(skipped) != 1 || skipped[0].Name != "bad\xff.png" || !errors.Is(skipped[0].Reason, ErrPathEncoding) {
		t.Errorf("skipped = %v, expected one path encoding skip for bad\\xff.png", skipped)
	}
}

func TestDiscoverMissingDirectory(t *testing.T) {
	if _, _, err := Discover(filepath.Join(t.TempDir(), "missing"), []string{".png"}); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestEntryFor(t *testing.T) {
	e := EntryFor("/maps/level.one.PNG")
	if e.Name != "level.one.PNG" || e.Stem != "level.one" || e.Ext != ".png" {
		t.Errorf("EntryFor = %+v", e)
	}
}
