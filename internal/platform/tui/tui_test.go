package tui

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tilemaps/internal/storage"
	"github.com/vovakirdan/tilemaps/internal/tilemap"
)

var ansiRE = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func rowRecord(n int) *tilemap.MapRecord {
	walls := make([]tilemap.Tile, n)
	for i := range walls {
		walls[i] = tilemap.Tile{X: i}
	}
	return tilemap.FromTiles(walls, nil)
}

func TestRenderCanvasMatchesPlainText(t *testing.T) {
	block := []tilemap.Tile{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0},
		{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1},
		{X: 0, Y: 2}, {X: 1, Y: 2}, {X: 2, Y: 2},
	}
	c := tilemap.Rasterize(tilemap.FromTiles(block, nil), tilemap.DefaultRenderOptions())

	got := stripANSI(RenderCanvas(c))
	if got != c.String() {
		t.Errorf("RenderCanvas() = %q, want %q", got, c.String())
	}
}

func TestRenderRecord(t *testing.T) {
	empty := stripANSI(RenderRecord(tilemap.FromTiles(nil, nil), tilemap.DefaultRenderOptions()))
	if !strings.Contains(empty, "(empty map)") {
		t.Errorf("empty render missing marker: %q", empty)
	}

	got := stripANSI(RenderRecord(rowRecord(3), tilemap.DefaultRenderOptions()))
	if !strings.HasPrefix(got, "Walls: 3 | Boundary: 3 | Spawns: 0 | Segments: 4") {
		t.Errorf("header = %q", strings.SplitN(got, "\n", 2)[0])
	}
}

func TestLoadEntries(t *testing.T) {
	dir := t.TempDir()

	write := func(name string, data []byte) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	good, err := rowRecord(2).Marshal(false)
	if err != nil {
		t.Fatal(err)
	}
	write("beta.map.json", good)
	write("alpha.map.json", good)
	write("broken.map.json", []byte("{not json"))
	write("readme.txt", []byte("skip me"))

	entries, err := LoadEntries(dir, ".map.json")
	if err != nil {
		t.Fatalf("LoadEntries() failed: %v", err)
	}

	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	if got := strings.Join(names, ","); got != "alpha,beta,broken" {
		t.Fatalf("names = %s, want alpha,beta,broken", got)
	}
	if entries[0].Err != nil || len(entries[0].Record.WallTiles) != 2 {
		t.Errorf("alpha = %+v", entries[0])
	}
	if entries[2].Err == nil {
		t.Error("broken entry should carry a decode error")
	}

	if _, err := LoadEntries(filepath.Join(dir, "missing"), ".map.json"); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestBrowserNavigation(t *testing.T) {
	entries := []MapEntry{
		{Name: "one", Record: rowRecord(1)},
		{Name: "two", Record: rowRecord(2)},
		{Name: "bad", Err: errors.New("boom")},
	}
	m := NewBrowserModel(entries, 100, 30)

	sel, ok := m.Selected()
	if !ok || sel.Name != "one" {
		t.Fatalf("initial selection = %q, %v", sel.Name, ok)
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(BrowserModel)
	if sel, _ := m.Selected(); sel.Name != "two" {
		t.Errorf("after down selection = %q, want two", sel.Name)
	}
	if view := stripANSI(m.View()); !strings.Contains(view, "MAPS - two") {
		t.Errorf("view missing title for selection:\n%s", view)
	}

	next, _ = m.Update(runes("j"))
	m = next.(BrowserModel)
	if view := stripANSI(m.View()); !strings.Contains(view, "Cannot read map: boom") {
		t.Errorf("view missing decode error:\n%s", view)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(BrowserModel)
	if sel, _ := m.Selected(); sel.Name != "two" {
		t.Errorf("after up selection = %q, want two", sel.Name)
	}
}

func TestBrowserLayerToggles(t *testing.T) {
	m := NewBrowserModel([]MapEntry{{Name: "row", Record: rowRecord(3)}}, 100, 30)

	tests := []struct {
		key   string
		layer func(tilemap.RenderOptions) bool
	}{
		{"1", func(o tilemap.RenderOptions) bool { return o.Walls }},
		{"2", func(o tilemap.RenderOptions) bool { return o.Boundary }},
		{"3", func(o tilemap.RenderOptions) bool { return o.Spawns }},
		{"4", func(o tilemap.RenderOptions) bool { return o.Segments }},
		{"s", func(o tilemap.RenderOptions) bool { return o.Segments }},
	}
	for _, tt := range tests {
		before := tt.layer(m.Options())
		next, _ := m.Update(runes(tt.key))
		m = next.(BrowserModel)
		if tt.layer(m.Options()) == before {
			t.Errorf("key %q did not toggle its layer", tt.key)
		}
	}
}

func TestBrowserEmptyAndQuit(t *testing.T) {
	m := NewBrowserModel(nil, 0, 0)
	if _, ok := m.Selected(); ok {
		t.Error("empty browser reports a selection")
	}
	if view := stripANSI(m.View()); !strings.Contains(view, "No maps found.") {
		t.Errorf("empty view = %q", view)
	}

	next, cmd := m.Update(runes("q"))
	m = next.(BrowserModel)
	if !m.IsQuitting() || cmd == nil {
		t.Error("q should quit")
	}
	if m.View() != "" {
		t.Error("view should be blank after quitting")
	}
}

func TestBrowserResizeKeepsSelection(t *testing.T) {
	m := NewBrowserModel([]MapEntry{
		{Name: "one", Record: rowRecord(1)},
		{Name: "two", Record: rowRecord(2)},
	}, 100, 30)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	next, _ = next.Update(tea.WindowSizeMsg{Width: 50, Height: 20})
	m = next.(BrowserModel)

	if sel, _ := m.Selected(); sel.Name != "two" {
		t.Errorf("selection after resize = %q, want two", sel.Name)
	}
	if m.showList {
		t.Error("list pane should hide on narrow terminals")
	}
}

type fakeLister struct {
	conversions []storage.Conversion
	err         error
	calls       int
}

func (f *fakeLister) RecentConversions(limit int) ([]storage.Conversion, error) {
	f.calls++
	return f.conversions, f.err
}

func TestHistoryModel(t *testing.T) {
	lister := &fakeLister{conversions: []storage.Conversion{
		{Source: "b.png", Status: "failed", Stage: "decode", Error: "bad header", CreatedAt: time.Now()},
		{Source: "a.png", Output: "maps/a.map.json", Hash: "0123456789abcdef", Status: "ok", Stage: "done", Walls: 4, CreatedAt: time.Now()},
	}}
	m := NewHistoryModel(lister, 120, 30)

	view := stripANSI(m.View())
	for _, want := range []string{"CONVERSION HISTORY (2)", "b.png", "a.png", "b.png: bad header"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(HistoryModel)
	if c, _ := m.Selected(); c.Source != "a.png" {
		t.Errorf("selection = %q, want a.png", c.Source)
	}
	if view := stripANSI(m.View()); !strings.Contains(view, "sha256:0123456789ab") {
		t.Errorf("detail line missing hash:\n%s", view)
	}

	next, _ = m.Update(runes("r"))
	m = next.(HistoryModel)
	if lister.calls != 2 {
		t.Errorf("reload calls = %d, want 2", lister.calls)
	}
}

func TestHistoryModelStates(t *testing.T) {
	empty := NewHistoryModel(&fakeLister{}, 80, 24)
	if view := stripANSI(empty.View()); !strings.Contains(view, "No conversions recorded yet.") {
		t.Errorf("empty view = %q", view)
	}

	failing := NewHistoryModel(&fakeLister{err: errors.New("disk gone")}, 80, 24)
	if view := stripANSI(failing.View()); !strings.Contains(view, "Cannot load history: disk gone") {
		t.Errorf("error view = %q", view)
	}
}

func TestNewSSHServer(t *testing.T) {
	cfg := DefaultSSHServerConfig()
	cfg.HostKeyPath = filepath.Join(t.TempDir(), "keys", "host_key")

	cfg.MapsDir = filepath.Join(t.TempDir(), "missing")
	if _, err := NewSSHServer(cfg, nil); err == nil {
		t.Error("expected error for missing maps directory")
	}

	cfg.MapsDir = t.TempDir()
	cfg.Address = "127.0.0.1:0"
	srv, err := NewSSHServer(cfg, nil)
	if err != nil {
		t.Fatalf("NewSSHServer() failed: %v", err)
	}
	if srv.Addr() != "127.0.0.1:0" {
		t.Errorf("Addr() = %q", srv.Addr())
	}
}
