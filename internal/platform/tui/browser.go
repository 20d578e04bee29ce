package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tilemaps/internal/tilemap"
)

// Browser layout constants
const (
	listWidth       = 36 // Width of the map list pane
	minWidthForList = 72 // Minimum width to show the list beside the preview
	defaultWidth    = 80
	defaultHeight   = 24
)

// MapEntry is one converted map shown by the browser.
type MapEntry struct {
	Name   string
	Record *tilemap.MapRecord
	Err    error // set when the file could not be decoded
}

// LoadEntries decodes every file in dir whose name ends in suffix.
// Files that fail to decode are kept with Err set so they still show up.
func LoadEntries(dir, suffix string) ([]MapEntry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("tui: reading %s: %w", dir, err)
	}

	var entries []MapEntry
	for _, d := range dirEntries {
		if d.IsDir() || !strings.HasSuffix(d.Name(), suffix) {
			continue
		}
		e := MapEntry{Name: strings.TrimSuffix(d.Name(), suffix)}
		e.Record, e.Err = loadRecord(filepath.Join(dir, d.Name()))
		entries = append(entries, e)
	}
	return entries, nil
}

func loadRecord(path string) (*tilemap.MapRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return tilemap.Decode(f)
}

// BrowserModel is the Bubble Tea model for browsing converted maps.
type BrowserModel struct {
	entries  []MapEntry
	table    table.Model
	preview  viewport.Model
	help     help.Model
	keys     BrowserKeyMap
	opts     tilemap.RenderOptions
	width    int
	height   int
	showList bool // Whether the list pane fits beside the preview
	quitting bool
}

// NewBrowserModel creates a browser over entries.
// A zero width or height falls back to 80x24.
func NewBrowserModel(entries []MapEntry, width, height int) BrowserModel {
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}

	h := help.New()
	h.Width = width

	m := BrowserModel{
		entries: entries,
		keys:    DefaultBrowserKeyMap(),
		help:    h,
		opts:    tilemap.DefaultRenderOptions(),
		preview: viewport.New(width, height),
	}
	m.resize(width, height)
	m.refreshPreview(true)
	return m
}

// resize recomputes pane sizes for the terminal dimensions.
func (m *BrowserModel) resize(width, height int) {
	m.width = width
	m.height = height
	m.showList = width >= minWidthForList
	m.help.Width = width

	paneHeight := max(height-6, 3) // title, borders, help

	cursor := m.table.Cursor()
	m.table = table.New(
		table.WithColumns([]table.Column{
			{Title: "Map", Width: listWidth - 18},
			{Title: "Walls", Width: 6},
			{Title: "Segs", Width: 6},
		}),
		table.WithFocused(true),
		table.WithHeight(paneHeight),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	m.table.SetStyles(s)
	m.table.SetRows(m.tableRows())
	m.table.SetCursor(cursor)

	previewWidth := width - 4
	if m.showList {
		previewWidth -= listWidth + 4
	}
	m.preview.Width = max(previewWidth, 10)
	m.preview.Height = paneHeight
}

func (m BrowserModel) tableRows() []table.Row {
	rows := make([]table.Row, len(m.entries))
	for i, e := range m.entries {
		if e.Err != nil {
			rows[i] = table.Row{e.Name, "err", "-"}
			continue
		}
		s := e.Record.Stats()
		rows[i] = table.Row{e.Name, fmt.Sprintf("%d", s.Walls), fmt.Sprintf("%d", s.Segments)}
	}
	return rows
}

// refreshPreview redraws the selected map. top resets the scroll position.
func (m *BrowserModel) refreshPreview(top bool) {
	e, ok := m.Selected()
	switch {
	case !ok:
		m.preview.SetContent(emptyStyle.Render("No maps found."))
	case e.Err != nil:
		m.preview.SetContent(errorStyle.Render("Cannot read map: " + e.Err.Error()))
	default:
		m.preview.SetContent(RenderRecord(e.Record, m.opts))
	}
	if top {
		m.preview.GotoTop()
	}
}

// Init initializes the browser model.
func (m BrowserModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the browser.
func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil

		case key.Matches(msg, m.keys.Walls):
			m.opts.Walls = !m.opts.Walls
			m.refreshPreview(false)
			return m, nil

		case key.Matches(msg, m.keys.Boundary):
			m.opts.Boundary = !m.opts.Boundary
			m.refreshPreview(false)
			return m, nil

		case key.Matches(msg, m.keys.Spawns):
			m.opts.Spawns = !m.opts.Spawns
			m.refreshPreview(false)
			return m, nil

		case key.Matches(msg, m.keys.Segments):
			m.opts.Segments = !m.opts.Segments
			m.refreshPreview(false)
			return m, nil

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			prev := m.table.Cursor()
			m.table, cmd = m.table.Update(msg)
			if m.table.Cursor() != prev {
				m.refreshPreview(true)
			}
			return m, cmd

		case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
			// Pass to viewport for scrolling
			m.preview, cmd = m.preview.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.refreshPreview(false)
		return m, nil
	}

	return m, nil
}

// View renders the browser.
func (m BrowserModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	title := "MAPS"
	if e, ok := m.Selected(); ok {
		title = fmt.Sprintf("MAPS - %s", e.Name)
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("  ")
	b.WriteString(m.layerSummary())
	b.WriteString("\n\n")

	previewRendered := paneStyle.Render(m.preview.View())
	if m.showList {
		listRendered := paneStyle.Width(listWidth).Render(m.table.View())
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, listRendered, "  ", previewRendered))
	} else {
		b.WriteString(previewRendered)
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// layerSummary lists the visible layers.
func (m BrowserModel) layerSummary() string {
	layers := []struct {
		name string
		on   bool
	}{
		{"walls", m.opts.Walls},
		{"boundary", m.opts.Boundary},
		{"spawns", m.opts.Spawns},
		{"segments", m.opts.Segments},
	}
	parts := make([]string, 0, len(layers))
	for _, l := range layers {
		if l.on {
			parts = append(parts, activeLayerStyle.Render(l.name))
		} else {
			parts = append(parts, helpStyle.Render(l.name))
		}
	}
	return strings.Join(parts, " ")
}

// Selected returns the highlighted entry.
func (m BrowserModel) Selected() (MapEntry, bool) {
	if len(m.entries) == 0 {
		return MapEntry{}, false
	}
	i := m.table.Cursor()
	if i < 0 || i >= len(m.entries) {
		return MapEntry{}, false
	}
	return m.entries[i], true
}

// Options returns the layers currently drawn.
func (m BrowserModel) Options() tilemap.RenderOptions {
	return m.opts
}

// IsQuitting returns true if user wants to quit.
func (m BrowserModel) IsQuitting() bool {
	return m.quitting
}

// RunBrowser runs the map browser in the local terminal.
func RunBrowser(entries []MapEntry, width, height int) error {
	p := tea.NewProgram(
		NewBrowserModel(entries, width, height),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))
	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	activeLayerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)
