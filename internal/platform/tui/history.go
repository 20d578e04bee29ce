package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tilemaps/internal/storage"
)

const maxHistory = 200 // Max conversions to load

// ConversionLister is the part of storage.Store the history view reads.
type ConversionLister interface {
	RecentConversions(limit int) ([]storage.Conversion, error)
}

// HistoryModel is the Bubble Tea model for the conversion history screen.
type HistoryModel struct {
	store       ConversionLister
	conversions []storage.Conversion
	loadErr     error
	table       table.Model
	help        help.Model
	keys        HistoryKeyMap
	width       int
	height      int
	quitting    bool
}

// NewHistoryModel creates a new history model and loads the latest records.
func NewHistoryModel(store ConversionLister, width, height int) HistoryModel {
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}

	h := help.New()
	h.ShowAll = false
	h.Width = width

	m := HistoryModel{
		store:  store,
		keys:   DefaultHistoryKeyMap(),
		help:   h,
		width:  width,
		height: height,
	}
	m.table = m.createTable()
	m.load()
	return m
}

// createTable creates a new table with columns sized to the window.
func (m *HistoryModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "When", Width: 12},
		{Title: "Source", Width: 20},
		{Title: "Status", Width: 8},
		{Title: "Stage", Width: 7},
		{Title: "Walls", Width: 7},
		{Title: "Segs", Width: 6},
		{Title: "ms", Width: 6},
	}

	// Give the source column whatever space is left
	fixed := 0
	for i, c := range columns {
		if i != 1 {
			fixed += c.Width + 2
		}
	}
	if w := m.width - 6 - fixed; w > columns[1].Width {
		columns[1].Width = min(w, 48)
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-9, 3)), // Leave room for header, detail, help
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
	t.SetStyles(s)

	return t
}

// load fetches recent conversions from the store.
func (m *HistoryModel) load() {
	m.conversions, m.loadErr = nil, nil
	if m.store != nil {
		m.conversions, m.loadErr = m.store.RecentConversions(maxHistory)
	}
	m.updateTableRows()
}

// updateTableRows updates the table with current conversions.
func (m *HistoryModel) updateTableRows() {
	rows := make([]table.Row, len(m.conversions))
	for i, c := range m.conversions {
		rows[i] = table.Row{
			c.CreatedAt.Local().Format("Jan 02 15:04"),
			c.Source,
			c.Status,
			c.Stage,
			fmt.Sprintf("%d", c.Walls),
			fmt.Sprintf("%d", c.Segments),
			fmt.Sprintf("%d", c.DurationMs),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// Init initializes the history model.
func (m HistoryModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the history screen.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Reload):
			m.load()
			return m, nil

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		cursor := m.table.Cursor()
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.updateTableRows()
		m.table.SetCursor(cursor)
		m.help.Width = msg.Width
		return m, nil
	}

	return m, nil
}

// View renders the history screen.
func (m HistoryModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("CONVERSION HISTORY (%d)", len(m.conversions))))
	b.WriteString("\n\n")

	switch {
	case m.loadErr != nil:
		b.WriteString(paneStyle.Render(errorStyle.Render("Cannot load history: " + m.loadErr.Error())))
	case len(m.conversions) == 0:
		b.WriteString(paneStyle.Render(emptyStyle.Padding(2, 4).Render("No conversions recorded yet.\nRun a build to populate the history.")))
	default:
		b.WriteString(paneStyle.Render(m.table.View()))
		b.WriteString("\n")
		b.WriteString(m.detail())
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// detail describes the selected conversion on one line.
func (m HistoryModel) detail() string {
	c, ok := m.Selected()
	if !ok {
		return ""
	}
	if c.Error != "" {
		return errorStyle.Render(c.Source + ": " + c.Error)
	}
	return helpStyle.Render(fmt.Sprintf("%s -> %s  sha256:%s", c.Source, c.Output, shortHash(c.Hash)))
}

// Selected returns the highlighted conversion.
func (m HistoryModel) Selected() (storage.Conversion, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.conversions) {
		return storage.Conversion{}, false
	}
	return m.conversions[i], true
}

// IsQuitting returns true if user wants to quit.
func (m HistoryModel) IsQuitting() bool {
	return m.quitting
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

// RunHistory runs the history screen in the local terminal.
func RunHistory(store ConversionLister, width, height int) error {
	p := tea.NewProgram(
		NewHistoryModel(store, width, height),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
