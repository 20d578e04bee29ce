package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tilemaps/internal/tilemap"
)

// cellStyles maps canvas runes to lipgloss styles.
var cellStyles = map[rune]lipgloss.Style{
	tilemap.RuneEmpty:      lipgloss.NewStyle().Foreground(lipgloss.Color("237")),
	tilemap.RuneWall:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	tilemap.RuneBoundary:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	tilemap.RuneSpawn:      lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	tilemap.RuneHorizontal: lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	tilemap.RuneVertical:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	tilemap.RuneCrossing:   lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	tilemap.RunePoint:      lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
}

// RenderCanvas converts a canvas to a styled string for display.
// Groups adjacent cells with the same rune to minimize ANSI escape sequences.
func RenderCanvas(c tilemap.Canvas) string {
	var sb strings.Builder

	for y, row := range c.Cells {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < len(row) {
			start := row[x]
			end := x
			for end < len(row) && row[end] == start {
				end++
			}

			style, ok := cellStyles[start]
			if !ok {
				style = lipgloss.NewStyle()
			}
			sb.WriteString(style.Render(string(row[x:end])))
			x = end
		}
	}
	return sb.String()
}

// RenderRecord renders the selected layers of r in color with a stats header.
func RenderRecord(r *tilemap.MapRecord, opts tilemap.RenderOptions) string {
	s := r.Stats()
	header := headerStyle.Render(fmt.Sprintf("Walls: %d | Boundary: %d | Spawns: %d | Segments: %d",
		s.Walls, s.BoundaryTiles, s.Spawns, s.Segments))

	c := tilemap.Rasterize(r, opts)
	if len(c.Cells) == 0 {
		return header + "\n" + emptyStyle.Render("(empty map)")
	}
	return header + "\n" + RenderCanvas(c)
}

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
)
