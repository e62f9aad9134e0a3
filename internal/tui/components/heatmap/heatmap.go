// Package heatmap renders a year of habit history as a week-per-column grid,
// newest week on the right.
package heatmap

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/tickcal/internal/habitstore"
)

var (
	tickedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

var rowLabels = [7]string{"   ", "Mon", "   ", "Wed", "   ", "Fri", "   "}

// Render draws cells as a grid of 7 weekday rows. Cells must be consecutive
// days in chronological order; the first cell's weekday decides the leading
// gap in the top rows.
func Render(cells []habitstore.Cell) string {
	if len(cells) == 0 {
		return ""
	}

	offset := int(cells[0].Day.Time().Weekday())
	weeks := (offset + len(cells) + 6) / 7

	var b strings.Builder
	for row := 0; row < 7; row++ {
		b.WriteString(labelStyle.Render(rowLabels[row]))
		b.WriteString(" ")
		for week := 0; week < weeks; week++ {
			idx := week*7 + row - offset
			if idx < 0 || idx >= len(cells) {
				b.WriteString("  ")
				continue
			}
			if cells[idx].Ticked {
				b.WriteString(tickedStyle.Render("■ "))
			} else {
				b.WriteString(emptyStyle.Render("· "))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
