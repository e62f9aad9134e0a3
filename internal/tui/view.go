package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/tickcal/internal/constants"
	"github.com/julianstephens/tickcal/internal/tui/components/heatmap"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateCalendar:
		content = docStyle.Render(m.calendar.View())
	case constants.StateHabits:
		content = docStyle.Render(m.habitList.View())
	case constants.StateStats:
		content = docStyle.Render(m.viewStats())
	case constants.StateAddHabit, constants.StateRenameHabit:
		content = m.viewForm()
	case constants.StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	titles := []string{"Calendar", "Habits", "Stats"}
	states := []constants.SessionState{
		constants.StateCalendar,
		constants.StateHabits,
		constants.StateStats,
	}
	for i, title := range titles {
		if m.state == states[i] {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewForm() string {
	view := m.form.View()
	if m.formError != "" {
		view = lipgloss.JoinVertical(lipgloss.Left, errorStyle.Render(m.formError), view)
	}
	return view
}

func (m Model) viewStats() string {
	habit, ok := m.store.Active()
	if !ok {
		return "\n  No habits yet."
	}

	stats, err := m.store.Stats(habit.ID)
	if err != nil {
		return errorStyle.Render(fmt.Sprintf("Failed to load stats: %v", err))
	}

	today := m.store.Today()
	start := today.AddDays(-(constants.HeatmapDays - 1))
	cells, err := m.store.Heatmap(habit.ID, start, constants.HeatmapDays)
	if err != nil {
		return errorStyle.Render(fmt.Sprintf("Failed to load heatmap: %v", err))
	}

	summary := fmt.Sprintf("%s   current streak %s   longest %s   total %s",
		statStyle.Render(habit.Name),
		statStyle.Render(fmt.Sprintf("%d", stats.CurrentStreak)),
		statStyle.Render(fmt.Sprintf("%d", stats.LongestStreak)),
		statStyle.Render(fmt.Sprintf("%d", stats.TotalCount)),
	)

	return lipgloss.JoinVertical(lipgloss.Left, summary, "", heatmap.Render(cells))
}

func (m Model) viewConfirmDelete() string {
	name := ""
	if habit, err := m.store.Get(m.habitToDelete); err == nil {
		name = habit.Name
	}
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Delete habit %q and all its history?", name)),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
