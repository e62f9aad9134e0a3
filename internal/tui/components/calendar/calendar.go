// Package calendar renders one month of a habit's completion days and lets
// the user move a cursor and toggle days.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/tickcal/internal/dates"
)

// ToggleDayMsg asks the app to flip a day on the displayed habit.
type ToggleDayMsg struct {
	Day dates.Day
}

type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Toggle    key.Binding
	PrevMonth key.Binding
	NextMonth key.Binding
	Today     key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "right"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "toggle day"),
		),
		PrevMonth: key.NewBinding(
			key.WithKeys("p", "["),
			key.WithHelp("p", "prev month"),
		),
		NextMonth: key.NewBinding(
			key.WithKeys("n", "]"),
			key.WithHelp("n", "next month"),
		),
		Today: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "today"),
		),
	}
}

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	weekdayStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	tickedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	todayStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	cursorStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Bold(true)
)

type Model struct {
	keys      KeyMap
	habitName string
	year      int
	month     time.Month
	cursor    dates.Day
	today     dates.Day
	ticked    map[dates.Day]bool
}

func New(today dates.Day) Model {
	return Model{
		keys:   DefaultKeyMap(),
		year:   today.Year,
		month:  today.Month,
		cursor: today,
		today:  today,
		ticked: map[dates.Day]bool{},
	}
}

// SetHabit updates which habit is displayed and its completion days.
func (m *Model) SetHabit(name string, ticked map[dates.Day]bool) {
	m.habitName = name
	if ticked == nil {
		ticked = map[dates.Day]bool{}
	}
	m.ticked = ticked
}

// SetToday moves the today marker, keeping the view on its current month.
func (m *Model) SetToday(today dates.Day) {
	m.today = today
}

// Cursor returns the currently selected day.
func (m Model) Cursor() dates.Day {
	return m.cursor
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Up):
			m.setCursor(m.cursor.AddDays(-7))
		case key.Matches(msg, m.keys.Down):
			m.setCursor(m.cursor.AddDays(7))
		case key.Matches(msg, m.keys.Left):
			m.setCursor(m.cursor.AddDays(-1))
		case key.Matches(msg, m.keys.Right):
			m.setCursor(m.cursor.AddDays(1))
		case key.Matches(msg, m.keys.PrevMonth):
			m.shiftMonth(-1)
		case key.Matches(msg, m.keys.NextMonth):
			m.shiftMonth(1)
		case key.Matches(msg, m.keys.Today):
			m.setCursor(m.today)
		case key.Matches(msg, m.keys.Toggle):
			day := m.cursor
			return m, func() tea.Msg { return ToggleDayMsg{Day: day} }
		}
	}
	return m, nil
}

// setCursor follows the cursor across month boundaries so arrow keys flow
// naturally from one month into the next.
func (m *Model) setCursor(day dates.Day) {
	m.cursor = day
	m.year = day.Year
	m.month = day.Month
}

func (m *Model) shiftMonth(delta int) {
	t := time.Date(m.year, m.month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, delta, 0)
	m.year = t.Year()
	m.month = t.Month()

	// Keep the cursor inside the displayed month
	day := m.cursor.Day
	if max := daysInMonth(m.year, m.month); day > max {
		day = max
	}
	m.cursor = dates.Day{Year: m.year, Month: m.month, Day: day}
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (m Model) View() string {
	var b strings.Builder

	title := fmt.Sprintf("%s %d", m.month, m.year)
	if m.habitName != "" {
		title = m.habitName + " — " + title
	}
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n\n")
	b.WriteString(weekdayStyle.Render(" Su  Mo  Tu  We  Th  Fr  Sa "))
	b.WriteString("\n")

	first := time.Date(m.year, m.month, 1, 0, 0, 0, 0, time.UTC)
	offset := int(first.Weekday())
	total := daysInMonth(m.year, m.month)

	col := 0
	b.WriteString(strings.Repeat("    ", offset))
	col = offset

	for d := 1; d <= total; d++ {
		day := dates.Day{Year: m.year, Month: m.month, Day: d}

		cell := fmt.Sprintf("%2d", d)
		switch {
		case m.ticked[day]:
			cell = tickedStyle.Render(fmt.Sprintf("%2d", d)) + "✓"
		case day == m.today:
			cell = todayStyle.Render(fmt.Sprintf("%2d", d)) + " "
		default:
			cell += " "
		}
		if day == m.cursor {
			cell = cursorStyle.Render(cell)
		}

		b.WriteString(" " + cell)
		col++
		if col == 7 {
			b.WriteString("\n")
			col = 0
		}
	}
	if col != 0 {
		b.WriteString("\n")
	}

	return b.String()
}
