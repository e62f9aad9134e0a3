package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/tickcal/internal/constants"
	"github.com/julianstephens/tickcal/internal/dates"
	"github.com/julianstephens/tickcal/internal/habitstore"
	"github.com/julianstephens/tickcal/internal/tui/components/calendar"
	"github.com/julianstephens/tickcal/internal/tui/components/habitlist"
)

type HabitFormModel struct {
	Name string
}

type Model struct {
	store         *habitstore.Store
	state         constants.SessionState
	keys          KeyMap
	help          help.Model
	calendar      calendar.Model
	habitList     habitlist.Model
	form          *huh.Form
	habitForm     *HabitFormModel
	habitToRename string
	habitToDelete string
	formError     string
	quitting      bool
	width         int
	height        int
}

func NewModel(store *habitstore.Store) Model {
	m := Model{
		store:    store,
		state:    constants.StateCalendar,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		calendar: calendar.New(store.Today()),
	}
	m.refreshCalendar()
	m.habitList = habitlist.New(m.habitItems(), 0, 0)
	return m
}

// refreshCalendar points the calendar at the active habit's days.
func (m *Model) refreshCalendar() {
	m.calendar.SetToday(m.store.Today())

	habit, ok := m.store.Active()
	if !ok {
		m.calendar.SetHabit("", nil)
		return
	}

	ticked := make(map[dates.Day]bool, len(habit.Days))
	for day := range habit.Days {
		ticked[day] = true
	}
	m.calendar.SetHabit(habit.Name, ticked)
}

func (m *Model) refreshHabits() {
	m.habitList.SetItems(m.habitItems())
}

func (m Model) habitItems() []habitlist.Item {
	active, _ := m.store.Active()

	habits := m.store.List()
	items := make([]habitlist.Item, len(habits))
	for i, habit := range habits {
		stats, _ := m.store.Stats(habit.ID)
		items[i] = habitlist.Item{
			Habit:    habit,
			Stats:    stats,
			IsActive: active != nil && habit.ID == active.ID,
		}
	}
	return items
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Tab, m.keys.ShiftTab},
		{m.keys.Quit, m.keys.Help},
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}
