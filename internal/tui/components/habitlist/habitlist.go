// Package habitlist is the habit picker: a scrollable list of habits with
// their streaks, emitting messages for the app model to act on.
package habitlist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/tickcal/internal/models"
	"github.com/julianstephens/tickcal/internal/streak"
)

type AddHabitMsg struct{}

type RenameHabitMsg struct {
	ID string
}

type DeleteHabitMsg struct {
	ID string
}

type SelectHabitMsg struct {
	ID string
}

type Item struct {
	Habit    *models.Habit
	Stats    streak.Stats
	IsActive bool
}

func (i Item) Title() string {
	title := i.Habit.Name
	if i.IsActive {
		title = "● " + title
	} else {
		title = "  " + title
	}
	return title
}

func (i Item) Description() string {
	return fmt.Sprintf("streak %d · longest %d · %d days total",
		i.Stats.CurrentStreak, i.Stats.LongestStreak, i.Stats.TotalCount)
}

func (i Item) FilterValue() string { return i.Habit.Name }

type KeyMap struct {
	Add    key.Binding
	Rename key.Binding
	Delete key.Binding
	Select key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Rename: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rename"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "make active"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(items []Item, width, height int) Model {
	l := list.New(toListItems(items), list.NewDefaultDelegate(), width, height)
	l.Title = "Habits"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Rename, keys.Delete, keys.Select}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Rename, keys.Delete, keys.Select}
	}

	return Model{list: l, keys: keys}
}

func toListItems(items []Item) []list.Item {
	out := make([]list.Item, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

func (m *Model) SetItems(items []Item) {
	m.list.SetItems(toListItems(items))
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddHabitMsg{} }
		case key.Matches(msg, m.keys.Rename):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return RenameHabitMsg{ID: i.Habit.ID} }
			}
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return DeleteHabitMsg{ID: i.Habit.ID} }
			}
		case key.Matches(msg, m.keys.Select):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return SelectHabitMsg{ID: i.Habit.ID} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No habits yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
