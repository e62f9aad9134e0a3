package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/tickcal/internal/constants"
	"github.com/julianstephens/tickcal/internal/tui/components/calendar"
	"github.com/julianstephens/tickcal/internal/tui/components/habitlist"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		m.height = msg.Height
		m.habitList.SetSize(msg.Width-4, msg.Height-6)
	}

	// Handle Add Habit State
	if m.state == constants.StateAddHabit {
		if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
			m.formError = ""
			m.state = constants.StateHabits
			return m, nil
		}

		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}
		cmds = append(cmds, cmd)

		switch m.form.State {
		case huh.StateCompleted:
			if _, err := m.store.Create(m.habitForm.Name); err != nil {
				// Stay in form state on error to allow retry
				m.formError = fmt.Sprintf("Failed to add habit: %v", err)
				m.form.State = huh.StateNormal
			} else {
				m.formError = ""
				m.refreshHabits()
				m.refreshCalendar()
				m.state = constants.StateHabits
			}
		case huh.StateAborted:
			m.formError = ""
			m.state = constants.StateHabits
		}
		return m, tea.Batch(cmds...)
	}

	// Handle Rename Habit State
	if m.state == constants.StateRenameHabit {
		if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
			m.formError = ""
			m.state = constants.StateHabits
			return m, nil
		}

		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}
		cmds = append(cmds, cmd)

		switch m.form.State {
		case huh.StateCompleted:
			if err := m.store.Rename(m.habitToRename, m.habitForm.Name); err != nil {
				m.formError = fmt.Sprintf("Failed to rename habit: %v", err)
				m.form.State = huh.StateNormal
			} else {
				m.formError = ""
				m.refreshHabits()
				m.refreshCalendar()
				m.state = constants.StateHabits
			}
		case huh.StateAborted:
			m.formError = ""
			m.state = constants.StateHabits
		}
		return m, tea.Batch(cmds...)
	}

	// Handle Confirm Delete State
	if m.state == constants.StateConfirmDelete {
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch msg.String() {
			case "y", "Y":
				if err := m.store.Delete(m.habitToDelete); err == nil {
					m.refreshHabits()
					m.refreshCalendar()
				}
				m.habitToDelete = ""
				m.state = constants.StateHabits
			case "n", "N", "esc":
				m.habitToDelete = ""
				m.state = constants.StateHabits
			}
		}
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Tab):
			m.state = nextState(m.state, 1)
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = nextState(m.state, -1)
			return m, nil
		}

	case calendar.ToggleDayMsg:
		if habit, ok := m.store.Active(); ok {
			if _, err := m.store.Toggle(habit.ID, msg.Day); err == nil {
				m.refreshCalendar()
				m.refreshHabits()
			}
		}
		return m, nil

	case habitlist.AddHabitMsg:
		m.habitForm = &HabitFormModel{}
		m.form = newHabitForm(m.habitForm, "New habit")
		m.state = constants.StateAddHabit
		return m, m.form.Init()

	case habitlist.RenameHabitMsg:
		habit, err := m.store.Get(msg.ID)
		if err != nil {
			return m, nil
		}
		m.habitToRename = msg.ID
		m.habitForm = &HabitFormModel{Name: habit.Name}
		m.form = newHabitForm(m.habitForm, "Rename habit")
		m.state = constants.StateRenameHabit
		return m, m.form.Init()

	case habitlist.DeleteHabitMsg:
		m.habitToDelete = msg.ID
		m.state = constants.StateConfirmDelete
		return m, nil

	case habitlist.SelectHabitMsg:
		if err := m.store.SetActive(msg.ID); err == nil {
			m.refreshHabits()
			m.refreshCalendar()
			m.state = constants.StateCalendar
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.state {
	case constants.StateCalendar:
		m.calendar, cmd = m.calendar.Update(msg)
	case constants.StateHabits:
		m.habitList, cmd = m.habitList.Update(msg)
	}
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func newHabitForm(data *HabitFormModel, title string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Value(&data.Name).
				Validate(func(s string) error {
					if len(s) == 0 {
						return fmt.Errorf("name must not be empty")
					}
					return nil
				}),
		),
	)
}

// nextState cycles through the three browsing views; form and confirm
// states are never entered by tabbing.
func nextState(state constants.SessionState, delta int) constants.SessionState {
	views := []constants.SessionState{
		constants.StateCalendar,
		constants.StateHabits,
		constants.StateStats,
	}
	for i, v := range views {
		if v == state {
			return views[(i+delta+len(views))%len(views)]
		}
	}
	return constants.StateCalendar
}
