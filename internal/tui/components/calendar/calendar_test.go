package calendar

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/tickcal/internal/dates"
)

func keyMsg(s string) tea.KeyMsg {
	if s == "enter" {
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestCursorMovement(t *testing.T) {
	today := dates.Day{Year: 2024, Month: time.January, Day: 15}
	m := New(today)

	m, _ = m.Update(keyMsg("l"))
	if want := (dates.Day{Year: 2024, Month: time.January, Day: 16}); m.Cursor() != want {
		t.Errorf("cursor after right = %v, want %v", m.Cursor(), want)
	}

	m, _ = m.Update(keyMsg("j"))
	if want := (dates.Day{Year: 2024, Month: time.January, Day: 23}); m.Cursor() != want {
		t.Errorf("cursor after down = %v, want %v", m.Cursor(), want)
	}

	m, _ = m.Update(keyMsg("t"))
	if m.Cursor() != today {
		t.Errorf("cursor after today = %v, want %v", m.Cursor(), today)
	}
}

func TestCursorCrossesMonthBoundary(t *testing.T) {
	m := New(dates.Day{Year: 2024, Month: time.January, Day: 31})

	m, _ = m.Update(keyMsg("l"))
	want := dates.Day{Year: 2024, Month: time.February, Day: 1}
	if m.Cursor() != want {
		t.Errorf("cursor = %v, want %v", m.Cursor(), want)
	}
	if m.month != time.February {
		t.Errorf("displayed month = %v, want February", m.month)
	}
}

func TestMonthShiftClampsCursor(t *testing.T) {
	// Jan 31 has no counterpart in February
	m := New(dates.Day{Year: 2024, Month: time.January, Day: 31})

	m, _ = m.Update(keyMsg("n"))
	want := dates.Day{Year: 2024, Month: time.February, Day: 29}
	if m.Cursor() != want {
		t.Errorf("cursor after next month = %v, want clamped %v", m.Cursor(), want)
	}

	m, _ = m.Update(keyMsg("p"))
	if m.month != time.January {
		t.Errorf("displayed month = %v, want January", m.month)
	}
}

func TestToggleEmitsMessage(t *testing.T) {
	day := dates.Day{Year: 2024, Month: time.January, Day: 15}
	m := New(day)

	_, cmd := m.Update(keyMsg("enter"))
	if cmd == nil {
		t.Fatal("toggle produced no command")
	}
	msg, ok := cmd().(ToggleDayMsg)
	if !ok {
		t.Fatalf("toggle produced %T, want ToggleDayMsg", cmd())
	}
	if msg.Day != day {
		t.Errorf("ToggleDayMsg day = %v, want %v", msg.Day, day)
	}
}
