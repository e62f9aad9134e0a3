package models

import (
	"time"

	"github.com/julianstephens/tickcal/internal/dates"
)

// Habit is a named practice whose completion is tracked per calendar day.
// Days is a set: a day is either ticked or not, never counted twice.
type Habit struct {
	ID        string
	Name      string
	Days      map[dates.Day]struct{}
	CreatedAt time.Time
}

// NewHabit creates a habit with an empty day set.
func NewHabit(id, name string, createdAt time.Time) *Habit {
	return &Habit{
		ID:        id,
		Name:      name,
		Days:      make(map[dates.Day]struct{}),
		CreatedAt: createdAt,
	}
}

// Ticked reports whether the given day is in the habit's completion set.
func (h *Habit) Ticked(d dates.Day) bool {
	_, ok := h.Days[d]
	return ok
}

// Toggle flips membership of the given day and returns the new state.
func (h *Habit) Toggle(d dates.Day) bool {
	if h.Ticked(d) {
		delete(h.Days, d)
		return false
	}
	h.Days[d] = struct{}{}
	return true
}

// DayList returns the completion days in ascending chronological order.
func (h *Habit) DayList() []dates.Day {
	days := make([]dates.Day, 0, len(h.Days))
	for d := range h.Days {
		days = append(days, d)
	}
	dates.Sort(days)
	return days
}
