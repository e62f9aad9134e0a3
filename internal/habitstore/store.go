// Package habitstore owns the in-memory collection of habits, the active
// habit designation, and persistence. All operations are synchronous and run
// to completion; the store is not safe for concurrent use.
package habitstore

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/tickcal/internal/constants"
	"github.com/julianstephens/tickcal/internal/dates"
	apperrors "github.com/julianstephens/tickcal/internal/errors"
	"github.com/julianstephens/tickcal/internal/logger"
	"github.com/julianstephens/tickcal/internal/models"
	"github.com/julianstephens/tickcal/internal/storage"
	"github.com/julianstephens/tickcal/internal/streak"
)

// Cell is one day of a heatmap window.
type Cell struct {
	Day    dates.Day
	Ticked bool
}

type entry struct {
	habit *models.Habit
	seq   int // insertion order, breaks createdAt ties in listings
}

// Store maps habit ids to habits and tracks which one is active. The clock
// is injected so "current streak" can be tested against fixed days.
type Store struct {
	provider storage.Provider
	now      func() time.Time

	habits   map[string]*entry
	activeID string
	nextSeq  int
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source, used by tests to pin "today".
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty store backed by the given provider.
func New(provider storage.Provider, opts ...Option) *Store {
	s := &Store{
		provider: provider,
		now:      time.Now,
		habits:   make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore loads persisted state and reports whether any habits were found.
// Malformed persisted data is discarded entirely rather than partially
// applied. If the store is empty afterwards (first run or discarded blob) a
// default habit is seeded so there is always something to display.
func (s *Store) Restore() bool {
	found := false

	snap, err := s.provider.Load()
	switch {
	case err == nil:
		if loadErr := s.applySnapshot(snap); loadErr != nil {
			logger.Warn("Discarding persisted state", "error", loadErr)
			s.habits = make(map[string]*entry)
			s.activeID = ""
		} else {
			found = len(s.habits) > 0
		}
	case apperrors.Is(err, apperrors.ErrNotFound):
		// first run, nothing persisted yet
	default:
		logger.Warn("Discarding persisted state", "error", err)
	}

	if len(s.habits) == 0 {
		s.seed()
	}
	return found
}

func (s *Store) applySnapshot(snap storage.Snapshot) error {
	habits := make(map[string]*entry, len(snap.Habits))

	// Insert in a deterministic order so listing ties resolve the same way
	// after every restart
	ids := make([]string, 0, len(snap.Habits))
	for id := range snap.Habits {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	seq := 0
	for _, id := range ids {
		rec := snap.Habits[id]
		createdAt, err := time.Parse(time.RFC3339, rec.CreatedAt)
		if err != nil {
			return apperrors.DataIntegrityf("habit %s has invalid createdAt %q", id, rec.CreatedAt)
		}

		habit := models.NewHabit(rec.ID, rec.Name, createdAt)
		for _, ds := range rec.Dates {
			day, err := dates.Parse(ds)
			if err != nil {
				return apperrors.DataIntegrityf("habit %s has invalid day %q", id, ds)
			}
			// set insertion deduplicates any literal duplicates left in the
			// blob after normalization
			habit.Days[day] = struct{}{}
		}

		habits[id] = &entry{habit: habit, seq: seq}
		seq++
	}

	s.habits = habits
	s.nextSeq = seq

	s.activeID = ""
	if snap.CurrentHabitID != nil {
		if _, ok := habits[*snap.CurrentHabitID]; ok {
			s.activeID = *snap.CurrentHabitID
		}
	}
	// a dangling or absent active id moves to some remaining habit
	if s.activeID == "" && len(habits) > 0 {
		s.activeID = s.newestID()
	}
	return nil
}

func (s *Store) seed() {
	habit := models.NewHabit(uuid.New().String(), constants.DefaultHabitName, s.now())
	s.habits[habit.ID] = &entry{habit: habit, seq: s.nextSeq}
	s.nextSeq++
	s.activeID = habit.ID
	s.persist()
}

// Create adds a habit with the given name, makes it active and returns its
// id. The name must be non-empty after trimming whitespace.
func (s *Store) Create(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.Validationf("habit name must not be empty")
	}

	habit := models.NewHabit(uuid.New().String(), name, s.now())
	s.habits[habit.ID] = &entry{habit: habit, seq: s.nextSeq}
	s.nextSeq++
	s.activeID = habit.ID
	s.persist()
	return habit.ID, nil
}

// Rename changes a habit's name.
func (s *Store) Rename(id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.Validationf("habit name must not be empty")
	}
	e, ok := s.habits[id]
	if !ok {
		return apperrors.NotFoundf("habit %s", id)
	}

	e.habit.Name = name
	s.persist()
	return nil
}

// Delete removes a habit permanently. If it was active, the active
// designation moves to the newest remaining habit, or to none.
// Confirmation belongs to the presentation layer, not here.
func (s *Store) Delete(id string) error {
	if _, ok := s.habits[id]; !ok {
		return apperrors.NotFoundf("habit %s", id)
	}

	delete(s.habits, id)
	if s.activeID == id {
		s.activeID = s.newestID()
	}
	s.persist()
	return nil
}

// SetActive designates the habit whose calendar and stats are displayed.
func (s *Store) SetActive(id string) error {
	if _, ok := s.habits[id]; !ok {
		return apperrors.NotFoundf("habit %s", id)
	}
	s.activeID = id
	s.persist()
	return nil
}

// Toggle flips membership of a day in the habit's completion set and returns
// the new state, so callers can update their display without recomputation.
func (s *Store) Toggle(id string, day dates.Day) (bool, error) {
	e, ok := s.habits[id]
	if !ok {
		return false, apperrors.NotFoundf("habit %s", id)
	}

	ticked := e.habit.Toggle(day)
	s.persist()
	return ticked, nil
}

// Get returns a habit by id.
func (s *Store) Get(id string) (*models.Habit, error) {
	e, ok := s.habits[id]
	if !ok {
		return nil, apperrors.NotFoundf("habit %s", id)
	}
	return e.habit, nil
}

// GetByName returns the habit with the given name, if any.
func (s *Store) GetByName(name string) (*models.Habit, error) {
	for _, e := range s.habits {
		if e.habit.Name == name {
			return e.habit, nil
		}
	}
	return nil, apperrors.NotFoundf("habit %q", name)
}

// Active returns the currently active habit, or false when no habits exist.
func (s *Store) Active() (*models.Habit, bool) {
	if s.activeID == "" {
		return nil, false
	}
	e, ok := s.habits[s.activeID]
	if !ok {
		return nil, false
	}
	return e.habit, true
}

// List returns all habits sorted by creation time, newest first. Habits
// created at the same instant keep their insertion order.
func (s *Store) List() []*models.Habit {
	entries := make([]*entry, 0, len(s.habits))
	for _, e := range s.habits {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.habit.CreatedAt.Equal(b.habit.CreatedAt) {
			return a.habit.CreatedAt.After(b.habit.CreatedAt)
		}
		return a.seq < b.seq
	})

	habits := make([]*models.Habit, len(entries))
	for i, e := range entries {
		habits[i] = e.habit
	}
	return habits
}

// Stats computes totals and streaks for a habit as of today.
func (s *Store) Stats(id string) (streak.Stats, error) {
	return s.StatsAsOf(id, dates.FromTime(s.now()))
}

// StatsAsOf computes totals and streaks for a habit as of the given day.
func (s *Store) StatsAsOf(id string, today dates.Day) (streak.Stats, error) {
	e, ok := s.habits[id]
	if !ok {
		return streak.Stats{}, apperrors.NotFoundf("habit %s", id)
	}
	return streak.Compute(e.habit.DayList(), today), nil
}

// Heatmap returns the habit's tick state for a window of numDays consecutive
// days starting at start, in chronological order.
func (s *Store) Heatmap(id string, start dates.Day, numDays int) ([]Cell, error) {
	e, ok := s.habits[id]
	if !ok {
		return nil, apperrors.NotFoundf("habit %s", id)
	}

	cells := make([]Cell, numDays)
	for i := 0; i < numDays; i++ {
		day := start.AddDays(i)
		cells[i] = Cell{Day: day, Ticked: e.habit.Ticked(day)}
	}
	return cells, nil
}

// Today returns the current calendar day from the injected clock.
func (s *Store) Today() dates.Day {
	return dates.FromTime(s.now())
}

// persist writes the full store synchronously. A write failure is surfaced
// as a warning; the in-memory mutation that triggered it stands.
func (s *Store) persist() {
	if err := s.provider.Save(s.snapshot()); err != nil {
		logger.Warn("Failed to persist store; in-memory state and storage have diverged", "error", err)
	}
}

func (s *Store) snapshot() storage.Snapshot {
	snap := storage.Snapshot{Habits: make(map[string]storage.HabitRecord, len(s.habits))}

	for id, e := range s.habits {
		days := e.habit.DayList()
		dateStrs := make([]string, len(days))
		for i, d := range days {
			dateStrs[i] = d.String()
		}
		snap.Habits[id] = storage.HabitRecord{
			ID:        e.habit.ID,
			Name:      e.habit.Name,
			Dates:     dateStrs,
			CreatedAt: e.habit.CreatedAt.UTC().Format(time.RFC3339),
		}
	}

	if s.activeID != "" {
		active := s.activeID
		snap.CurrentHabitID = &active
	}
	return snap
}

func (s *Store) newestID() string {
	habits := s.List()
	if len(habits) == 0 {
		return ""
	}
	return habits[0].ID
}
