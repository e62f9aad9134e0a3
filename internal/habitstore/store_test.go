package habitstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/tickcal/internal/constants"
	"github.com/julianstephens/tickcal/internal/dates"
	apperrors "github.com/julianstephens/tickcal/internal/errors"
	"github.com/julianstephens/tickcal/internal/storage"
)

// failingProvider simulates a full or unavailable durable store
type failingProvider struct {
	saves int
}

func (p *failingProvider) Init() error { return nil }
func (p *failingProvider) Load() (storage.Snapshot, error) {
	return storage.Snapshot{}, apperrors.NotFoundf("nothing persisted")
}
func (p *failingProvider) Save(storage.Snapshot) error {
	p.saves++
	return apperrors.Persistencef("disk full")
}
func (p *failingProvider) Close() error          { return nil }
func (p *failingProvider) GetConfigPath() string { return "" }

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tickcal.json")
	return New(storage.NewJSONStore(path), WithClock(fixedClock("2024-01-10")))
}

func fixedClock(day string) func() time.Time {
	d, err := dates.Parse(day)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return d.Time().Add(9 * time.Hour) }
}

func mustDay(t *testing.T, s string) dates.Day {
	t.Helper()
	d, err := dates.Parse(s)
	if err != nil {
		t.Fatalf("bad test day %q: %v", s, err)
	}
	return d
}

func TestCreate(t *testing.T) {
	s := newTestStore(t)

	id, err := s.Create("Read")
	if err != nil {
		t.Fatalf("Create() returned error: %v", err)
	}
	if id == "" {
		t.Fatal("Create() returned empty id")
	}

	habit, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get() returned error: %v", err)
	}
	if habit.Name != "Read" {
		t.Errorf("habit name = %q, want %q", habit.Name, "Read")
	}
	if len(habit.Days) != 0 {
		t.Errorf("new habit has %d days, want 0", len(habit.Days))
	}

	active, ok := s.Active()
	if !ok || active.ID != id {
		t.Errorf("active habit = %v, want newly created %s", active, id)
	}
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"tabs and newlines", "\t\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			before := len(s.List())

			_, err := s.Create(tt.input)
			if !apperrors.Is(err, apperrors.ErrValidation) {
				t.Errorf("Create(%q) = %v, want ErrValidation", tt.input, err)
			}
			if got := len(s.List()); got != before {
				t.Errorf("store mutated on failed create: %d habits, want %d", got, before)
			}
		})
	}
}

func TestCreateTrimsName(t *testing.T) {
	s := newTestStore(t)
	id, err := s.Create("  Read  ")
	if err != nil {
		t.Fatal(err)
	}
	habit, _ := s.Get(id)
	if habit.Name != "Read" {
		t.Errorf("habit name = %q, want trimmed %q", habit.Name, "Read")
	}
}

func TestRename(t *testing.T) {
	s := newTestStore(t)
	id, _ := s.Create("Read")

	if err := s.Rename(id, "Read More"); err != nil {
		t.Fatalf("Rename() returned error: %v", err)
	}
	habit, _ := s.Get(id)
	if habit.Name != "Read More" {
		t.Errorf("habit name = %q, want %q", habit.Name, "Read More")
	}

	if err := s.Rename(id, " "); !apperrors.Is(err, apperrors.ErrValidation) {
		t.Errorf("Rename with blank name = %v, want ErrValidation", err)
	}
	if err := s.Rename("nope", "x"); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Rename unknown id = %v, want ErrNotFound", err)
	}
}

func TestToggle(t *testing.T) {
	s := newTestStore(t)
	id, _ := s.Create("Read")
	day := mustDay(t, "2024-1-9")

	ticked, err := s.Toggle(id, day)
	if err != nil {
		t.Fatalf("Toggle() returned error: %v", err)
	}
	if !ticked {
		t.Error("first Toggle() = false, want true")
	}

	stats, _ := s.Stats(id)
	if stats.TotalCount != 1 {
		t.Errorf("TotalCount after tick = %d, want 1", stats.TotalCount)
	}

	ticked, err = s.Toggle(id, day)
	if err != nil {
		t.Fatalf("Toggle() returned error: %v", err)
	}
	if ticked {
		t.Error("second Toggle() = true, want false")
	}

	stats, _ = s.Stats(id)
	if stats.TotalCount != 0 {
		t.Errorf("TotalCount after untick = %d, want 0", stats.TotalCount)
	}
}

func TestToggleUnknownHabit(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Toggle("nope", mustDay(t, "2024-1-9"))
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Toggle unknown id = %v, want ErrNotFound", err)
	}
}

func TestDeleteReassignsActive(t *testing.T) {
	s := newTestStore(t)
	first, _ := s.Create("First")
	second, _ := s.Create("Second")

	// second is active (created last); delete it
	if err := s.Delete(second); err != nil {
		t.Fatalf("Delete() returned error: %v", err)
	}
	active, ok := s.Active()
	if !ok {
		t.Fatal("no active habit after deleting one of two")
	}
	if active.ID != first {
		t.Errorf("active = %s, want %s", active.ID, first)
	}

	if err := s.Delete(first); err != nil {
		t.Fatalf("Delete() returned error: %v", err)
	}
	if _, ok := s.Active(); ok {
		t.Error("active habit remains after deleting the last habit")
	}

	if err := s.Delete("nope"); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Delete unknown id = %v, want ErrNotFound", err)
	}
}

func TestDeleteInactiveKeepsActive(t *testing.T) {
	s := newTestStore(t)
	first, _ := s.Create("First")
	second, _ := s.Create("Second")

	if err := s.Delete(first); err != nil {
		t.Fatal(err)
	}
	active, ok := s.Active()
	if !ok || active.ID != second {
		t.Errorf("active = %v, want untouched %s", active, second)
	}
}

func TestSetActive(t *testing.T) {
	s := newTestStore(t)
	first, _ := s.Create("First")
	s.Create("Second")

	if err := s.SetActive(first); err != nil {
		t.Fatalf("SetActive() returned error: %v", err)
	}
	active, _ := s.Active()
	if active.ID != first {
		t.Errorf("active = %s, want %s", active.ID, first)
	}

	if err := s.SetActive("nope"); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("SetActive unknown id = %v, want ErrNotFound", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickcal.json")
	current := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	s := New(storage.NewJSONStore(path), WithClock(func() time.Time { return current }))

	s.Create("Oldest")
	current = current.Add(24 * time.Hour)
	s.Create("Middle")
	current = current.Add(24 * time.Hour)
	s.Create("Newest")

	names := []string{}
	for _, h := range s.List() {
		names = append(names, h.Name)
	}
	want := []string{"Newest", "Middle", "Oldest"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("List() order = %v, want %v", names, want)
		}
	}
}

// Habits created at the same instant keep their insertion order
func TestListInsertionOrderTies(t *testing.T) {
	s := newTestStore(t)
	s.Create("A")
	s.Create("B")
	s.Create("C")

	habits := s.List()
	// same createdAt for all three; insertion order applies
	want := []string{"A", "B", "C"}
	for i, h := range habits {
		if h.Name != want[i] {
			t.Fatalf("List() tie order = %v at %d, want %v", h.Name, i, want[i])
		}
	}
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickcal.json")
	clock := fixedClock("2024-01-10")

	s := New(storage.NewJSONStore(path), WithClock(clock))
	readID, _ := s.Create("Read")
	runID, _ := s.Create("Run")
	s.Toggle(readID, mustDay(t, "2024-1-8"))
	s.Toggle(readID, mustDay(t, "2024-1-9"))
	s.Toggle(runID, mustDay(t, "2024-1-1"))
	s.SetActive(readID)

	restored := New(storage.NewJSONStore(path), WithClock(clock))
	if found := restored.Restore(); !found {
		t.Fatal("Restore() = false, want true")
	}

	for _, id := range []string{readID, runID} {
		orig, _ := s.Get(id)
		got, err := restored.Get(id)
		if err != nil {
			t.Fatalf("restored store missing habit %s: %v", id, err)
		}
		if got.Name != orig.Name {
			t.Errorf("habit %s name = %q, want %q", id, got.Name, orig.Name)
		}
		if !got.CreatedAt.Equal(orig.CreatedAt) {
			t.Errorf("habit %s createdAt = %v, want %v", id, got.CreatedAt, orig.CreatedAt)
		}
		if len(got.Days) != len(orig.Days) {
			t.Errorf("habit %s has %d days, want %d", id, len(got.Days), len(orig.Days))
		}
		for d := range orig.Days {
			if !got.Ticked(d) {
				t.Errorf("habit %s missing day %s after restore", id, d)
			}
		}
	}

	active, ok := restored.Active()
	if !ok || active.ID != readID {
		t.Errorf("restored active = %v, want %s", active, readID)
	}
}

func TestRestoreSeedsEmptyStore(t *testing.T) {
	s := newTestStore(t)

	if found := s.Restore(); found {
		t.Error("Restore() on first run = true, want false")
	}

	habits := s.List()
	if len(habits) != 1 {
		t.Fatalf("seeded store has %d habits, want 1", len(habits))
	}
	if habits[0].Name != constants.DefaultHabitName {
		t.Errorf("seeded habit name = %q, want %q", habits[0].Name, constants.DefaultHabitName)
	}
	if _, ok := s.Active(); !ok {
		t.Error("seeded habit is not active")
	}
}

// A malformed blob is discarded entirely; no partial state survives
func TestRestoreFailClosed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickcal.json")
	blob := `{"habits":{"a":{"id":"a","name":"Read","dates":["2024-1-1","not-a-day"],"createdAt":"2024-01-01T00:00:00Z"}},"currentHabitId":"a"}`
	if err := os.WriteFile(path, []byte(blob), 0600); err != nil {
		t.Fatal(err)
	}

	s := New(storage.NewJSONStore(path), WithClock(fixedClock("2024-01-10")))
	if found := s.Restore(); found {
		t.Error("Restore() of malformed blob = true, want false")
	}

	habits := s.List()
	if len(habits) != 1 || habits[0].Name != constants.DefaultHabitName {
		t.Errorf("store after failed restore = %v, want only the seeded default", habits)
	}
}

// Duplicate day strings that normalize to the same day collapse into one
func TestRestoreDeduplicatesDays(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickcal.json")
	blob := `{"habits":{"a":{"id":"a","name":"Read","dates":["2024-1-9","2024-01-09"],"createdAt":"2024-01-01T00:00:00Z"}},"currentHabitId":"a"}`
	if err := os.WriteFile(path, []byte(blob), 0600); err != nil {
		t.Fatal(err)
	}

	s := New(storage.NewJSONStore(path), WithClock(fixedClock("2024-01-10")))
	if found := s.Restore(); !found {
		t.Fatal("Restore() = false, want true")
	}

	stats, err := s.Stats("a")
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalCount != 1 {
		t.Errorf("TotalCount = %d, want 1 after deduplication", stats.TotalCount)
	}
}

// A dangling active id is repaired, not treated as corruption
func TestRestoreRepairsDanglingActive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickcal.json")
	blob := `{"habits":{"a":{"id":"a","name":"Read","dates":[],"createdAt":"2024-01-01T00:00:00Z"}},"currentHabitId":"gone"}`
	if err := os.WriteFile(path, []byte(blob), 0600); err != nil {
		t.Fatal(err)
	}

	s := New(storage.NewJSONStore(path), WithClock(fixedClock("2024-01-10")))
	if found := s.Restore(); !found {
		t.Fatal("Restore() = false, want true")
	}
	active, ok := s.Active()
	if !ok || active.ID != "a" {
		t.Errorf("active = %v, want repaired to habit a", active)
	}
}

// The in-memory mutation stands even when the durable write fails
func TestPersistenceFailureIsNonFatal(t *testing.T) {
	p := &failingProvider{}
	s := New(p, WithClock(fixedClock("2024-01-10")))

	id, err := s.Create("Read")
	if err != nil {
		t.Fatalf("Create() with failing provider returned error: %v", err)
	}
	if _, err := s.Get(id); err != nil {
		t.Errorf("habit missing from memory after failed persist: %v", err)
	}
	if p.saves == 0 {
		t.Error("Save was never attempted")
	}

	ticked, err := s.Toggle(id, mustDay(t, "2024-1-10"))
	if err != nil || !ticked {
		t.Errorf("Toggle() with failing provider = (%v, %v), want (true, nil)", ticked, err)
	}
}

func TestStatsAsOf(t *testing.T) {
	s := newTestStore(t)
	id, _ := s.Create("Read")
	for _, ds := range []string{"2024-1-1", "2024-1-2", "2024-1-3", "2024-1-10"} {
		s.Toggle(id, mustDay(t, ds))
	}

	stats, err := s.StatsAsOf(id, mustDay(t, "2024-1-10"))
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalCount != 4 || stats.LongestStreak != 3 || stats.CurrentStreak != 1 {
		t.Errorf("StatsAsOf() = %+v, want {4 1 3}", stats)
	}

	if _, err := s.Stats("nope"); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Stats unknown id = %v, want ErrNotFound", err)
	}
}

func TestHeatmap(t *testing.T) {
	s := newTestStore(t)
	id, _ := s.Create("Read")
	s.Toggle(id, mustDay(t, "2024-1-2"))
	s.Toggle(id, mustDay(t, "2024-1-4"))

	cells, err := s.Heatmap(id, mustDay(t, "2024-1-1"), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(cells) != 5 {
		t.Fatalf("Heatmap() returned %d cells, want 5", len(cells))
	}

	wantTicked := []bool{false, true, false, true, false}
	for i, cell := range cells {
		if cell.Ticked != wantTicked[i] {
			t.Errorf("cell %d (%s) ticked = %v, want %v", i, cell.Day, cell.Ticked, wantTicked[i])
		}
		if want := mustDay(t, "2024-1-1").AddDays(i); cell.Day != want {
			t.Errorf("cell %d day = %v, want %v", i, cell.Day, want)
		}
	}

	if _, err := s.Heatmap("nope", mustDay(t, "2024-1-1"), 5); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Heatmap unknown id = %v, want ErrNotFound", err)
	}
}
