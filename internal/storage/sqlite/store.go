// Package sqlite provides the SQLite storage backend, selected when the
// config path ends in ".db".
package sqlite

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	apperrors "github.com/julianstephens/tickcal/internal/errors"
	"github.com/julianstephens/tickcal/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS habits (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS habit_days (
	habit_id TEXT NOT NULL REFERENCES habits(id) ON DELETE CASCADE,
	day      TEXT NOT NULL,
	PRIMARY KEY (habit_id, day)
);
CREATE TABLE IF NOT EXISTS app_state (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

const currentHabitKey = "current_habit_id"

type Store struct {
	path string
	db   *sql.DB
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return apperrors.Persistencef("failed to create config directory: %v", err)
	}
	return s.open()
}

func (s *Store) open() error {
	if s.db != nil {
		return nil
	}
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return apperrors.Persistencef("failed to open database: %v", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return apperrors.Persistencef("failed to create schema: %v", err)
	}
	s.db = db
	return nil
}

func (s *Store) Load() (storage.Snapshot, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return storage.Snapshot{}, apperrors.NotFoundf("no storage at %s", s.path)
	}
	if err := s.open(); err != nil {
		return storage.Snapshot{}, err
	}

	snap := storage.Snapshot{Habits: make(map[string]storage.HabitRecord)}

	rows, err := s.db.Query(`SELECT id, name, created_at FROM habits`)
	if err != nil {
		return storage.Snapshot{}, apperrors.DataIntegrityf("failed to read habits: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec storage.HabitRecord
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.CreatedAt); err != nil {
			return storage.Snapshot{}, apperrors.DataIntegrityf("failed to scan habit: %v", err)
		}
		snap.Habits[rec.ID] = rec
	}
	if err := rows.Err(); err != nil {
		return storage.Snapshot{}, apperrors.DataIntegrityf("failed to read habits: %v", err)
	}

	dayRows, err := s.db.Query(`SELECT habit_id, day FROM habit_days ORDER BY habit_id, day`)
	if err != nil {
		return storage.Snapshot{}, apperrors.DataIntegrityf("failed to read habit days: %v", err)
	}
	defer dayRows.Close()

	for dayRows.Next() {
		var habitID, day string
		if err := dayRows.Scan(&habitID, &day); err != nil {
			return storage.Snapshot{}, apperrors.DataIntegrityf("failed to scan habit day: %v", err)
		}
		rec, ok := snap.Habits[habitID]
		if !ok {
			return storage.Snapshot{}, apperrors.DataIntegrityf("day row references unknown habit %s", habitID)
		}
		rec.Dates = append(rec.Dates, day)
		snap.Habits[habitID] = rec
	}
	if err := dayRows.Err(); err != nil {
		return storage.Snapshot{}, apperrors.DataIntegrityf("failed to read habit days: %v", err)
	}

	var current string
	err = s.db.QueryRow(`SELECT value FROM app_state WHERE key = ?`, currentHabitKey).Scan(&current)
	switch {
	case err == sql.ErrNoRows:
		// no active habit recorded
	case err != nil:
		return storage.Snapshot{}, apperrors.DataIntegrityf("failed to read app state: %v", err)
	default:
		snap.CurrentHabitID = &current
	}

	if err := storage.Validate(snap); err != nil {
		return storage.Snapshot{}, err
	}
	return snap, nil
}

// Save replaces the stored state with the given snapshot inside one
// transaction, so a failure leaves the previous state intact.
func (s *Store) Save(snap storage.Snapshot) error {
	if err := s.Init(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return apperrors.Persistencef("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM habit_days`,
		`DELETE FROM habits`,
		`DELETE FROM app_state`,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return apperrors.Persistencef("failed to clear previous state: %v", err)
		}
	}

	for _, rec := range snap.Habits {
		if _, err := tx.Exec(
			`INSERT INTO habits (id, name, created_at) VALUES (?, ?, ?)`,
			rec.ID, rec.Name, rec.CreatedAt,
		); err != nil {
			return apperrors.Persistencef("failed to write habit %s: %v", rec.ID, err)
		}
		for _, day := range rec.Dates {
			if _, err := tx.Exec(
				`INSERT INTO habit_days (habit_id, day) VALUES (?, ?)`,
				rec.ID, day,
			); err != nil {
				return apperrors.Persistencef("failed to write day %s for habit %s: %v", day, rec.ID, err)
			}
		}
	}

	if snap.CurrentHabitID != nil {
		if _, err := tx.Exec(
			`INSERT INTO app_state (key, value) VALUES (?, ?)`,
			currentHabitKey, *snap.CurrentHabitID,
		); err != nil {
			return apperrors.Persistencef("failed to write app state: %v", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Persistencef("failed to commit: %v", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *Store) GetConfigPath() string {
	return s.path
}
