// Package storage persists the full application state as a single snapshot.
// Every mutation in the habit store rewrites the whole snapshot; the data
// volume is tiny and correctness beats write efficiency here.
package storage

import (
	"time"

	apperrors "github.com/julianstephens/tickcal/internal/errors"
)

// HabitRecord is the persisted form of one habit. Dates are day strings in
// the canonical Y-M-D form; CreatedAt is RFC3339.
type HabitRecord struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Dates     []string `json:"dates"`
	CreatedAt string   `json:"createdAt"`
}

// Snapshot is the complete persisted state: all habits keyed by id plus the
// id of the currently active habit (nil when no habit is active).
type Snapshot struct {
	Habits         map[string]HabitRecord `json:"habits"`
	CurrentHabitID *string                `json:"currentHabitId"`
}

// Provider is a durable storage backend for snapshots.
//
// Concurrency note: providers are not safe for concurrent use, and running
// multiple tickcal processes against the same storage path is not supported.
type Provider interface {
	// Init prepares the backing store, creating directories as needed
	Init() error

	// Load reads the persisted snapshot. A missing store returns ErrNotFound;
	// a malformed store returns ErrDataIntegrity and the caller must discard
	// everything rather than trust any part of it.
	Load() (Snapshot, error)

	// Save writes the full snapshot, replacing whatever was stored before
	Save(Snapshot) error

	Close() error

	// GetConfigPath returns the path of the backing file
	GetConfigPath() string
}

// Validate checks a loaded snapshot for structural integrity: record ids
// must match their keys and be non-empty, names must be non-empty, and
// createdAt must parse. Date strings are checked by the caller during
// decoding into day values. A currentHabitId referencing a missing habit is
// not an integrity failure; the store repairs it by picking another habit.
func Validate(snap Snapshot) error {
	for id, rec := range snap.Habits {
		if rec.ID == "" || rec.ID != id {
			return apperrors.DataIntegrityf("habit record id %q does not match key %q", rec.ID, id)
		}
		if rec.Name == "" {
			return apperrors.DataIntegrityf("habit %s has an empty name", id)
		}
		if _, err := time.Parse(time.RFC3339, rec.CreatedAt); err != nil {
			return apperrors.DataIntegrityf("habit %s has invalid createdAt %q", id, rec.CreatedAt)
		}
	}
	return nil
}
