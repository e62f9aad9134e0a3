package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	apperrors "github.com/julianstephens/tickcal/internal/errors"
)

// JSONStore persists the snapshot as a single JSON document at the config
// path. This is the default backend.
type JSONStore struct {
	path string
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{path: configPath}
}

func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return apperrors.Persistencef("failed to create config directory: %v", err)
	}
	return nil
}

func (s *JSONStore) Load() (Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, apperrors.NotFoundf("no storage at %s", s.path)
		}
		return Snapshot{}, apperrors.Persistencef("failed to read storage: %v", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, apperrors.DataIntegrityf("failed to parse storage: %v", err)
	}
	if snap.Habits == nil {
		return Snapshot{}, apperrors.DataIntegrityf("storage is missing the habits key")
	}
	if err := Validate(snap); err != nil {
		return Snapshot{}, err
	}

	return snap, nil
}

func (s *JSONStore) Save(snap Snapshot) error {
	if err := s.Init(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return apperrors.Persistencef("failed to serialize storage: %v", err)
	}

	// Write via a temp file and rename so a crash mid-write never leaves a
	// truncated blob behind
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return apperrors.Persistencef("failed to write storage: %v", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		if removeErr := os.Remove(tmp); removeErr != nil && !os.IsNotExist(removeErr) {
			fmt.Fprintf(os.Stderr, "Warning: failed to remove temporary file %s: %v\n", tmp, removeErr)
		}
		return apperrors.Persistencef("failed to replace storage: %v", err)
	}

	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}
