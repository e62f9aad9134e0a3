// Package backup manages timestamped copies of the habit store file, for
// both the JSON and the SQLite backends.
package backup

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/tickcal/internal/constants"
)

// Info describes one backup file.
type Info struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

// Manager copies the store file into a sibling backups directory and keeps
// the most recent constants.MaxBackups copies.
type Manager struct {
	storePath string
	backupDir string
}

// NewManager creates a manager for the store file at storePath. Backups keep
// the store file's extension so a restored file works with the same backend.
func NewManager(storePath string) *Manager {
	configDir := filepath.Dir(storePath)
	return &Manager{
		storePath: storePath,
		backupDir: filepath.Join(configDir, constants.BackupDirName),
	}
}

// GetBackupDir returns the backup directory path.
func (m *Manager) GetBackupDir() string {
	return m.backupDir
}

func (m *Manager) suffix() string {
	ext := filepath.Ext(m.storePath)
	if ext == "" {
		ext = ".json"
	}
	return ext
}

// CreateBackup copies the current store file into the backup directory and
// rotates old backups. It returns the path of the new backup.
func (m *Manager) CreateBackup() (string, error) {
	return m.createBackup(false)
}

// createBackup with skipRotation=true is used during restore to avoid
// rotating away the safety copy we just made
func (m *Manager) createBackup(skipRotation bool) (string, error) {
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	if _, err := os.Stat(m.storePath); os.IsNotExist(err) {
		return "", fmt.Errorf("store file does not exist: %s", m.storePath)
	}

	backupPath, err := m.uniqueBackupPath()
	if err != nil {
		return "", err
	}

	if err := m.copyStore(backupPath); err != nil {
		return "", fmt.Errorf("failed to back up store: %w", err)
	}

	if !skipRotation {
		if err := m.rotateBackups(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to rotate old backups: %v\n", err)
		}
	}

	return backupPath, nil
}

// uniqueBackupPath picks a filename with minute precision, falling back to
// second precision and then a counter when backups land close together.
func (m *Manager) uniqueBackupPath() (string, error) {
	timestamp := time.Now().Format("20060102-1504")
	path := filepath.Join(m.backupDir, constants.BackupFilePrefix+timestamp+m.suffix())
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path, nil
	}

	timestamp = time.Now().Format("20060102-150405")
	path = filepath.Join(m.backupDir, constants.BackupFilePrefix+timestamp+m.suffix())
	counter := 1
	for {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
		path = filepath.Join(m.backupDir,
			fmt.Sprintf("%s%s-%d%s", constants.BackupFilePrefix, timestamp, counter, m.suffix()))
		counter++
		if counter > 100 {
			return "", fmt.Errorf("failed to generate unique backup filename")
		}
	}
}

// copyStore writes a copy of the store to destPath. SQLite stores go through
// VACUUM INTO so the copy is consistent even with the database open; JSON
// stores are written atomically by the provider and can be copied directly.
func (m *Manager) copyStore(destPath string) error {
	if m.suffix() != ".db" {
		return copyFile(m.storePath, destPath)
	}

	srcDB, err := sql.Open("sqlite", m.storePath+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer srcDB.Close()

	var count int
	if err := srcDB.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}

	if _, err := srcDB.Exec("VACUUM INTO ?", destPath); err != nil {
		// VACUUM INTO needs SQLite 3.27+; fall back to a plain copy
		srcDB.Close()
		return copyFile(m.storePath, destPath)
	}
	return nil
}

// ListBackups returns all backups for this store, newest first.
func (m *Manager) ListBackups() ([]Info, error) {
	if _, err := os.Stat(m.backupDir); os.IsNotExist(err) {
		return []Info{}, nil
	}

	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []Info
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasPrefix(name, constants.BackupFilePrefix) || !strings.HasSuffix(name, m.suffix()) {
			continue
		}

		timestamp, ok := parseTimestamp(strings.TrimSuffix(
			strings.TrimPrefix(name, constants.BackupFilePrefix), m.suffix()))
		if !ok {
			continue
		}

		path := filepath.Join(m.backupDir, name)
		info, err := os.Stat(path)
		if err != nil {
			continue
		}

		backups = append(backups, Info{Path: path, Timestamp: timestamp, Size: info.Size()})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

// parseTimestamp recovers the backup time from a filename stem, tolerating a
// trailing collision counter.
func parseTimestamp(stem string) (time.Time, bool) {
	// Strip a counter suffix (all digits, not a 4 or 6 char time component)
	parts := strings.Split(stem, "-")
	if len(parts) > 2 {
		last := parts[len(parts)-1]
		if len(last) != 4 && len(last) != 6 && isDigits(last) {
			stem = strings.Join(parts[:len(parts)-1], "-")
		}
	}

	if t, err := time.Parse("20060102-1504", stem); err == nil {
		return t, true
	}
	if t, err := time.Parse("20060102-150405", stem); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

func (m *Manager) rotateBackups() error {
	backups, err := m.ListBackups()
	if err != nil {
		return err
	}
	if len(backups) <= constants.MaxBackups {
		return nil
	}

	for i := constants.MaxBackups; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// RestoreBackup replaces the store file with the given backup. The current
// store is backed up first, and the swap uses a temp file and atomic rename.
func (m *Manager) RestoreBackup(backupPath string) error {
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return fmt.Errorf("backup file does not exist: %s", backupPath)
	}

	if err := m.verifyBackup(backupPath); err != nil {
		return fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	if _, err := os.Stat(m.storePath); err == nil {
		currentBackup, err := m.createBackup(true)
		if err != nil {
			return fmt.Errorf("failed to back up current store before restore: %w", err)
		}
		fmt.Printf("Created backup of current store: %s\n", filepath.Base(currentBackup))
	}

	tempPath := m.storePath + ".restore.tmp"
	if err := copyFile(backupPath, tempPath); err != nil {
		return fmt.Errorf("failed to copy backup file: %w", err)
	}

	if err := os.Rename(tempPath, m.storePath); err != nil {
		if removeErr := os.Remove(tempPath); removeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to remove temporary file %s: %v\n", tempPath, removeErr)
		}
		return fmt.Errorf("failed to restore store: %w", err)
	}
	return nil
}

// verifyBackup checks that a backup is readable in its own format before it
// is allowed to replace the live store.
func (m *Manager) verifyBackup(path string) error {
	if m.suffix() == ".db" {
		db, err := sql.Open("sqlite", path+"?mode=ro")
		if err != nil {
			return err
		}
		defer db.Close()

		var count int
		return db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var blob struct {
		Habits map[string]json.RawMessage `json:"habits"`
	}
	if err := json.Unmarshal(data, &blob); err != nil {
		return err
	}
	if blob.Habits == nil {
		return fmt.Errorf("backup has no habits table")
	}
	return nil
}

func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := destFile.ReadFrom(sourceFile); err != nil {
		return err
	}
	return destFile.Sync()
}
