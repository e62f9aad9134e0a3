package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/tickcal/internal/constants"
)

const validBlob = `{"habits":{"a":{"id":"a","name":"Read","dates":["2024-1-1"],"createdAt":"2024-01-01T00:00:00Z"}},"currentHabitId":"a"}`

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	storePath := filepath.Join(t.TempDir(), "tickcal.json")
	if err := os.WriteFile(storePath, []byte(validBlob), 0600); err != nil {
		t.Fatal(err)
	}
	return NewManager(storePath)
}

func TestCreateBackup(t *testing.T) {
	m := newTestManager(t)

	path, err := m.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup() returned error: %v", err)
	}

	name := filepath.Base(path)
	if !strings.HasPrefix(name, constants.BackupFilePrefix) || !strings.HasSuffix(name, ".json") {
		t.Errorf("backup name = %q, want %s*.json", name, constants.BackupFilePrefix)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("backup is unreadable: %v", err)
	}
	if string(data) != validBlob {
		t.Error("backup content does not match the store file")
	}
}

func TestCreateBackupMissingStore(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "missing.json"))
	if _, err := m.CreateBackup(); err == nil {
		t.Error("CreateBackup() of missing store succeeded, want error")
	}
}

func TestCreateBackupCollisions(t *testing.T) {
	m := newTestManager(t)

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		path, err := m.CreateBackup()
		if err != nil {
			t.Fatalf("CreateBackup() %d returned error: %v", i, err)
		}
		if seen[path] {
			t.Fatalf("CreateBackup() reused path %s", path)
		}
		seen[path] = true
	}
}

func TestListBackups(t *testing.T) {
	m := newTestManager(t)

	backups, err := m.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups() returned error: %v", err)
	}
	if len(backups) != 0 {
		t.Fatalf("ListBackups() before any backup = %d entries, want 0", len(backups))
	}

	if _, err := m.CreateBackup(); err != nil {
		t.Fatal(err)
	}

	backups, err = m.ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 1 {
		t.Fatalf("ListBackups() = %d entries, want 1", len(backups))
	}
	if backups[0].Size == 0 {
		t.Error("backup size = 0, want nonzero")
	}
}

func TestListBackupsNewestFirst(t *testing.T) {
	m := newTestManager(t)
	if err := os.MkdirAll(m.GetBackupDir(), 0700); err != nil {
		t.Fatal(err)
	}

	names := []string{
		constants.BackupFilePrefix + "20240103-0900.json",
		constants.BackupFilePrefix + "20240101-0900.json",
		constants.BackupFilePrefix + "20240102-0900.json",
		"unrelated.json",
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(m.GetBackupDir(), name), []byte(validBlob), 0600); err != nil {
			t.Fatal(err)
		}
	}

	backups, err := m.ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 3 {
		t.Fatalf("ListBackups() = %d entries, want 3", len(backups))
	}
	want := []string{"20240103-0900", "20240102-0900", "20240101-0900"}
	for i, b := range backups {
		if !strings.Contains(filepath.Base(b.Path), want[i]) {
			t.Errorf("backup %d = %s, want timestamp %s", i, filepath.Base(b.Path), want[i])
		}
	}
}

func TestRotation(t *testing.T) {
	m := newTestManager(t)
	if err := os.MkdirAll(m.GetBackupDir(), 0700); err != nil {
		t.Fatal(err)
	}

	// Seed more than MaxBackups old backups, then trigger rotation
	for i := 0; i < constants.MaxBackups+3; i++ {
		name := fmt.Sprintf("%s2024%02d%02d-0900.json", constants.BackupFilePrefix, i/28+1, i%28+1)
		if err := os.WriteFile(filepath.Join(m.GetBackupDir(), name), []byte(validBlob), 0600); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := m.CreateBackup(); err != nil {
		t.Fatal(err)
	}

	backups, err := m.ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) > constants.MaxBackups {
		t.Errorf("after rotation %d backups remain, want at most %d", len(backups), constants.MaxBackups)
	}
}

func TestRestoreBackup(t *testing.T) {
	m := newTestManager(t)

	backupPath, err := m.CreateBackup()
	if err != nil {
		t.Fatal(err)
	}

	// Change the live store, then restore the earlier state
	changed := `{"habits":{},"currentHabitId":null}`
	if err := os.WriteFile(m.storePath, []byte(changed), 0600); err != nil {
		t.Fatal(err)
	}

	if err := m.RestoreBackup(backupPath); err != nil {
		t.Fatalf("RestoreBackup() returned error: %v", err)
	}

	data, err := os.ReadFile(m.storePath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != validBlob {
		t.Error("store content after restore does not match the backup")
	}

	// The pre-restore state must have been saved as its own backup
	backups, err := m.ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) < 2 {
		t.Errorf("after restore %d backups exist, want the original plus a safety copy", len(backups))
	}
}

func TestRestoreRejectsInvalidBackup(t *testing.T) {
	m := newTestManager(t)

	badPath := filepath.Join(t.TempDir(), constants.BackupFilePrefix+"20240101-0900.json")
	if err := os.WriteFile(badPath, []byte("{garbage"), 0600); err != nil {
		t.Fatal(err)
	}

	if err := m.RestoreBackup(badPath); err == nil {
		t.Fatal("RestoreBackup() of invalid backup succeeded, want error")
	}

	data, err := os.ReadFile(m.storePath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != validBlob {
		t.Error("store was modified by a rejected restore")
	}
}

func TestRestoreMissingBackup(t *testing.T) {
	m := newTestManager(t)
	if err := m.RestoreBackup(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("RestoreBackup() of missing file succeeded, want error")
	}
}
