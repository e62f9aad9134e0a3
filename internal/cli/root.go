package cli

import (
	"path/filepath"

	"github.com/julianstephens/tickcal/internal/backup"
	"github.com/julianstephens/tickcal/internal/constants"
	apperrors "github.com/julianstephens/tickcal/internal/errors"
	"github.com/julianstephens/tickcal/internal/habitstore"
	"github.com/julianstephens/tickcal/internal/logger"
	"github.com/julianstephens/tickcal/internal/models"
	"github.com/julianstephens/tickcal/internal/storage"
)

type Context struct {
	Store    *habitstore.Store
	Provider storage.Provider
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	mgr := backup.NewManager(c.Provider.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// AssetCacheDir returns the asset cache directory next to the store file.
func (c *Context) AssetCacheDir() string {
	return filepath.Join(filepath.Dir(c.Provider.GetConfigPath()), constants.AssetCacheDirName)
}

// ResolveHabit returns the habit with the given name, or the active habit
// when name is empty.
func (c *Context) ResolveHabit(name string) (*models.Habit, error) {
	if name != "" {
		return c.Store.GetByName(name)
	}
	habit, ok := c.Store.Active()
	if !ok {
		return nil, apperrors.NotFoundf("no active habit")
	}
	return habit, nil
}
