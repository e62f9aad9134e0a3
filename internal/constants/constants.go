package constants

// SessionState represents the current state of the TUI application
type SessionState int

const (
	AppName           = "tickcal"
	Version           = "v0.2.0"
	DefaultConfigPath = "~/.config/tickcal/tickcal.json"

	// DefaultHabitName is the habit seeded into an empty store so the UI
	// always has something to display
	DefaultHabitName = "My First Habit"

	// HeatmapDays is the size of the year heatmap window (last 365 days
	// including today)
	HeatmapDays = 365

	// DefaultLogDays is the default window for the ASCII habit log
	DefaultLogDays = 14

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "tickcal-"

	// Asset cache constants
	AssetCacheVersion = "tickcal-v1"
	AssetCacheDirName = "assetcache"
	AssetBaseURL      = "https://tickcal.app"

	// Session states
	StateCalendar SessionState = iota
	StateHabits
	StateStats
	StateAddHabit
	StateRenameHabit
	StateConfirmDelete
)
