package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/tickcal/internal/cli"
	"github.com/julianstephens/tickcal/internal/cli/backups"
	"github.com/julianstephens/tickcal/internal/cli/system"
	"github.com/julianstephens/tickcal/internal/constants"
	"github.com/julianstephens/tickcal/internal/habitstore"
	"github.com/julianstephens/tickcal/internal/logger"
	"github.com/julianstephens/tickcal/internal/storage"
	"github.com/julianstephens/tickcal/internal/storage/sqlite"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Store file path. A .db extension selects the SQLite backend, anything else is stored as JSON." default:"~/.config/tickcal/tickcal.json"`
	Debug   bool   `help:"Enable debug logging."`

	Init   system.InitCmd   `cmd:"" help:"Initialize tickcal storage."`
	Doctor system.DoctorCmd `cmd:"" help:"Run health checks and diagnostics."`
	Tui    system.TuiCmd    `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Tick   cli.TickCmd      `cmd:"" help:"Toggle a day on a habit."`
	Stats  cli.StatsCmd     `cmd:"" help:"Show totals and streaks."`
	Log    cli.LogCmd       `cmd:"" help:"Show habit history as an ASCII grid."`
	Habit  cli.HabitCmd     `cmd:"" help:"Manage habits."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage store backups."`
	Cache cli.CacheCmd `cmd:"" help:"Manage the offline asset cache."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracker with a tick-a-day calendar"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	configPath := expandHome(CLI.Config)

	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: filepath.Dir(configPath),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}

	// The backend follows the store file's extension
	var provider storage.Provider
	if strings.HasSuffix(configPath, ".db") {
		provider = sqlite.NewStore(configPath)
	} else {
		provider = storage.NewJSONStore(configPath)
	}

	store := habitstore.New(provider)
	appCtx := &cli.Context{
		Store:    store,
		Provider: provider,
	}

	// Restore persisted habits before running the command. The init command
	// handles its own loading, and doctor inspects the raw store itself.
	if selected := ctx.Selected(); selected != nil &&
		selected.Name != "init" && selected.Name != "doctor" {
		store.Restore()
	}

	if err := ctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
