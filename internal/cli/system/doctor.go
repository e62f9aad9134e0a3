package system

import (
	"fmt"
	"os"
	"strings"
	"time"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/tickcal/internal/backup"
	"github.com/julianstephens/tickcal/internal/cli"
	"github.com/julianstephens/tickcal/internal/constants"
	apperrors "github.com/julianstephens/tickcal/internal/errors"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false

	// Check 1: store readable
	if err := checkStoreReadable(ctx); err != nil {
		fmt.Printf("❌ Store readable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Store readable: OK\n")
	}

	// Check 2: backups present (warning only)
	if err := checkBackupsPresent(ctx); err != nil {
		fmt.Printf("⚠ Backups present: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Printf("✓ Backups present: OK\n")
	}

	// Check 3: clock/timezone sanity
	if err := checkClockTimezone(); err != nil {
		fmt.Printf("❌ Clock/timezone: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Clock/timezone: OK\n")
	}

	// Check 4: concurrent processes (warning only). The store file is
	// last-writer-wins, so two running instances can silently overwrite each
	// other.
	if err := checkConcurrentProcesses(); err != nil {
		fmt.Printf("⚠ Single instance: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Printf("✓ Single instance: OK\n")
	}

	fmt.Println()
	if hasError {
		return fmt.Errorf("diagnostics found problems")
	}
	fmt.Println("All checks passed.")
	return nil
}

func checkStoreReadable(ctx *cli.Context) error {
	_, err := ctx.Provider.Load()
	if apperrors.Is(err, apperrors.ErrNotFound) {
		// Nothing persisted yet; a fresh start is healthy
		return nil
	}
	return err
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr := backup.NewManager(ctx.Provider.GetConfigPath())
	backups, err := mgr.ListBackups()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found; run 'tickcal backup create'")
	}
	newest := backups[0]
	if time.Since(newest.Timestamp) > 7*24*time.Hour {
		return fmt.Errorf("newest backup is older than a week (%s)", newest.Timestamp.Format("2006-01-02"))
	}
	return nil
}

func checkClockTimezone() error {
	now := time.Now()
	if now.Year() < 2020 {
		return fmt.Errorf("system clock reports %s, which looks wrong", now.Format(time.RFC3339))
	}
	if now.Location() == nil {
		return fmt.Errorf("no local timezone available")
	}
	return nil
}

func checkConcurrentProcesses() error {
	procs, err := ps.Processes()
	if err != nil {
		return fmt.Errorf("could not list processes: %v", err)
	}

	self := os.Getpid()
	var others []int
	for _, p := range procs {
		if p.Pid() == self {
			continue
		}
		name := strings.TrimSuffix(p.Executable(), ".exe")
		if name == constants.AppName {
			others = append(others, p.Pid())
		}
	}
	if len(others) > 0 {
		return fmt.Errorf("other %s processes running (pids %v); concurrent writes can lose data", constants.AppName, others)
	}
	return nil
}
