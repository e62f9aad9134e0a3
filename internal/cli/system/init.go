package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/tickcal/internal/cli"
)

type InitCmd struct {
	Force bool `help:"Force reset by deleting the existing store before initialization."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	storePath := ctx.Provider.GetConfigPath()

	if c.Force {
		if _, err := os.Stat(storePath); err == nil {
			// Close first to prevent file locking issues with the SQLite backend
			if err := ctx.Provider.Close(); err != nil {
				return fmt.Errorf("failed to close existing store: %w", err)
			}
			if err := os.Remove(storePath); err != nil {
				return fmt.Errorf("failed to delete existing store: %w", err)
			}
			fmt.Printf("Deleted existing store at: %s\n", storePath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing store: %w", err)
		}
	}

	if err := ctx.Provider.Init(); err != nil {
		return err
	}

	// Restore seeds a starter habit when the store is empty
	found := ctx.Store.Restore()

	fmt.Printf("Initialized tickcal storage at: %s\n", storePath)
	if !found {
		if habit, ok := ctx.Store.Active(); ok {
			fmt.Printf("Created starter habit: %s\n", habit.Name)
		}
	}
	return nil
}
