package cli

import (
	"fmt"

	"github.com/julianstephens/tickcal/internal/dates"
)

type TickCmd struct {
	Day   string `arg:"" optional:"" help:"Day to toggle in YYYY-M-D format (default: today)."`
	Habit string `help:"Toggle on a specific habit instead of the active one."`
}

func (c *TickCmd) Run(ctx *Context) error {
	habit, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}

	day := ctx.Store.Today()
	if c.Day != "" {
		day, err = dates.Parse(c.Day)
		if err != nil {
			return err
		}
	}

	ticked, err := ctx.Store.Toggle(habit.ID, day)
	if err != nil {
		return err
	}

	if ticked {
		fmt.Printf("Ticked %q for %s\n", habit.Name, day)
	} else {
		fmt.Printf("Unticked %q for %s\n", habit.Name, day)
	}

	stats, err := ctx.Store.Stats(habit.ID)
	if err != nil {
		return err
	}
	fmt.Printf("Current streak: %d  Total: %d\n", stats.CurrentStreak, stats.TotalCount)
	return nil
}
