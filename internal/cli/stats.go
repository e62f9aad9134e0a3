package cli

import (
	"fmt"

	"github.com/julianstephens/tickcal/internal/dates"
)

type StatsCmd struct {
	Habit string `help:"Show stats for a specific habit instead of the active one."`
	AsOf  string `help:"Evaluate streaks as of this day in YYYY-M-D format (default: today)."`
}

func (c *StatsCmd) Run(ctx *Context) error {
	habit, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}

	asOf := ctx.Store.Today()
	if c.AsOf != "" {
		asOf, err = dates.Parse(c.AsOf)
		if err != nil {
			return err
		}
	}

	stats, err := ctx.Store.StatsAsOf(habit.ID, asOf)
	if err != nil {
		return err
	}

	fmt.Printf("%s (as of %s)\n\n", habit.Name, asOf)
	fmt.Printf("  Current streak: %d\n", stats.CurrentStreak)
	fmt.Printf("  Longest streak: %d\n", stats.LongestStreak)
	fmt.Printf("  Total days:     %d\n", stats.TotalCount)
	return nil
}
