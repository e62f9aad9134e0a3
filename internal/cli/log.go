package cli

import (
	"fmt"
	"strings"

	"github.com/julianstephens/tickcal/internal/constants"
	"github.com/julianstephens/tickcal/internal/models"
)

type LogCmd struct {
	Days  int    `help:"Number of days to show." default:"14"`
	Habit string `help:"Show log for a specific habit only."`
}

func (c *LogCmd) Run(ctx *Context) error {
	habits := ctx.Store.List()
	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	var selected []*models.Habit
	if c.Habit != "" {
		habit, err := ctx.Store.GetByName(c.Habit)
		if err != nil {
			return fmt.Errorf("habit %q not found", c.Habit)
		}
		selected = []*models.Habit{habit}
	} else {
		selected = habits
	}

	days := c.Days
	if days <= 0 {
		days = constants.DefaultLogDays
	}
	start := ctx.Store.Today().AddDays(-(days - 1))

	fmt.Printf("Habit log (last %d days):\n\n", days)

	// Header with dates
	const maxNameLen = 20
	fmt.Print(strings.Repeat(" ", maxNameLen))
	for i := 0; i < days; i++ {
		day := start.AddDays(i)
		fmt.Printf(" %2d/%-2d", int(day.Month), day.Day)
	}
	fmt.Println()

	fmt.Print(strings.Repeat("-", maxNameLen))
	for i := 0; i < days; i++ {
		fmt.Print("------")
	}
	fmt.Println()

	for _, habit := range selected {
		name := habit.Name
		if len(name) > maxNameLen {
			name = name[:maxNameLen-3] + "..."
		} else {
			name = name + strings.Repeat(" ", maxNameLen-len(name))
		}
		fmt.Print(name)

		cells, err := ctx.Store.Heatmap(habit.ID, start, days)
		if err != nil {
			return err
		}
		for _, cell := range cells {
			if cell.Ticked {
				fmt.Print("  x   ")
			} else {
				fmt.Print("  .   ")
			}
		}
		fmt.Println()
	}

	return nil
}
