package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Add a new habit."`
	List   HabitListCmd   `cmd:"" help:"List habits."`
	Rename HabitRenameCmd `cmd:"" help:"Rename a habit."`
	Delete HabitDeleteCmd `cmd:"" help:"Delete a habit and its history."`
	Use    HabitUseCmd    `cmd:"" help:"Make a habit the active one."`
}

type HabitAddCmd struct {
	Name string `arg:"" help:"Habit name."`
}

func (c *HabitAddCmd) Run(ctx *Context) error {
	// Duplicate names are confusing for the name-addressed commands
	if _, err := ctx.Store.GetByName(strings.TrimSpace(c.Name)); err == nil {
		return fmt.Errorf("habit with name %q already exists", c.Name)
	}

	if _, err := ctx.Store.Create(c.Name); err != nil {
		return err
	}

	fmt.Printf("Added habit: %s\n", strings.TrimSpace(c.Name))
	return nil
}

type HabitListCmd struct{}

func (c *HabitListCmd) Run(ctx *Context) error {
	habits := ctx.Store.List()
	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	active, _ := ctx.Store.Active()
	for _, habit := range habits {
		marker := " "
		if active != nil && habit.ID == active.ID {
			marker = "*"
		}
		stats, err := ctx.Store.Stats(habit.ID)
		if err != nil {
			return err
		}
		fmt.Printf("%s %-24s %3d days  current streak %d\n", marker, habit.Name, stats.TotalCount, stats.CurrentStreak)
	}
	return nil
}

type HabitRenameCmd struct {
	Name    string `arg:"" help:"Current habit name."`
	NewName string `arg:"" help:"New habit name."`
}

func (c *HabitRenameCmd) Run(ctx *Context) error {
	habit, err := ctx.Store.GetByName(c.Name)
	if err != nil {
		return fmt.Errorf("habit %q not found", c.Name)
	}

	if err := ctx.Store.Rename(habit.ID, c.NewName); err != nil {
		return err
	}

	fmt.Printf("Renamed habit %q to %q\n", c.Name, strings.TrimSpace(c.NewName))
	return nil
}

type HabitDeleteCmd struct {
	Name string `arg:"" help:"Habit name to delete."`
	Yes  bool   `help:"Skip the confirmation prompt."`
}

func (c *HabitDeleteCmd) Run(ctx *Context) error {
	habit, err := ctx.Store.GetByName(c.Name)
	if err != nil {
		return fmt.Errorf("habit %q not found", c.Name)
	}

	if !c.Yes {
		fmt.Printf("Delete habit %q and all its history? [y/N]: ", habit.Name)
		reader := bufio.NewReader(os.Stdin)
		response, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Println("Delete cancelled.")
			return nil
		}
	}

	if err := ctx.Store.Delete(habit.ID); err != nil {
		return err
	}

	fmt.Printf("Deleted habit: %s\n", habit.Name)
	if active, ok := ctx.Store.Active(); ok {
		fmt.Printf("Active habit is now: %s\n", active.Name)
	}
	return nil
}

type HabitUseCmd struct {
	Name string `arg:"" help:"Habit name to make active."`
}

func (c *HabitUseCmd) Run(ctx *Context) error {
	habit, err := ctx.Store.GetByName(c.Name)
	if err != nil {
		return fmt.Errorf("habit %q not found", c.Name)
	}

	if err := ctx.Store.SetActive(habit.ID); err != nil {
		return err
	}

	fmt.Printf("Active habit: %s\n", habit.Name)
	return nil
}
