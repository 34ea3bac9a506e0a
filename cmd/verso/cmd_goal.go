package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"verso/internal/library"
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Show or set your yearly reading goal",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requireAuth(); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		g, err := a.client.ReadingGoal(ctx)
		if err != nil {
			return err
		}
		if !g.IsSet() {
			fmt.Println("No goal set. Try: verso goal set 24")
			return nil
		}
		pct := library.ProgressPercent(g.Progress, *g.Goal)
		fmt.Printf("%d: %d of %d books (%d%%)\n", *g.Year, g.Progress, *g.Goal, pct)
		return nil
	},
}

var goalSetCmd = &cobra.Command{
	Use:   "set [books]",
	Short: "Set the goal for this year",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requireAuth(); err != nil {
			return err
		}

		goal, err := strconv.Atoi(args[0])
		if err != nil || goal < 1 {
			return fmt.Errorf("goal must be a positive number of books")
		}
		year, _ := cmd.Flags().GetInt("year")
		if year == 0 {
			year = time.Now().Year()
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := a.library.SetGoal(ctx, goal, year); err != nil {
			return err
		}
		fmt.Printf("Goal set: %d books in %d\n", goal, year)
		return nil
	},
}

func init() {
	goalSetCmd.Flags().Int("year", 0, "Target year (default: current)")
	goalCmd.AddCommand(goalSetCmd)
}
