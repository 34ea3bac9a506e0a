package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"verso/internal/library"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show your reading summary",
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

		stats, err := a.client.ReadingStats(ctx)
		if err != nil {
			return err
		}
		points, err := a.client.MyPoints(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("%s has %d points\n\n", points.Username, points.Points)
		fmt.Printf("  read               %d\n", stats.BooksRead)
		fmt.Printf("  currently reading  %d\n", stats.CurrentlyReading)
		fmt.Printf("  want to read       %d\n", stats.WantToRead)
		fmt.Printf("  owned              %d\n", stats.BooksOwned)
		fmt.Printf("  pages read         %d\n", stats.TotalPagesRead)

		goal, err := a.client.ReadingGoal(ctx)
		if err == nil && goal.IsSet() {
			pct := library.ProgressPercent(goal.Progress, *goal.Goal)
			fmt.Printf("\n%d goal: %d/%d books (%d%%)\n", *goal.Year, goal.Progress, *goal.Goal, pct)
		}

		streak, err := a.client.ReadingStreak(ctx)
		if err == nil {
			fmt.Printf("streak: %d month(s), longest %d\n", streak.CurrentStreakMonths, streak.LongestStreakMonths)
		}
		return nil
	},
}
