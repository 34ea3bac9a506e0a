package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"verso/cmd/verso/ui"
	"verso/internal/api"
)

var circlesCmd = &cobra.Command{
	Use:   "circles",
	Short: "Reading circles",
}

var circlesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your circles",
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

		circles, err := a.client.MyCircles(ctx)
		if err != nil {
			return err
		}
		if len(circles) == 0 {
			fmt.Println("No circles yet. Try: verso circles create \"Sci-Fi Club\"")
			return nil
		}

		styles := ui.NewStyles(ui.ThemeByName(a.cfg.Theme))
		t := ui.NewSimpleTable("", []string{"ID", "Circle", "Members", "Invite code"})
		for _, c := range circles {
			t.AddRow(strconv.Itoa(c.ID), c.Name, strconv.Itoa(c.MemberCount), c.InviteCode)
		}
		fmt.Print(t.View(styles))
		return nil
	},
}

var circlesCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a circle",
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

		private, _ := cmd.Flags().GetBool("private")
		description, _ := cmd.Flags().GetString("description")

		nc := api.NewCircle{Name: args[0], IsPrivate: private}
		if description != "" {
			nc.Description = &description
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		circle, err := a.client.CreateCircle(ctx, nc)
		if err != nil {
			return err
		}
		fmt.Printf("Created %q. Share the invite code: %s\n", circle.Name, circle.InviteCode)
		return nil
	},
}

var circlesJoinCmd = &cobra.Command{
	Use:   "join [invite-code]",
	Short: "Join a circle by invite code",
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

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		circle, err := a.client.JoinCircleByCode(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Joined %q\n", circle.Name)
		return nil
	},
}

var circlesLeaveCmd = &cobra.Command{
	Use:   "leave [circle-id]",
	Short: "Leave a circle",
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

		circleID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("circle id must be a number")
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := a.client.LeaveCircle(ctx, circleID); err != nil {
			return err
		}
		fmt.Println("Left the circle")
		return nil
	},
}

var circlesLeaderboardCmd = &cobra.Command{
	Use:   "leaderboard [circle-id]",
	Short: "Show a circle's leaderboard",
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

		circleID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("circle id must be a number")
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		rows, err := a.client.CircleLeaderboard(ctx, circleID)
		if err != nil {
			return err
		}

		styles := ui.NewStyles(ui.ThemeByName(a.cfg.Theme))
		t := ui.NewSimpleTable("", []string{"#", "Reader", "Points", "Challenges"})
		for _, row := range rows {
			name := row.Username
			if row.IsCurrentUser {
				name += " (you)"
			}
			t.AddRow(strconv.Itoa(row.Rank), name, strconv.Itoa(row.CirclePoints), strconv.Itoa(row.ChallengesCompleted))
		}
		fmt.Print(t.View(styles))
		return nil
	},
}

var circlesSyncCmd = &cobra.Command{
	Use:   "sync [circle-id] [challenge-id]",
	Short: "Sync challenge progress from your library",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requireAuth(); err != nil {
			return err
		}

		circleID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("circle id must be a number")
		}
		challengeID, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("challenge id must be a number")
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := a.client.SyncChallengeFromLibrary(ctx, circleID, challengeID); err != nil {
			return err
		}
		fmt.Println("Challenge progress synced")
		return nil
	},
}

func init() {
	circlesCreateCmd.Flags().Bool("private", false, "Invite-only circle")
	circlesCreateCmd.Flags().String("description", "", "Circle description")

	circlesCmd.AddCommand(circlesListCmd)
	circlesCmd.AddCommand(circlesCreateCmd)
	circlesCmd.AddCommand(circlesJoinCmd)
	circlesCmd.AddCommand(circlesLeaveCmd)
	circlesCmd.AddCommand(circlesLeaderboardCmd)
	circlesCmd.AddCommand(circlesSyncCmd)
}
