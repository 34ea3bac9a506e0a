package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"verso/cmd/verso/ui"
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search the external book catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requireAuth(); err != nil {
			return err
		}

		limit, _ := cmd.Flags().GetInt("limit")
		yearFrom, _ := cmd.Flags().GetInt("year-from")
		yearTo, _ := cmd.Flags().GetInt("year-to")
		query := strings.Join(args, " ")

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		results, err := a.client.SearchExternal(ctx, query, limit, yearFrom, yearTo)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("No matches.")
			return nil
		}

		styles := ui.NewStyles(ui.ThemeByName(a.cfg.Theme))
		t := ui.NewSimpleTable("", []string{"Title", "Author", "Year", "Pages", "Rating"})
		for _, r := range results {
			year, pages := "", ""
			if r.PublishedYear != nil {
				year = strconv.Itoa(*r.PublishedYear)
			}
			if r.PageCount != nil {
				pages = strconv.Itoa(*r.PageCount)
			}
			t.AddRow(r.Title, r.Author, year, pages, fmt.Sprintf("%.1f", r.AverageRating))
		}
		fmt.Print(t.View(styles))
		return nil
	},
}

func init() {
	searchCmd.Flags().Int("limit", 20, "Maximum number of results")
	searchCmd.Flags().Int("year-from", 0, "Earliest publication year")
	searchCmd.Flags().Int("year-to", 0, "Latest publication year")
}
