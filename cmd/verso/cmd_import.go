package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"verso/internal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import [goodreads-export.csv]",
	Short: "Import a Goodreads library export",
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

		csv, err := importer.ReadFile(args[0])
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		dryRun, _ := cmd.Flags().GetBool("dry-run")
		if dryRun {
			preview, err := a.importer.Preview(ctx, csv)
			if err != nil {
				return err
			}
			fmt.Printf("%d books found (%d rated, %d reviewed)\n", preview.Total, preview.WithRatings, preview.WithReviews)

			statuses := make([]string, 0, len(preview.ByStatus))
			for s := range preview.ByStatus {
				statuses = append(statuses, s)
			}
			sort.Strings(statuses)
			for _, s := range statuses {
				fmt.Printf("  %-20s %d\n", s, preview.ByStatus[s])
			}
			for _, e := range preview.Errors {
				fmt.Printf("  warning: %s\n", e)
			}
			return nil
		}

		result, err := a.importer.Import(ctx, csv)
		if err != nil {
			return err
		}
		logger.Info("goodreads import finished",
			zap.Int("parsed", result.TotalParsed),
			zap.Int("imported", result.Imported),
			zap.Int("skipped", result.Skipped),
			zap.Int("errors", len(result.Errors)),
		)

		fmt.Printf("Imported %d of %d books", result.Imported, result.TotalParsed)
		if result.Skipped > 0 {
			fmt.Printf(" (%d already in your library)", result.Skipped)
		}
		fmt.Println()
		for _, e := range result.Errors {
			fmt.Printf("  %s\n", e)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().Bool("dry-run", false, "Preview without importing")
}
