package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"verso/cmd/verso/ui"
	"verso/internal/api"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage your shelves",
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your books",
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

		status, _ := cmd.Flags().GetString("status")
		entries, err := a.client.MyBooks(ctx, status)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No books yet. Try: verso library add <book-id>")
			return nil
		}

		styles := ui.NewStyles(ui.ThemeByName(a.cfg.Theme))
		t := ui.NewSimpleTable("", []string{"ID", "Title", "Author", "Shelf", "Rating"})
		for _, e := range entries {
			rating := ""
			if e.Rating != nil {
				rating = fmt.Sprintf("%.1f", *e.Rating)
			}
			t.AddRow(strconv.Itoa(e.Book.ID), e.Book.Title, e.Book.Author, e.Status, rating)
		}
		fmt.Print(t.View(styles))
		return nil
	},
}

var libraryAddCmd = &cobra.Command{
	Use:   "add [book-id]",
	Short: "Add a book to a shelf",
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

		bookID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("book id must be a number")
		}
		status, _ := cmd.Flags().GetString("status")
		owned, _ := cmd.Flags().GetBool("owned")

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		err = a.library.AddBook(ctx, api.AddBookRequest{BookID: bookID, Status: status, IsOwned: owned})
		if err != nil {
			return err
		}
		logger.Info("book shelved", zap.Int("book_id", bookID), zap.String("status", status))
		fmt.Println("Added")
		return nil
	},
}

var libraryRemoveCmd = &cobra.Command{
	Use:   "remove [book-id]",
	Short: "Remove a book from your library",
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

		bookID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("book id must be a number")
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := a.library.RemoveEntry(ctx, bookID); err != nil {
			return err
		}
		fmt.Println("Removed")
		return nil
	},
}

var libraryProgressCmd = &cobra.Command{
	Use:   "progress [book-id] [page]",
	Short: "Record your current page",
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

		bookID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("book id must be a number")
		}
		page, err := strconv.Atoi(args[1])
		if err != nil || page < 0 {
			return fmt.Errorf("page must be a non-negative number")
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		// Page count drives the finished-book shortcut, so look it up.
		book, err := a.client.Book(ctx, bookID)
		if err != nil {
			return err
		}
		total := 0
		if book.PageCount != nil {
			total = *book.PageCount
		}

		out, err := a.library.UpdateProgress(ctx, bookID, page, total)
		if err != nil {
			return err
		}
		fmt.Printf("%s: page %d (%d%%)\n", book.Title, out.CurrentPage, out.Percentage)
		if total > 0 && page >= total {
			fmt.Println("Finished! Moved to your read shelf.")
		}
		return nil
	},
}

var libraryRateCmd = &cobra.Command{
	Use:   "rate [book-id] [rating]",
	Short: "Rate a book (0.5 to 5)",
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

		bookID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("book id must be a number")
		}
		rating, err := strconv.ParseFloat(args[1], 64)
		if err != nil || rating < 0.5 || rating > 5 {
			return fmt.Errorf("rating must be between 0.5 and 5")
		}
		review, _ := cmd.Flags().GetString("review")

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		upd := api.UpdateBookRequest{Rating: &rating}
		if review != "" {
			upd.Review = &review
		}
		if err := a.library.UpdateEntry(ctx, bookID, upd); err != nil {
			return err
		}
		fmt.Println("Saved")
		return nil
	},
}

func init() {
	libraryListCmd.Flags().String("status", "", "Filter by shelf (want_to_read, currently_reading, read, owned)")
	libraryAddCmd.Flags().String("status", api.StatusWantToRead, "Shelf to add to")
	libraryAddCmd.Flags().Bool("owned", false, "Mark the copy as owned")
	libraryRateCmd.Flags().String("review", "", "Attach a review")

	libraryCmd.AddCommand(libraryListCmd)
	libraryCmd.AddCommand(libraryAddCmd)
	libraryCmd.AddCommand(libraryRemoveCmd)
	libraryCmd.AddCommand(libraryProgressCmd)
	libraryCmd.AddCommand(libraryRateCmd)
}
