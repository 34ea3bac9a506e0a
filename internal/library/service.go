// Package library runs the mutations on the caller's shelf.
//
// Every mutation follows the same contract: call the backend, and on success
// publish the invalidation topics for everything the backend may have
// recomputed. A failed mutation publishes nothing, so the stores keep showing
// the state the server still has.
package library

import (
	"context"
	"math"

	"verso/internal/api"
	"verso/internal/bus"
	"verso/internal/logging"
)

// Service wires library mutations to the invalidation bus.
type Service struct {
	client *api.Client
	bus    *bus.Bus
}

// NewService creates a Service publishing on b.
func NewService(client *api.Client, b *bus.Bus) *Service {
	return &Service{client: client, bus: b}
}

// AddBook puts a book on one of the caller's shelves.
func (s *Service) AddBook(ctx context.Context, req api.AddBookRequest) error {
	if err := s.client.AddToLibrary(ctx, req); err != nil {
		return err
	}
	logging.Library("added book %d as %q", req.BookID, req.Status)
	s.bus.Publish(bus.LibraryMutationTopics()...)
	return nil
}

// UpdateEntry edits the caller's entry for bookID: status, rating, review,
// ownership. Nil fields in upd are left untouched.
func (s *Service) UpdateEntry(ctx context.Context, bookID int, upd api.UpdateBookRequest) error {
	if err := s.client.UpdateLibraryEntry(ctx, bookID, upd); err != nil {
		return err
	}
	logging.Library("updated entry for book %d", bookID)
	s.bus.Publish(bus.LibraryMutationTopics()...)
	return nil
}

// RemoveEntry deletes the caller's entry for bookID.
func (s *Service) RemoveEntry(ctx context.Context, bookID int) error {
	if err := s.client.RemoveFromLibrary(ctx, bookID); err != nil {
		return err
	}
	logging.Library("removed book %d", bookID)
	s.bus.Publish(bus.LibraryMutationTopics()...)
	return nil
}

// UpdateProgress records the current page for bookID. pageCount is the
// book's total when known, 0 otherwise. When the new page reaches the total,
// the entry is moved to the read shelf in the same call; that follow-up is
// attempted once, and a failure only logs, because the page update itself
// already succeeded and the next status edit will land it.
func (s *Service) UpdateProgress(ctx context.Context, bookID, currentPage, pageCount int) (api.ProgressUpdate, error) {
	out, err := s.client.UpdateProgress(ctx, bookID, currentPage)
	if err != nil {
		return api.ProgressUpdate{}, err
	}

	if pageCount > 0 && currentPage >= pageCount {
		status := api.StatusRead
		if err := s.client.UpdateLibraryEntry(ctx, bookID, api.UpdateBookRequest{Status: &status}); err != nil {
			logging.Library("book %d finished but status update failed: %v", bookID, err)
		} else {
			logging.Library("book %d finished, moved to read", bookID)
		}
	}

	s.bus.Publish(bus.LibraryMutationTopics()...)
	return out, nil
}

// SetGoal sets the yearly reading target. Only the goal itself is
// invalidated; the shelf and its aggregates are untouched.
func (s *Service) SetGoal(ctx context.Context, goal, year int) error {
	if err := s.client.SetReadingGoal(ctx, goal, year); err != nil {
		return err
	}
	logging.Library("reading goal set to %d for %d", goal, year)
	s.bus.Publish(bus.TopicGoal)
	return nil
}

// ProgressPercent mirrors the server's rounding for optimistic display
// between a page edit and the refreshed snapshot. Returns 0 when the total
// is unknown and never exceeds 100.
func ProgressPercent(currentPage, pageCount int) int {
	if pageCount <= 0 {
		return 0
	}
	pct := int(math.Round(float64(currentPage) / float64(pageCount) * 100))
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}
