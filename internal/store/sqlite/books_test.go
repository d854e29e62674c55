package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/shelftalk/shelftalk-bot/internal/domain"
	apperrors "github.com/shelftalk/shelftalk-bot/internal/errors"
)

// makeTestBook creates a domain.Book with sensible defaults for testing.
func makeTestBook(id, title string) *domain.Book {
	return &domain.Book{
		ID:          id,
		Title:       title,
		Description: "A test book.",
		Genres:      []string{"Fantasy", "Adventure"},
		CoverRef:    "https://covers.example/" + id + ".jpg",
		Source:      domain.SourceLookup,
		CreatedAt:   time.Now(),
	}
}

func TestUpsertAndGetBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := makeTestBook("ol-1", "The Hobbit")
	if err := s.UpsertBook(ctx, b); err != nil {
		t.Fatalf("UpsertBook: %v", err)
	}

	got, err := s.GetBook(ctx, "ol-1")
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.Title != b.Title {
		t.Errorf("Title: got %q, want %q", got.Title, b.Title)
	}
	if got.Description != b.Description {
		t.Errorf("Description: got %q, want %q", got.Description, b.Description)
	}
	if len(got.Genres) != 2 || got.Genres[0] != "Fantasy" {
		t.Errorf("Genres: got %v", got.Genres)
	}
	if got.Source != domain.SourceLookup {
		t.Errorf("Source: got %q", got.Source)
	}
}

func TestUpsertBook_FirstWriteWins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := makeTestBook("ol-2", "Dune")
	if err := s.UpsertBook(ctx, first); err != nil {
		t.Fatalf("UpsertBook: %v", err)
	}

	second := makeTestBook("ol-2", "Dune Messiah")
	if err := s.UpsertBook(ctx, second); err != nil {
		t.Fatalf("UpsertBook conflict: %v", err)
	}

	got, err := s.GetBook(ctx, "ol-2")
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.Title != "Dune" {
		t.Errorf("conflict should leave stored record untouched, got %q", got.Title)
	}
}

func TestGetBook_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetBook(context.Background(), "missing")
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFindBookByTitle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, b := range []*domain.Book{
		makeTestBook("ol-3", "The Fellowship of the Ring"),
		makeTestBook("ol-4", "The Two Towers"),
	} {
		if err := s.UpsertBook(ctx, b); err != nil {
			t.Fatalf("UpsertBook: %v", err)
		}
	}

	// Case-insensitive substring.
	got, err := s.FindBookByTitle(ctx, "fellowship")
	if err != nil {
		t.Fatalf("FindBookByTitle: %v", err)
	}
	if got.ID != "ol-3" {
		t.Errorf("got %q, want ol-3", got.ID)
	}

	// Ambiguous match returns the first by storage order.
	got, err = s.FindBookByTitle(ctx, "the")
	if err != nil {
		t.Fatalf("FindBookByTitle ambiguous: %v", err)
	}
	if got.ID != "ol-3" {
		t.Errorf("ambiguous match should be first by rowid, got %q", got.ID)
	}

	// Miss.
	if _, err := s.FindBookByTitle(ctx, "silmarillion"); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRandomBookByGenre(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	fantasy := makeTestBook("ol-5", "A Wizard of Earthsea")
	scifi := makeTestBook("ol-6", "Neuromancer")
	scifi.Genres = []string{"Science Fiction"}
	for _, b := range []*domain.Book{fantasy, scifi} {
		if err := s.UpsertBook(ctx, b); err != nil {
			t.Fatalf("UpsertBook: %v", err)
		}
	}

	got, err := s.RandomBookByGenre(ctx, "fantasy", nil)
	if err != nil {
		t.Fatalf("RandomBookByGenre: %v", err)
	}
	if got.ID != "ol-5" {
		t.Errorf("got %q, want ol-5", got.ID)
	}

	// Exclusion removes the only candidate.
	if _, err := s.RandomBookByGenre(ctx, "fantasy", []string{"ol-5"}); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound with exclusion, got %v", err)
	}
}

func TestUpdateManualBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	manual := makeTestBook(domain.ManualBookID(7, time.Unix(1700000000, 0)), "My Notes")
	manual.Source = domain.SourceManual
	if err := s.UpsertBook(ctx, manual); err != nil {
		t.Fatalf("UpsertBook: %v", err)
	}

	manual.Title = "My Revised Notes"
	if err := s.UpdateManualBook(ctx, manual); err != nil {
		t.Fatalf("UpdateManualBook: %v", err)
	}

	got, err := s.GetBook(ctx, manual.ID)
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.Title != "My Revised Notes" {
		t.Errorf("Title: got %q", got.Title)
	}

	// Lookup-sourced books are immutable through the edit path.
	cached := makeTestBook("ol-7", "Cached Book")
	if err := s.UpsertBook(ctx, cached); err != nil {
		t.Fatalf("UpsertBook: %v", err)
	}
	cached.Title = "Tampered"
	if err := s.UpdateManualBook(ctx, cached); !apperrors.Is(err, apperrors.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}

	// Missing book surfaces not-found, not validation.
	ghost := makeTestBook("missing", "Ghost")
	ghost.Source = domain.SourceManual
	if err := s.UpdateManualBook(ctx, ghost); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.UpsertBook(ctx, makeTestBook("ol-8", "Counted")); err != nil {
		t.Fatalf("UpsertBook: %v", err)
	}
	if _, err := s.EnsureUser(ctx, 1, "reader"); err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	if err := s.AddToList(ctx, 1, "ol-8", domain.ListRead); err != nil {
		t.Fatalf("AddToList: %v", err)
	}

	c, err := s.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if c.Books != 1 || c.Users != 1 || c.Read != 1 || c.Favorites != 0 {
		t.Errorf("unexpected counts: %+v", c)
	}
}
