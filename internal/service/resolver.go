package service

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"github.com/shelftalk/shelftalk-bot/internal/domain"
	apperrors "github.com/shelftalk/shelftalk-bot/internal/errors"
	"github.com/shelftalk/shelftalk-bot/internal/genre"
	"github.com/shelftalk/shelftalk-bot/internal/lookup"
	"github.com/shelftalk/shelftalk-bot/internal/store"
)

// LookupClient is the slice of the lookup client the resolver needs.
// Declared here so tests can count calls.
type LookupClient interface {
	Search(ctx context.Context, query string, mode lookup.Mode) ([]lookup.Result, error)
}

// Resolver maps a text query to a canonical book record, preferring the
// local cache over the network.
type Resolver struct {
	store  store.Store
	client LookupClient
	logger *slog.Logger
}

// NewResolver creates a new resolver.
func NewResolver(st store.Store, client LookupClient, logger *slog.Logger) *Resolver {
	return &Resolver{
		store:  st,
		client: client,
		logger: logger,
	}
}

// Resolve finds a book for the query, consulting the store first and
// falling back to the external lookup. A fresh external result is cached
// before it is returned.
//
// Genre-mode lookups pick one candidate at random from the first batch so
// repeated queries can return different books; the variety is deliberate.
// Transport and parse failures collapse to not-found and never propagate
// as fatal.
func (r *Resolver) Resolve(ctx context.Context, userID int64, query string, mode lookup.Mode) (*domain.Book, error) {
	if !mode.Valid() {
		return nil, apperrors.Validationf("unknown search mode %q", mode)
	}
	if mode == lookup.ModeGenre {
		query = genre.Canonical(query)
	}

	// Cache first.
	if book, ok, err := r.fromCache(ctx, query, mode); err != nil {
		return nil, err
	} else if ok {
		r.recordSearch(ctx, userID, query, mode, book.ID)
		return book, nil
	}

	// Cache miss: go to the network.
	results, err := r.client.Search(ctx, query, mode)
	if err != nil {
		r.logger.Debug("lookup failed, treating as not found",
			"query", query,
			"mode", string(mode),
			"error", err,
		)
		return nil, apperrors.ErrNotFound
	}
	if len(results) == 0 {
		r.recordSearch(ctx, userID, query, mode, "")
		return nil, apperrors.ErrNotFound
	}

	picked := results[0]
	if mode == lookup.ModeGenre {
		picked = results[rand.IntN(len(results))]
	}

	book := &domain.Book{
		ID:          picked.Key,
		Title:       picked.Title,
		Description: picked.Description,
		Genres:      picked.Subjects,
		CoverRef:    picked.CoverURL,
		Source:      domain.SourceLookup,
	}
	book.Normalize()

	if err := r.store.UpsertBook(ctx, book); err != nil {
		return nil, err
	}

	// First-write-wins: if another session cached the same key first, the
	// stored record is canonical.
	cached, err := r.store.GetBook(ctx, book.ID)
	if err == nil {
		book = cached
	}

	r.recordSearch(ctx, userID, query, mode, book.ID)
	return book, nil
}

// fromCache attempts a store-side resolution. Only title and genre modes
// have a cache path; author queries always hit the network.
func (r *Resolver) fromCache(ctx context.Context, query string, mode lookup.Mode) (*domain.Book, bool, error) {
	var (
		book *domain.Book
		err  error
	)

	switch mode {
	case lookup.ModeTitle:
		book, err = r.store.FindBookByTitle(ctx, query)
	case lookup.ModeGenre:
		book, err = r.store.RandomBookByGenre(ctx, query, nil)
	default:
		return nil, false, nil
	}

	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return book, true, nil
}

// recordSearch logs the query to the search history. Best effort: a failed
// history write must not fail the resolution.
func (r *Resolver) recordSearch(ctx context.Context, userID int64, query string, mode lookup.Mode, bookID string) {
	rec := &domain.SearchRecord{
		UserID: userID,
		Query:  query,
		Mode:   string(mode),
		BookID: bookID,
	}
	if err := r.store.AddSearchRecord(ctx, rec); err != nil {
		r.logger.Warn("failed to record search history",
			"user_id", userID,
			"error", err,
		)
	}
}
