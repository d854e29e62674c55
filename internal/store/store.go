// Package store defines the persistence contract for the ShelfTalk bot.
// The SQLite implementation lives in store/sqlite.
package store

import (
	"context"
	"time"

	"github.com/shelftalk/shelftalk-bot/internal/domain"
)

// Store is the persistence contract shared by the services and the scheduler.
//
// Every operation is atomic at the storage layer. Multi-step flows are not
// wrapped in cross-operation transactions; partial completion (a book cached
// but not yet related to a user) is a recoverable inconsistency, not
// corruption. Storage failures surface as errors.ErrStorage and are never
// retried silently.
type Store interface {
	BookStore
	UserStore
	ListStore
	HistoryStore

	// Counts returns total books, users, read entries, and favorite entries.
	// Backs the ops stats endpoint.
	Counts(ctx context.Context) (Counts, error)

	Close() error
}

// BookStore manages the cached book relation.
type BookStore interface {
	// UpsertBook inserts the book if its ID is absent. On conflict the stored
	// record is left untouched (first-write-wins for resolver-sourced books).
	UpsertBook(ctx context.Context, book *domain.Book) error

	// UpdateManualBook applies a targeted field update by ID. Only books with
	// source=manual may be edited; others return a validation error.
	UpdateManualBook(ctx context.Context, book *domain.Book) error

	// GetBook fetches a book by ID; errors.ErrNotFound when absent.
	GetBook(ctx context.Context, id string) (*domain.Book, error)

	// FindBookByTitle returns at most one book whose title contains the
	// substring, case-insensitive, first by storage order. Ambiguity is
	// accepted, not resolved with ranking.
	FindBookByTitle(ctx context.Context, substring string) (*domain.Book, error)

	// RandomBookByGenre picks one cached book at random whose genre list
	// contains the substring, excluding the given book IDs.
	RandomBookByGenre(ctx context.Context, substring string, exclude []string) (*domain.Book, error)
}

// UserStore manages user profiles, policy acceptance, bans, and the
// persisted rate-limit window.
type UserStore interface {
	// EnsureUser creates the profile on first interaction and refreshes the
	// display name on later ones. Returns the current profile.
	EnsureUser(ctx context.Context, userID int64, displayName string) (*domain.UserProfile, error)

	// GetUser fetches a profile; errors.ErrNotFound when absent.
	GetUser(ctx context.Context, userID int64) (*domain.UserProfile, error)

	// SetPolicyAccepted records the policy-acceptance gate.
	SetPolicyAccepted(ctx context.Context, userID int64, accepted bool) error

	// BanUser sets banned_until and the reason.
	BanUser(ctx context.Context, userID int64, until time.Time, reason string) error

	// UnbanUser clears any ban.
	UnbanUser(ctx context.Context, userID int64) error

	// BumpRequestWindow advances the sliding-window request counter. The
	// counter resets when now is past windowStart+window; returns the count
	// within the current window after this request.
	BumpRequestWindow(ctx context.Context, userID int64, now time.Time, window time.Duration) (int, error)

	// ListUserIDs returns all known user IDs in creation order.
	ListUserIDs(ctx context.Context) ([]int64, error)

	// ResetUser removes the user's list entries and search history.
	// Profile and cached books stay.
	ResetUser(ctx context.Context, userID int64) error
}

// ListStore manages the two independent per-user book relations.
type ListStore interface {
	// AddToList inserts idempotently; duplicates are no-ops.
	AddToList(ctx context.Context, userID int64, bookID string, kind domain.ListKind) error

	// RemoveFromList deletes the membership; removing an absent entry is a no-op.
	RemoveFromList(ctx context.Context, userID int64, bookID string, kind domain.ListKind) error

	// MoveBetweenLists deletes from one relation and idempotently inserts
	// into the other. A rating on the read relation is untouched by
	// favorite-side changes since the relations are independent.
	MoveBetweenLists(ctx context.Context, userID int64, bookID string, from domain.ListKind) error

	// SetRating upserts: creates the read entry if absent, else updates the
	// rating. Rating bounds (1-5) are validated by the caller and enforced
	// by a schema constraint.
	SetRating(ctx context.Context, userID int64, bookID string, rating int) error

	// ListForUser returns entries joined with books in stable insertion
	// order, required for pagination and pick-item-N addressing.
	ListForUser(ctx context.Context, userID int64, kind domain.ListKind) ([]domain.ListItem, error)
}

// HistoryStore manages the per-user search-history log.
type HistoryStore interface {
	AddSearchRecord(ctx context.Context, rec *domain.SearchRecord) error
	RecentSearches(ctx context.Context, userID int64, limit int) ([]domain.SearchRecord, error)
}

// Counts is a snapshot of relation sizes.
type Counts struct {
	Books     int `json:"books"`
	Users     int `json:"users"`
	Read      int `json:"read_entries"`
	Favorites int `json:"favorite_entries"`
}

// Exporter streams full relations for backup. Implemented by the SQLite
// store; consumed by internal/backup.
type Exporter interface {
	AllBooks(ctx context.Context) ([]domain.Book, error)
	AllUsers(ctx context.Context) ([]domain.UserProfile, error)
	AllReadEntries(ctx context.Context) ([]domain.ReadEntry, error)
	AllFavoriteEntries(ctx context.Context) ([]domain.FavoriteEntry, error)
}
