package domain

import "time"

// ListKind selects one of the two independent per-user book relations.
type ListKind string

const (
	// ListRead is the "I have read this" relation; carries an optional rating.
	ListRead ListKind = "read"
	// ListFavorites is the favorites relation. A book may be in both lists.
	ListFavorites ListKind = "favorites"
)

// Valid reports whether the kind is one of the known relations.
func (k ListKind) Valid() bool {
	return k == ListRead || k == ListFavorites
}

// Label returns the user-facing name of the list.
func (k ListKind) Label() string {
	switch k {
	case ListRead:
		return "Read"
	case ListFavorites:
		return "Favorites"
	default:
		return string(k)
	}
}

// Other returns the opposite list kind, used by the move operation.
func (k ListKind) Other() ListKind {
	if k == ListRead {
		return ListFavorites
	}
	return ListRead
}

// ReadEntry relates a user to a book they have read.
// (UserID, BookID) is unique; Rating is mutable independent of membership.
type ReadEntry struct {
	UserID  int64     `json:"user_id"`
	BookID  string    `json:"book_id"`
	Rating  *int      `json:"rating,omitempty"` // 1-5 or absent
	AddedAt time.Time `json:"added_at"`
}

// FavoriteEntry relates a user to a favorited book.
// (UserID, BookID) is unique.
type FavoriteEntry struct {
	UserID  int64     `json:"user_id"`
	BookID  string    `json:"book_id"`
	AddedAt time.Time `json:"added_at"`
}

// ListItem is a book joined with its list membership, in insertion order.
// Rating is only populated for the read list.
type ListItem struct {
	Book    Book      `json:"book"`
	Rating  *int      `json:"rating,omitempty"`
	AddedAt time.Time `json:"added_at"`
}

// SearchRecord is one entry of the per-user search history log.
// Feeds the daily recommendation when the user has no favorites yet.
type SearchRecord struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Query      string    `json:"query"`
	Mode       string    `json:"mode"`
	BookID     string    `json:"book_id,omitempty"`
	SearchedAt time.Time `json:"searched_at"`
}
