// Package domain contains the core business entities for the ShelfTalk book bot.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// BookSource identifies where a book record came from.
type BookSource string

const (
	// SourceLookup marks books cached from the external lookup service.
	SourceLookup BookSource = "lookup"
	// SourceManual marks books entered by hand through the manual-entry flow.
	SourceManual BookSource = "manual"
)

// Placeholder values used when the lookup service omits a field.
// Downstream rendering never needs nil-handling because of these.
const (
	PlaceholderTitle       = "Untitled"
	PlaceholderDescription = "No description available"
	PlaceholderGenre       = "uncategorized"
)

// Book is a canonical book record, cached from the lookup service or
// entered manually. Immutable once cached except through the explicit
// edit path, which is restricted to manual books.
type Book struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Genres      []string   `json:"genres,omitempty"`
	CoverRef    string     `json:"cover_ref,omitempty"`
	Source      BookSource `json:"source"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IsManual reports whether the book was entered by hand.
func (b *Book) IsManual() bool {
	return b.Source == SourceManual
}

// GenresLabel returns the comma-joined genre list for display.
func (b *Book) GenresLabel() string {
	if len(b.Genres) == 0 {
		return PlaceholderGenre
	}
	return strings.Join(b.Genres, ", ")
}

// Normalize fills missing fields with explicit placeholders.
func (b *Book) Normalize() {
	if strings.TrimSpace(b.Title) == "" {
		b.Title = PlaceholderTitle
	}
	if strings.TrimSpace(b.Description) == "" {
		b.Description = PlaceholderDescription
	}
	if len(b.Genres) == 0 {
		b.Genres = []string{PlaceholderGenre}
	}
}

// ManualBookID builds the synthetic ID for a hand-entered book.
// Format: manual_<user>_<unix-timestamp>.
func ManualBookID(userID int64, at time.Time) string {
	return fmt.Sprintf("manual_%d_%d", userID, at.Unix())
}
