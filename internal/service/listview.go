package service

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shelftalk/shelftalk-bot/internal/domain"
	apperrors "github.com/shelftalk/shelftalk-bot/internal/errors"
	"github.com/shelftalk/shelftalk-bot/internal/store"
)

// DefaultPageSize is used when a ListView is built with a non-positive size.
const DefaultPageSize = 10

// TargetRef is one entry of a list snapshot: enough to resolve a later
// pick-by-index or pick-by-title selection against what the user saw.
type TargetRef struct {
	BookID string
	Title  string
}

// PageItem is one rendered row. Index is 1-based and continuous across
// pages: item 11 is the first row of page 2.
type PageItem struct {
	Index  int
	Book   domain.Book
	Rating *int
}

// Page is a rendered slice of a user's list plus the full-list snapshot the
// state machine carries while awaiting a target selection.
type Page struct {
	Kind       domain.ListKind
	Number     int
	TotalPages int
	Total      int
	Items      []PageItem

	// Snapshot holds the whole ordered list, not just the visible page, so
	// numeric selection addresses the same items the user was shown even if
	// the stored list changes before they answer.
	Snapshot []TargetRef
}

// HasPrev reports whether a previous page exists.
func (p *Page) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a next page exists.
func (p *Page) HasNext() bool { return p.Number < p.TotalPages }

// ListView paginates user lists with a fixed page size.
type ListView struct {
	store    store.Store
	logger   *slog.Logger
	pageSize int
}

// NewListView creates a list view with the given page size.
func NewListView(st store.Store, logger *slog.Logger, pageSize int) *ListView {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &ListView{
		store:    st,
		logger:   logger,
		pageSize: pageSize,
	}
}

// RenderPage fetches the full ordered list and slices out one page.
// Out-of-range page numbers are clamped into [1, totalPages]; an empty list
// renders as page 1 of 1 with no items.
func (v *ListView) RenderPage(ctx context.Context, userID int64, kind domain.ListKind, page int) (*Page, error) {
	if !kind.Valid() {
		return nil, apperrors.Validationf("unknown list kind %q", kind)
	}

	items, err := v.store.ListForUser(ctx, userID, kind)
	if err != nil {
		return nil, err
	}

	totalPages := (len(items) + v.pageSize - 1) / v.pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := v.pageSize * (page - 1)
	end := min(start+v.pageSize, len(items))

	out := &Page{
		Kind:       kind,
		Number:     page,
		TotalPages: totalPages,
		Total:      len(items),
		Items:      make([]PageItem, 0, end-start),
		Snapshot:   make([]TargetRef, 0, len(items)),
	}
	for i := start; i < end; i++ {
		out.Items = append(out.Items, PageItem{
			Index:  i + 1,
			Book:   items[i].Book,
			Rating: items[i].Rating,
		})
	}
	for _, item := range items {
		out.Snapshot = append(out.Snapshot, TargetRef{
			BookID: item.Book.ID,
			Title:  item.Book.Title,
		})
	}
	return out, nil
}

// ResolveTarget maps the user's selection input to a book ID within the
// snapshot. Numeric input is a 1-based position in the full list; anything
// else is a case-insensitive title substring. Returns ErrNotFound when the
// selection matches nothing.
func ResolveTarget(snapshot []TargetRef, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", apperrors.NotFound("empty selection")
	}

	if n, err := strconv.Atoi(input); err == nil {
		if n < 1 || n > len(snapshot) {
			return "", apperrors.NotFoundf("no item %d in the list", n)
		}
		return snapshot[n-1].BookID, nil
	}

	needle := strings.ToLower(input)
	for _, ref := range snapshot {
		if strings.Contains(strings.ToLower(ref.Title), needle) {
			return ref.BookID, nil
		}
	}
	return "", apperrors.NotFoundf("no title matching %q in the list", input)
}
