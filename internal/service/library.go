package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/shelftalk/shelftalk-bot/internal/domain"
	apperrors "github.com/shelftalk/shelftalk-bot/internal/errors"
	"github.com/shelftalk/shelftalk-bot/internal/store"
	"github.com/shelftalk/shelftalk-bot/internal/validation"
)

// LibraryService orchestrates the per-user read and favorites lists,
// ratings, and manual book entry.
type LibraryService struct {
	store     store.Store
	logger    *slog.Logger
	validator *validation.Validator
}

// NewLibraryService creates a new library service.
func NewLibraryService(st store.Store, logger *slog.Logger) *LibraryService {
	return &LibraryService{
		store:     st,
		logger:    logger,
		validator: validation.New(),
	}
}

// AddToList adds a book to one of the user's lists. Idempotent.
func (s *LibraryService) AddToList(ctx context.Context, userID int64, bookID string, kind domain.ListKind) error {
	if !kind.Valid() {
		return apperrors.Validationf("unknown list kind %q", kind)
	}
	return s.store.AddToList(ctx, userID, bookID, kind)
}

// RemoveFromList removes a book from one of the user's lists.
func (s *LibraryService) RemoveFromList(ctx context.Context, userID int64, bookID string, kind domain.ListKind) error {
	if !kind.Valid() {
		return apperrors.Validationf("unknown list kind %q", kind)
	}
	return s.store.RemoveFromList(ctx, userID, bookID, kind)
}

// MoveBetweenLists moves a book from one list to the other. A rating tied
// to a read entry survives favorite-side moves.
func (s *LibraryService) MoveBetweenLists(ctx context.Context, userID int64, bookID string, from domain.ListKind) error {
	if !from.Valid() {
		return apperrors.Validationf("unknown list kind %q", from)
	}
	return s.store.MoveBetweenLists(ctx, userID, bookID, from)
}

// RateBook sets the user's rating for a book, creating the read entry if
// needed. Ratings outside 1-5 are rejected before any write.
func (s *LibraryService) RateBook(ctx context.Context, userID int64, bookID string, rating int) error {
	if rating < 1 || rating > 5 {
		return apperrors.Validationf("rating must be between 1 and 5, got %d", rating)
	}
	return s.store.SetRating(ctx, userID, bookID, rating)
}

// List returns the user's list in insertion order.
func (s *LibraryService) List(ctx context.Context, userID int64, kind domain.ListKind) ([]domain.ListItem, error) {
	if !kind.Valid() {
		return nil, apperrors.Validationf("unknown list kind %q", kind)
	}
	return s.store.ListForUser(ctx, userID, kind)
}

// GetBook fetches a cached book by ID.
func (s *LibraryService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	return s.store.GetBook(ctx, bookID)
}

// ManualBookRequest contains the fields collected by the manual-entry flow.
type ManualBookRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=300"`
	Description string `json:"description" validate:"max=4000"`
	CoverRef    string `json:"cover_ref" validate:"max=1000"`
}

// CreateManualBook creates a hand-entered book with a synthetic ID and adds
// it to the target list.
func (s *LibraryService) CreateManualBook(ctx context.Context, userID int64, req ManualBookRequest, target domain.ListKind) (*domain.Book, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if !target.Valid() {
		return nil, apperrors.Validationf("unknown list kind %q", target)
	}

	book := &domain.Book{
		ID:          domain.ManualBookID(userID, time.Now()),
		Title:       req.Title,
		Description: req.Description,
		CoverRef:    req.CoverRef,
		Source:      domain.SourceManual,
	}
	book.Normalize()

	if err := s.store.UpsertBook(ctx, book); err != nil {
		return nil, err
	}
	if err := s.store.AddToList(ctx, userID, book.ID, target); err != nil {
		// The book is cached but not yet related to the user: a recoverable
		// inconsistency, surfaced to the caller.
		return nil, err
	}

	s.logger.Info("manual book created",
		"user_id", userID,
		"book_id", book.ID,
		"list", string(target),
	)
	return book, nil
}

// EditManualBook applies a field update to a manually entered book.
func (s *LibraryService) EditManualBook(ctx context.Context, bookID string, req ManualBookRequest) (*domain.Book, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	book := &domain.Book{
		ID:          bookID,
		Title:       req.Title,
		Description: req.Description,
		CoverRef:    req.CoverRef,
		Source:      domain.SourceManual,
	}
	book.Normalize()

	if err := s.store.UpdateManualBook(ctx, book); err != nil {
		return nil, err
	}
	return s.store.GetBook(ctx, bookID)
}
