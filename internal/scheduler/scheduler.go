// Package scheduler runs the recurring jobs: the daily per-user book
// recommendation and the daily backup, each at a fixed local hour.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shelftalk/shelftalk-bot/internal/backup"
	"github.com/shelftalk/shelftalk-bot/internal/chat"
	"github.com/shelftalk/shelftalk-bot/internal/domain"
	apperrors "github.com/shelftalk/shelftalk-bot/internal/errors"
	"github.com/shelftalk/shelftalk-bot/internal/genre"
	"github.com/shelftalk/shelftalk-bot/internal/lookup"
	"github.com/shelftalk/shelftalk-bot/internal/service"
	"github.com/shelftalk/shelftalk-bot/internal/store"
)

// Scheduler fires the recommendation and backup jobs. Both are also
// invokable directly, which the tests and the ops surface rely on.
type Scheduler struct {
	store    store.Store
	resolver *service.Resolver
	sender   chat.Sender
	backups  *backup.Manager
	logger   *slog.Logger

	recommendHour int
	backupHour    int
	keepBackups   int

	now func() time.Time
}

// New creates a scheduler. Hours are local 0-23.
func New(
	st store.Store,
	resolver *service.Resolver,
	sender chat.Sender,
	backups *backup.Manager,
	logger *slog.Logger,
	recommendHour, backupHour int,
) *Scheduler {
	return &Scheduler{
		store:         st,
		resolver:      resolver,
		sender:        sender,
		backups:       backups,
		logger:        logger,
		recommendHour: recommendHour,
		backupHour:    backupHour,
		keepBackups:   14,
		now:           time.Now,
	}
}

// Run blocks, firing each job at its configured hour, until the context is
// cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		now := s.now()
		nextRec := nextAt(now, s.recommendHour)
		nextBak := nextAt(now, s.backupHour)

		next := nextRec
		if nextBak.Before(next) {
			next = nextBak
		}

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		// Every job due at this instant fires. With both hours configured
		// the same, both run.
		if nextRec.Equal(next) {
			if err := s.RunDailyRecommendation(ctx); err != nil {
				s.logger.Error("recommendation sweep failed", "error", err)
			}
		}
		if nextBak.Equal(next) {
			if _, err := s.RunBackup(ctx); err != nil {
				s.logger.Error("backup failed", "error", err)
			}
		}
	}
}

// nextAt returns the next occurrence of the given local hour after now.
func nextAt(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// RunDailyRecommendation sends every eligible user one book suggestion.
// Per-user failures are logged and skipped; the sweep always finishes.
func (s *Scheduler) RunDailyRecommendation(ctx context.Context) error {
	userIDs, err := s.store.ListUserIDs(ctx)
	if err != nil {
		return err
	}

	sent := 0
	for _, userID := range userIDs {
		if err := s.recommendFor(ctx, userID); err != nil {
			s.logger.Warn("recommendation skipped",
				"user_id", userID,
				"error", err,
			)
			continue
		}
		sent++
	}

	s.logger.Info("recommendation sweep finished",
		"users", len(userIDs),
		"sent", sent,
	)
	return nil
}

func (s *Scheduler) recommendFor(ctx context.Context, userID int64) error {
	profile, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if !profile.PolicyAccepted || profile.IsBanned(s.now()) {
		return nil
	}

	preferred, exclude, err := s.preferredGenre(ctx, userID)
	if err != nil {
		return err
	}

	book, err := s.pickBook(ctx, userID, preferred, exclude)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}

	reply := chat.Reply{
		Text: fmt.Sprintf("Today's pick for you: %s\nGenres: %s\n\n%s",
			book.Title, book.GenresLabel(), book.Description),
		PhotoRef: book.CoverRef,
	}
	return chat.Send(ctx, s.sender.ResponderFor(userID), reply)
}

// preferredGenre derives a genre from the user's favorites, falling back to
// their past genre searches, then to the rotating defaults. It also returns
// the book IDs the pick should avoid.
func (s *Scheduler) preferredGenre(ctx context.Context, userID int64) (string, []string, error) {
	favorites, err := s.store.ListForUser(ctx, userID, domain.ListFavorites)
	if err != nil {
		return "", nil, err
	}

	exclude := make([]string, 0, len(favorites))
	var preferred string
	for _, item := range favorites {
		exclude = append(exclude, item.Book.ID)
		if preferred != "" {
			continue
		}
		for _, g := range item.Book.Genres {
			if g != domain.PlaceholderGenre {
				preferred = g
				break
			}
		}
	}
	if preferred != "" {
		return preferred, exclude, nil
	}

	searches, err := s.store.RecentSearches(ctx, userID, 10)
	if err != nil {
		return "", nil, err
	}
	for _, rec := range searches {
		if rec.Mode == string(lookup.ModeGenre) && strings.TrimSpace(rec.Query) != "" {
			return rec.Query, exclude, nil
		}
	}

	return genre.DefaultFor(s.now().YearDay()), exclude, nil
}

// pickBook prefers a cached genre match the user hasn't favorited yet and
// falls back to the resolver, which may go to the network.
func (s *Scheduler) pickBook(ctx context.Context, userID int64, subject string, exclude []string) (*domain.Book, error) {
	book, err := s.store.RandomBookByGenre(ctx, subject, exclude)
	if err == nil {
		return book, nil
	}
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	book, err = s.resolver.Resolve(ctx, userID, subject, lookup.ModeGenre)
	if err != nil {
		return nil, err
	}
	for _, id := range exclude {
		if book.ID == id {
			return nil, apperrors.ErrNotFound
		}
	}
	return book, nil
}

// RunBackup writes one backup archive and prunes old ones.
func (s *Scheduler) RunBackup(ctx context.Context) (string, error) {
	path, err := s.backups.Run(ctx)
	if err != nil {
		return "", err
	}
	s.backups.Prune(s.keepBackups)
	return path, nil
}
