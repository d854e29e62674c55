package service

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shelftalk/shelftalk-bot/internal/chat"
	apperrors "github.com/shelftalk/shelftalk-bot/internal/errors"
	"github.com/shelftalk/shelftalk-bot/internal/store"
)

// AdminService implements the moderation surface: broadcast, ban, unban,
// and per-user reset. A single admin user ID is configured; 0 disables
// every admin operation.
type AdminService struct {
	store       store.Store
	logger      *slog.Logger
	adminUserID int64
	now         func() time.Time
}

// NewAdminService creates a new admin service.
func NewAdminService(st store.Store, logger *slog.Logger, adminUserID int64) *AdminService {
	return &AdminService{
		store:       st,
		logger:      logger,
		adminUserID: adminUserID,
		now:         time.Now,
	}
}

// IsAdmin reports whether the user may enter admin flows.
func (s *AdminService) IsAdmin(userID int64) bool {
	return s.adminUserID != 0 && userID == s.adminUserID
}

// Authorize returns a forbidden error unless the actor is the admin.
func (s *AdminService) Authorize(actorID int64) error {
	if !s.IsAdmin(actorID) {
		return apperrors.Forbidden("admin only")
	}
	return nil
}

// BroadcastResult summarizes a broadcast sweep.
type BroadcastResult struct {
	Sent   int
	Failed int
}

// Broadcast sends a text message to every known user. Delivery failures are
// logged and counted; one rejected user never aborts the sweep.
func (s *AdminService) Broadcast(ctx context.Context, actorID int64, sender chat.Sender, text string) (*BroadcastResult, error) {
	if err := s.Authorize(actorID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.Validation("broadcast text is empty")
	}

	userIDs, err := s.store.ListUserIDs(ctx)
	if err != nil {
		return nil, err
	}

	res := &BroadcastResult{}
	for _, userID := range userIDs {
		if err := sender.ResponderFor(userID).SendText(ctx, text, nil); err != nil {
			s.logger.Warn("broadcast delivery failed",
				"user_id", userID,
				"error", err,
			)
			res.Failed++
			continue
		}
		res.Sent++
	}

	s.logger.Info("broadcast finished",
		"sent", res.Sent,
		"failed", res.Failed,
	)
	return res, nil
}

// Ban bans a user until now+duration with the given reason.
func (s *AdminService) Ban(ctx context.Context, actorID, userID int64, duration time.Duration, reason string) error {
	if err := s.Authorize(actorID); err != nil {
		return err
	}
	if duration <= 0 {
		return apperrors.Validation("ban duration must be positive")
	}

	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return err
	}

	until := s.now().Add(duration)
	if err := s.store.BanUser(ctx, userID, until, reason); err != nil {
		return err
	}
	s.logger.Info("user banned",
		"user_id", userID,
		"until", until,
		"reason", reason,
	)
	return nil
}

// Unban clears any ban on the user.
func (s *AdminService) Unban(ctx context.Context, actorID, userID int64) error {
	if err := s.Authorize(actorID); err != nil {
		return err
	}
	if err := s.store.UnbanUser(ctx, userID); err != nil {
		return err
	}
	s.logger.Info("user unbanned", "user_id", userID)
	return nil
}

// Reset wipes a user's list entries and search history. The profile and
// cached books stay.
func (s *AdminService) Reset(ctx context.Context, actorID, userID int64) error {
	if err := s.Authorize(actorID); err != nil {
		return err
	}
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return err
	}
	if err := s.store.ResetUser(ctx, userID); err != nil {
		return err
	}
	s.logger.Info("user reset", "user_id", userID)
	return nil
}

// Stats returns relation counts for the admin panel.
func (s *AdminService) Stats(ctx context.Context, actorID int64) (store.Counts, error) {
	if err := s.Authorize(actorID); err != nil {
		return store.Counts{}, err
	}
	return s.store.Counts(ctx)
}

// ParseBanDuration parses an admin-entered ban duration: either a Go
// duration string ("90m", "12h") or a day count ("3d").
func ParseBanDuration(input string) (time.Duration, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, apperrors.Validation("empty duration")
	}

	if days, ok := strings.CutSuffix(input, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 1 {
			return 0, apperrors.Validationf("bad day count %q", input)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}

	d, err := time.ParseDuration(input)
	if err != nil || d <= 0 {
		return 0, apperrors.Validationf("bad duration %q", input)
	}
	return d, nil
}
