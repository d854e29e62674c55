package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/shelftalk/shelftalk-bot/internal/domain"
	apperrors "github.com/shelftalk/shelftalk-bot/internal/errors"
	"github.com/shelftalk/shelftalk-bot/internal/store"
)

// requestWindow is the sliding window for the persisted per-user counter.
const requestWindow = time.Minute

// ProfileService manages user profiles and runs the per-message gate chain.
type ProfileService struct {
	store             store.Store
	logger            *slog.Logger
	messagesPerMinute int
	now               func() time.Time
}

// NewProfileService creates a new profile service. messagesPerMinute caps
// inbound messages per user within the sliding window.
func NewProfileService(st store.Store, logger *slog.Logger, messagesPerMinute int) *ProfileService {
	return &ProfileService{
		store:             st,
		logger:            logger,
		messagesPerMinute: messagesPerMinute,
		now:               time.Now,
	}
}

// Gate runs the checks every inbound event must pass, in order: profile
// upsert, ban check, policy-acceptance check, rate limit. It returns the
// profile on success and a typed error on the first failed check:
//
//	errors.ErrBanned      - banned, message carries the reason
//	errors.ErrForbidden   - policy not yet accepted
//	errors.ErrRateLimited - over the per-minute message cap
//
// A gate failure must never advance conversation state; callers reply with
// a fixed message and stop.
func (s *ProfileService) Gate(ctx context.Context, userID int64, displayName string) (*domain.UserProfile, error) {
	profile, err := s.store.EnsureUser(ctx, userID, displayName)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.CheckBan(profile); err != nil {
		return profile, err
	}

	if !profile.PolicyAccepted {
		return profile, apperrors.Forbidden("policy not accepted")
	}

	count, err := s.store.BumpRequestWindow(ctx, userID, now, requestWindow)
	if err != nil {
		return nil, err
	}
	if count > s.messagesPerMinute {
		s.logger.Warn("user over message cap",
			"user_id", userID,
			"count", count,
		)
		return profile, apperrors.RateLimited("too many messages, slow down")
	}

	return profile, nil
}

// CheckBan returns the ban gate error for the profile, or nil when the
// profile is not currently banned. Exposed separately because the
// policy-acceptance path skips the rest of the gate but never this check.
func (s *ProfileService) CheckBan(profile *domain.UserProfile) error {
	if !profile.IsBanned(s.now()) {
		return nil
	}
	reason := profile.BanReason
	if reason == "" {
		reason = "no reason given"
	}
	return apperrors.Bannedf("banned until %s: %s",
		profile.BannedUntil.Format(time.RFC1123), reason)
}

// EnsureUser upserts the profile without running the gate. Used by the
// policy-acceptance path, which must work before the policy gate passes.
func (s *ProfileService) EnsureUser(ctx context.Context, userID int64, displayName string) (*domain.UserProfile, error) {
	return s.store.EnsureUser(ctx, userID, displayName)
}

// AcceptPolicy records the user's policy acceptance.
func (s *ProfileService) AcceptPolicy(ctx context.Context, userID int64) error {
	if err := s.store.SetPolicyAccepted(ctx, userID, true); err != nil {
		return err
	}
	s.logger.Info("policy accepted", "user_id", userID)
	return nil
}

// GetUser fetches a profile by ID.
func (s *ProfileService) GetUser(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	return s.store.GetUser(ctx, userID)
}
