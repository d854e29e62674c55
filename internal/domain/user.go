package domain

import "time"

// UserProfile is the per-user record keyed by the chat platform's user ID.
// Created on first interaction.
type UserProfile struct {
	UserID             int64      `json:"user_id"`
	DisplayName        string     `json:"display_name"`
	PolicyAccepted     bool       `json:"policy_accepted"`
	BannedUntil        *time.Time `json:"banned_until,omitempty"`
	BanReason          string     `json:"ban_reason,omitempty"`
	RequestCount       int        `json:"request_count"`
	RequestWindowStart time.Time  `json:"request_window_start"`
	CreatedAt          time.Time  `json:"created_at"`
}

// IsBanned reports whether the user is banned at the given instant.
func (u *UserProfile) IsBanned(now time.Time) bool {
	return u.BannedUntil != nil && now.Before(*u.BannedUntil)
}
