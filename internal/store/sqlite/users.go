package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/shelftalk/shelftalk-bot/internal/domain"
)

// userColumns is the ordered list of columns selected in user queries.
// Must match the scan order in scanUser.
const userColumns = `user_id, display_name, policy_accepted, banned_until,
	ban_reason, request_count, request_window_start, created_at`

// scanUser scans a sql.Row (or sql.Rows via its Scan method) into a domain.UserProfile.
func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.UserProfile, error) {
	var u domain.UserProfile

	var (
		policyAccepted int
		bannedUntil    sql.NullString
		windowStart    string
		createdAt      string
	)

	err := scanner.Scan(
		&u.UserID,
		&u.DisplayName,
		&policyAccepted,
		&bannedUntil,
		&u.BanReason,
		&u.RequestCount,
		&windowStart,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	u.PolicyAccepted = policyAccepted != 0

	u.BannedUntil, err = parseNullableTime(bannedUntil)
	if err != nil {
		return nil, err
	}

	if windowStart != "" {
		u.RequestWindowStart, err = parseTime(windowStart)
		if err != nil {
			return nil, err
		}
	}

	u.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// EnsureUser creates the profile on first interaction and refreshes the
// display name on later ones.
func (s *Store) EnsureUser(ctx context.Context, userID int64, displayName string) (*domain.UserProfile, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (user_id, display_name, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET display_name = excluded.display_name`,
		userID, displayName, formatTime(time.Now()),
	)
	if err != nil {
		return nil, wrapErr("ensure user", err)
	}
	return s.GetUser(ctx, userID)
}

// GetUser fetches a profile by user ID.
func (s *Store) GetUser(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE user_id = ?`, userID)

	u, err := scanUser(row)
	if err != nil {
		return nil, wrapErr("get user", err)
	}
	return u, nil
}

// SetPolicyAccepted records the policy-acceptance gate.
func (s *Store) SetPolicyAccepted(ctx context.Context, userID int64, accepted bool) error {
	v := 0
	if accepted {
		v = 1
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET policy_accepted = ? WHERE user_id = ?`, v, userID)
	if err != nil {
		return wrapErr("set policy accepted", err)
	}
	return nil
}

// BanUser sets banned_until and the reason.
func (s *Store) BanUser(ctx context.Context, userID int64, until time.Time, reason string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET banned_until = ?, ban_reason = ? WHERE user_id = ?`,
		formatTime(until), reason, userID)
	if err != nil {
		return wrapErr("ban user", err)
	}
	s.logger.Info("user banned", "user_id", userID, "until", until, "reason", reason)
	return nil
}

// UnbanUser clears any ban.
func (s *Store) UnbanUser(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET banned_until = NULL, ban_reason = '' WHERE user_id = ?`, userID)
	if err != nil {
		return wrapErr("unban user", err)
	}
	return nil
}

// BumpRequestWindow advances the sliding-window request counter. The window
// resets once now is past request_window_start + window; the returned count
// includes this request.
func (s *Store) BumpRequestWindow(ctx context.Context, userID int64, now time.Time, window time.Duration) (int, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	count := u.RequestCount + 1
	windowStart := u.RequestWindowStart
	if windowStart.IsZero() || now.Sub(windowStart) >= window {
		count = 1
		windowStart = now
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE users SET request_count = ?, request_window_start = ? WHERE user_id = ?`,
		count, formatTime(windowStart), userID)
	if err != nil {
		return 0, wrapErr("bump request window", err)
	}
	return count, nil
}

// ListUserIDs returns all known user IDs in creation order.
func (s *Store) ListUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id FROM users ORDER BY rowid`)
	if err != nil {
		return nil, wrapErr("list user ids", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, wrapErr("list user ids", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list user ids", err)
	}
	return ids, nil
}

// ResetUser removes the user's list entries and search history. The profile
// row and cached books stay.
func (s *Store) ResetUser(ctx context.Context, userID int64) error {
	for _, q := range []string{
		`DELETE FROM read_entries WHERE user_id = ?`,
		`DELETE FROM favorite_entries WHERE user_id = ?`,
		`DELETE FROM search_history WHERE user_id = ?`,
	} {
		if _, err := s.db.ExecContext(ctx, q, userID); err != nil {
			return wrapErr("reset user", err)
		}
	}
	s.logger.Info("user data reset", "user_id", userID)
	return nil
}

// AllUsers returns every profile in creation order. Used by backups.
func (s *Store) AllUsers(ctx context.Context) ([]domain.UserProfile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY rowid`)
	if err != nil {
		return nil, wrapErr("all users", err)
	}
	defer rows.Close()

	var users []domain.UserProfile
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, wrapErr("all users", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("all users", err)
	}
	return users, nil
}
