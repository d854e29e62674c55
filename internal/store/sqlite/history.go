package sqlite

import (
	"context"
	"time"

	"github.com/shelftalk/shelftalk-bot/internal/domain"
)

// AddSearchRecord appends one entry to the per-user search log.
func (s *Store) AddSearchRecord(ctx context.Context, rec *domain.SearchRecord) error {
	if rec.SearchedAt.IsZero() {
		rec.SearchedAt = time.Now()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO search_history (user_id, query, mode, book_id, searched_at)
		VALUES (?, ?, ?, ?, ?)`,
		rec.UserID, rec.Query, rec.Mode, rec.BookID, formatTime(rec.SearchedAt))
	if err != nil {
		return wrapErr("add search record", err)
	}

	rec.ID, err = res.LastInsertId()
	if err != nil {
		return wrapErr("add search record", err)
	}
	return nil
}

// RecentSearches returns the user's newest search records, newest first.
func (s *Store) RecentSearches(ctx context.Context, userID int64, limit int) ([]domain.SearchRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, query, mode, book_id, searched_at
		FROM search_history WHERE user_id = ?
		ORDER BY id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, wrapErr("recent searches", err)
	}
	defer rows.Close()

	var records []domain.SearchRecord
	for rows.Next() {
		var (
			rec        domain.SearchRecord
			searchedAt string
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Query, &rec.Mode, &rec.BookID, &searchedAt); err != nil {
			return nil, wrapErr("recent searches", err)
		}
		if rec.SearchedAt, err = parseTime(searchedAt); err != nil {
			return nil, wrapErr("recent searches", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("recent searches", err)
	}
	return records, nil
}
