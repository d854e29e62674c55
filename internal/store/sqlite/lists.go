package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/shelftalk/shelftalk-bot/internal/domain"
	apperrors "github.com/shelftalk/shelftalk-bot/internal/errors"
)

// tableForKind maps a list kind to its relation.
func tableForKind(kind domain.ListKind) (string, error) {
	switch kind {
	case domain.ListRead:
		return "read_entries", nil
	case domain.ListFavorites:
		return "favorite_entries", nil
	default:
		return "", apperrors.Validationf("unknown list kind %q", kind)
	}
}

// AddToList inserts idempotently; adding an existing (user, book) pair is a
// no-op. The foreign key rejects dangling book references.
func (s *Store) AddToList(ctx context.Context, userID int64, bookID string, kind domain.ListKind) error {
	table, err := tableForKind(kind)
	if err != nil {
		return err
	}

	var query string
	if kind == domain.ListRead {
		query = `INSERT INTO read_entries (user_id, book_id, added_at) VALUES (?, ?, ?)
			ON CONFLICT(user_id, book_id) DO NOTHING`
	} else {
		query = `INSERT INTO favorite_entries (user_id, book_id, added_at) VALUES (?, ?, ?)
			ON CONFLICT(user_id, book_id) DO NOTHING`
	}

	if _, err := s.db.ExecContext(ctx, query, userID, bookID, formatTime(time.Now())); err != nil {
		return wrapErr("add to "+table, err)
	}
	return nil
}

// RemoveFromList deletes the membership; removing an absent entry is a no-op.
func (s *Store) RemoveFromList(ctx context.Context, userID int64, bookID string, kind domain.ListKind) error {
	table, err := tableForKind(kind)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE user_id = ? AND book_id = ?`, userID, bookID); err != nil {
		return wrapErr("remove from "+table, err)
	}
	return nil
}

// MoveBetweenLists deletes from one relation and idempotently inserts into
// the other. Ratings live on read_entries only, so moving a book out of
// favorites never touches a rating, and moving it out of read drops the
// rating with the entry.
func (s *Store) MoveBetweenLists(ctx context.Context, userID int64, bookID string, from domain.ListKind) error {
	if err := s.AddToList(ctx, userID, bookID, from.Other()); err != nil {
		return err
	}
	return s.RemoveFromList(ctx, userID, bookID, from)
}

// SetRating upserts: creates the read entry if absent, else updates the
// rating. Bounds are validated by the caller; the CHECK constraint is the
// backstop.
func (s *Store) SetRating(ctx context.Context, userID int64, bookID string, rating int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO read_entries (user_id, book_id, rating, added_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, book_id) DO UPDATE SET rating = excluded.rating`,
		userID, bookID, rating, formatTime(time.Now()))
	if err != nil {
		return wrapErr("set rating", err)
	}
	return nil
}

// ListForUser returns entries joined with books in stable insertion order.
// The order backs pagination and pick-item-N addressing.
func (s *Store) ListForUser(ctx context.Context, userID int64, kind domain.ListKind) ([]domain.ListItem, error) {
	table, err := tableForKind(kind)
	if err != nil {
		return nil, err
	}

	var query string
	if kind == domain.ListRead {
		query = `SELECT b.id, b.title, b.description, b.genres, b.cover_ref, b.source, b.created_at,
				e.rating, e.added_at
			FROM read_entries e JOIN books b ON e.book_id = b.id
			WHERE e.user_id = ? ORDER BY e.added_at, e.rowid`
	} else {
		query = `SELECT b.id, b.title, b.description, b.genres, b.cover_ref, b.source, b.created_at,
				NULL, e.added_at
			FROM favorite_entries e JOIN books b ON e.book_id = b.id
			WHERE e.user_id = ? ORDER BY e.added_at, e.rowid`
	}

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, wrapErr("list "+table, err)
	}
	defer rows.Close()

	var items []domain.ListItem
	for rows.Next() {
		var (
			item      domain.ListItem
			genres    string
			source    string
			createdAt string
			rating    sql.NullInt64
			addedAt   string
		)
		err := rows.Scan(
			&item.Book.ID,
			&item.Book.Title,
			&item.Book.Description,
			&genres,
			&item.Book.CoverRef,
			&source,
			&createdAt,
			&rating,
			&addedAt,
		)
		if err != nil {
			return nil, wrapErr("list "+table, err)
		}

		item.Book.Genres = splitGenres(genres)
		item.Book.Source = domain.BookSource(source)
		if item.Book.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, wrapErr("list "+table, err)
		}
		if rating.Valid {
			r := int(rating.Int64)
			item.Rating = &r
		}
		if item.AddedAt, err = parseTime(addedAt); err != nil {
			return nil, wrapErr("list "+table, err)
		}

		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list "+table, err)
	}
	return items, nil
}

// AllReadEntries returns every read entry. Used by backups.
func (s *Store) AllReadEntries(ctx context.Context) ([]domain.ReadEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, book_id, rating, added_at FROM read_entries ORDER BY rowid`)
	if err != nil {
		return nil, wrapErr("all read entries", err)
	}
	defer rows.Close()

	var entries []domain.ReadEntry
	for rows.Next() {
		var (
			e       domain.ReadEntry
			rating  sql.NullInt64
			addedAt string
		)
		if err := rows.Scan(&e.UserID, &e.BookID, &rating, &addedAt); err != nil {
			return nil, wrapErr("all read entries", err)
		}
		if rating.Valid {
			r := int(rating.Int64)
			e.Rating = &r
		}
		if e.AddedAt, err = parseTime(addedAt); err != nil {
			return nil, wrapErr("all read entries", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("all read entries", err)
	}
	return entries, nil
}

// AllFavoriteEntries returns every favorite entry. Used by backups.
func (s *Store) AllFavoriteEntries(ctx context.Context) ([]domain.FavoriteEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, book_id, added_at FROM favorite_entries ORDER BY rowid`)
	if err != nil {
		return nil, wrapErr("all favorite entries", err)
	}
	defer rows.Close()

	var entries []domain.FavoriteEntry
	for rows.Next() {
		var (
			e       domain.FavoriteEntry
			addedAt string
		)
		if err := rows.Scan(&e.UserID, &e.BookID, &addedAt); err != nil {
			return nil, wrapErr("all favorite entries", err)
		}
		if e.AddedAt, err = parseTime(addedAt); err != nil {
			return nil, wrapErr("all favorite entries", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("all favorite entries", err)
	}
	return entries, nil
}
