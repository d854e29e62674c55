package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/shelftalk/shelftalk-bot/internal/domain"
	apperrors "github.com/shelftalk/shelftalk-bot/internal/errors"
	"github.com/shelftalk/shelftalk-bot/internal/store"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `id, title, description, genres, cover_ref, source, created_at`

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.Book.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var b domain.Book

	var (
		genres    string
		source    string
		createdAt string
	)

	err := scanner.Scan(
		&b.ID,
		&b.Title,
		&b.Description,
		&genres,
		&b.CoverRef,
		&source,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	b.Genres = splitGenres(genres)
	b.Source = domain.BookSource(source)
	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

// UpsertBook inserts the book if absent. On ID conflict the stored record is
// left untouched: the first resolution wins and later lookups reuse the cache.
func (s *Store) UpsertBook(ctx context.Context, book *domain.Book) error {
	if book.CreatedAt.IsZero() {
		book.CreatedAt = time.Now()
	}
	if book.Source == "" {
		book.Source = domain.SourceLookup
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO books (id, title, description, genres, cover_ref, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		book.ID,
		book.Title,
		book.Description,
		joinGenres(book.Genres),
		book.CoverRef,
		string(book.Source),
		formatTime(book.CreatedAt),
	)
	if err != nil {
		return wrapErr("upsert book", err)
	}

	s.logger.Debug("book cached", "book_id", book.ID, "title", book.Title)
	return nil
}

// UpdateManualBook applies a targeted field update by ID. Only manual books
// are editable; resolver-sourced records stay immutable.
func (s *Store) UpdateManualBook(ctx context.Context, book *domain.Book) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE books SET title = ?, description = ?, genres = ?, cover_ref = ?
		WHERE id = ? AND source = ?`,
		book.Title,
		book.Description,
		joinGenres(book.Genres),
		book.CoverRef,
		book.ID,
		string(domain.SourceManual),
	)
	if err != nil {
		return wrapErr("update manual book", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return wrapErr("update manual book", err)
	}
	if rows == 0 {
		// Either the book is missing or it is not manual.
		if _, getErr := s.GetBook(ctx, book.ID); getErr != nil {
			return getErr
		}
		return apperrors.Validation("only manually entered books can be edited")
	}
	return nil
}

// GetBook fetches a book by ID.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ?`, id)

	b, err := scanBook(row)
	if err != nil {
		return nil, wrapErr("get book", err)
	}
	return b, nil
}

// FindBookByTitle returns at most one book whose title contains the
// substring, case-insensitive, first by storage order. Ambiguity is
// accepted; no ranking.
func (s *Store) FindBookByTitle(ctx context.Context, substring string) (*domain.Book, error) {
	pattern := "%" + strings.TrimSpace(substring) + "%"

	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE title LIKE ? COLLATE NOCASE ORDER BY rowid LIMIT 1`,
		pattern)

	b, err := scanBook(row)
	if err != nil {
		return nil, wrapErr("find book by title", err)
	}
	return b, nil
}

// RandomBookByGenre picks one cached book at random whose genre list
// contains the substring, excluding the given book IDs. Repeated calls may
// return different books; the variety is deliberate.
func (s *Store) RandomBookByGenre(ctx context.Context, substring string, exclude []string) (*domain.Book, error) {
	pattern := "%" + strings.TrimSpace(substring) + "%"

	query := `SELECT ` + bookColumns + ` FROM books WHERE genres LIKE ? COLLATE NOCASE`
	args := []any{pattern}
	if len(exclude) > 0 {
		query += ` AND id NOT IN (?` + strings.Repeat(",?", len(exclude)-1) + `)`
		for _, id := range exclude {
			args = append(args, id)
		}
	}
	query += ` ORDER BY RANDOM() LIMIT 1`

	row := s.db.QueryRowContext(ctx, query, args...)
	b, err := scanBook(row)
	if err != nil {
		return nil, wrapErr("random book by genre", err)
	}
	return b, nil
}

// AllBooks returns every cached book in storage order. Used by backups.
func (s *Store) AllBooks(ctx context.Context) ([]domain.Book, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books ORDER BY rowid`)
	if err != nil {
		return nil, wrapErr("all books", err)
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, wrapErr("all books", err)
		}
		books = append(books, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("all books", err)
	}
	return books, nil
}

// countRow is a small helper for COUNT(*) queries.
func (s *Store) countRow(ctx context.Context, query string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Counts returns relation sizes for the ops stats endpoint.
func (s *Store) Counts(ctx context.Context) (store.Counts, error) {
	var c store.Counts
	var err error

	if c.Books, err = s.countRow(ctx, `SELECT COUNT(*) FROM books`); err != nil {
		return c, wrapErr("count books", err)
	}
	if c.Users, err = s.countRow(ctx, `SELECT COUNT(*) FROM users`); err != nil {
		return c, wrapErr("count users", err)
	}
	if c.Read, err = s.countRow(ctx, `SELECT COUNT(*) FROM read_entries`); err != nil {
		return c, wrapErr("count read entries", err)
	}
	if c.Favorites, err = s.countRow(ctx, `SELECT COUNT(*) FROM favorite_entries`); err != nil {
		return c, wrapErr("count favorite entries", err)
	}
	return c, nil
}
