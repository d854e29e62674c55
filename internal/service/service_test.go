package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shelftalk/shelftalk-bot/internal/domain"
	"github.com/shelftalk/shelftalk-bot/internal/store"
	"github.com/shelftalk/shelftalk-bot/internal/store/sqlite"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestStore opens a real SQLite store in a temp dir. The services are
// thin enough that exercising them against the actual store beats mocking
// the whole persistence contract.
func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func seedBook(t *testing.T, st store.Store, id, title string, genres ...string) *domain.Book {
	t.Helper()
	book := &domain.Book{
		ID:     id,
		Title:  title,
		Genres: genres,
		Source: domain.SourceLookup,
	}
	book.Normalize()
	require.NoError(t, st.UpsertBook(context.Background(), book))
	return book
}

func seedUser(t *testing.T, st store.Store, userID int64, name string) {
	t.Helper()
	_, err := st.EnsureUser(context.Background(), userID, name)
	require.NoError(t, err)
}
