package conversation

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelftalk/shelftalk-bot/internal/chat"
	"github.com/shelftalk/shelftalk-bot/internal/domain"
	"github.com/shelftalk/shelftalk-bot/internal/lookup"
	"github.com/shelftalk/shelftalk-bot/internal/service"
	"github.com/shelftalk/shelftalk-bot/internal/store"
	"github.com/shelftalk/shelftalk-bot/internal/store/sqlite"
)

const testAdminID = int64(1000)

// stubLookup stands in for the external lookup service.
type stubLookup struct {
	calls   int
	results []lookup.Result
	err     error
}

func (s *stubLookup) Search(_ context.Context, _ string, _ lookup.Mode) ([]lookup.Result, error) {
	s.calls++
	return s.results, s.err
}

// fixture wires a full handler over a real SQLite store, a recording
// sender, and a stubbed lookup client.
type fixture struct {
	handler *Handler
	store   store.Store
	sender  *chat.LocalSender
	lookup  *stubLookup
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	lk := &stubLookup{}
	sender := chat.NewLocalSender()
	handler := NewHandler(
		service.NewProfileService(st, logger, 1000),
		service.NewResolver(st, lk, logger),
		service.NewLibraryService(st, logger),
		service.NewListView(st, logger, 10),
		service.NewAdminService(st, logger, testAdminID),
		sender,
		logger,
	)
	return &fixture{handler: handler, store: st, sender: sender, lookup: lk}
}

// send handles one event and returns the last message the user received.
func (f *fixture) send(t *testing.T, ev chat.Event) chat.LocalMessage {
	t.Helper()
	r := f.sender.Responder(ev.UserID)
	require.NoError(t, f.handler.Handle(context.Background(), ev, r))
	return r.Last()
}

func (f *fixture) command(t *testing.T, userID int64, cmd string) chat.LocalMessage {
	return f.send(t, chat.Event{UserID: userID, DisplayName: "user", Kind: chat.KindCommand, Command: cmd})
}

func (f *fixture) action(t *testing.T, userID int64, action string) chat.LocalMessage {
	return f.send(t, chat.Event{UserID: userID, DisplayName: "user", Kind: chat.KindAction, Action: action})
}

func (f *fixture) text(t *testing.T, userID int64, text string) chat.LocalMessage {
	return f.send(t, chat.Event{UserID: userID, DisplayName: "user", Kind: chat.KindText, Text: text})
}

func (f *fixture) photo(t *testing.T, userID int64, ref string) chat.LocalMessage {
	return f.send(t, chat.Event{UserID: userID, DisplayName: "user", Kind: chat.KindPhoto, PhotoRef: ref})
}

// onboard runs /start and policy acceptance for a user.
func (f *fixture) onboard(t *testing.T, userID int64) {
	t.Helper()
	f.command(t, userID, "start")
	f.action(t, userID, actionAcceptPolicy)
}

func (f *fixture) seedBook(t *testing.T, id, title string, genres ...string) {
	t.Helper()
	book := &domain.Book{ID: id, Title: title, Genres: genres, Source: domain.SourceLookup}
	book.Normalize()
	require.NoError(t, f.store.UpsertBook(context.Background(), book))
}

func hasAction(menu []chat.Action, id string) bool {
	for _, a := range menu {
		if a.ID == id {
			return true
		}
	}
	return false
}

func TestPolicyGate(t *testing.T) {
	f := newFixture(t)

	// Any message before acceptance gets the policy prompt, not the flow.
	msg := f.text(t, 1, "hello")
	assert.Equal(t, msgPolicyPrompt, msg.Text)
	assert.True(t, hasAction(msg.Menu, actionAcceptPolicy))

	msg = f.command(t, 1, "start")
	assert.Equal(t, msgPolicyPrompt, msg.Text)

	msg = f.action(t, 1, actionAcceptPolicy)
	assert.Contains(t, msg.Text, "Welcome")

	// After acceptance the menu works.
	msg = f.text(t, 1, "hello")
	assert.Equal(t, msgUseMenu, msg.Text)
	assert.True(t, hasAction(msg.Menu, actionSearchTitle))
}

func TestStartAfterAcceptance(t *testing.T) {
	f := newFixture(t)
	f.onboard(t, 1)

	msg := f.command(t, 1, "start")
	assert.Contains(t, msg.Text, "Hello again")
	assert.True(t, hasAction(msg.Menu, actionSearchGenre))
}

func TestGenreScenario(t *testing.T) {
	f := newFixture(t)
	f.onboard(t, 1)
	f.seedBook(t, "works-OLX", "A Wizard of Earthsea", "Fantasy")

	msg := f.action(t, 1, actionSearchGenre)
	assert.Contains(t, msg.Text, "genre")

	msg = f.text(t, 1, "Fantasy")
	assert.Contains(t, msg.Text, "A Wizard of Earthsea")
	assert.Equal(t, 0, f.lookup.calls, "cached genre hit must not call the lookup")
	addID := actionAddPrefix + string(domain.ListRead) + ":works-OLX"
	require.True(t, hasAction(msg.Menu, addID))

	msg = f.action(t, 1, addID)
	assert.Contains(t, msg.Text, "Added")

	items, err := f.store.ListForUser(context.Background(), 1, domain.ListRead)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "works-OLX", items[0].Book.ID)
	assert.Nil(t, items[0].Rating)
}

func TestSearchNotFoundIsTerminal(t *testing.T) {
	f := newFixture(t)
	f.onboard(t, 1)

	f.action(t, 1, actionSearchTitle)
	msg := f.text(t, 1, "no such book")
	assert.Equal(t, msgNotFound, msg.Text)

	// Back to idle: plain text now gets the menu hint, not a re-search.
	msg = f.text(t, 1, "still nothing")
	assert.Equal(t, msgUseMenu, msg.Text)
	assert.Equal(t, 1, f.lookup.calls)
}

func TestSearchViaNetwork(t *testing.T) {
	f := newFixture(t)
	f.onboard(t, 1)
	f.lookup.results = []lookup.Result{{Key: "works-OLN", Title: "Neuromancer"}}

	f.action(t, 1, actionSearchTitle)
	msg := f.text(t, 1, "neuromancer")
	assert.Contains(t, msg.Text, "Neuromancer")
	assert.Equal(t, 1, f.lookup.calls)

	// Cached now.
	_, err := f.store.GetBook(context.Background(), "works-OLN")
	assert.NoError(t, err)
}

func TestMenuActionCancelsFlow(t *testing.T) {
	f := newFixture(t)
	f.onboard(t, 1)
	f.seedBook(t, "works-OLH", "The Hobbit", "Fantasy")

	// Start manual entry, then abandon it via a search action.
	f.action(t, 1, actionManualPrefix+string(domain.ListRead))
	f.text(t, 1, "Half-entered title")
	f.action(t, 1, actionSearchTitle)

	msg := f.text(t, 1, "hobbit")
	assert.Contains(t, msg.Text, "The Hobbit")

	// The abandoned draft never became a book.
	items, err := f.store.ListForUser(context.Background(), 1, domain.ListRead)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestListPagination(t *testing.T) {
	f := newFixture(t)
	f.onboard(t, 1)
	ctx := context.Background()
	for i := 1; i <= 23; i++ {
		id := string(rune('a'+i/10)) + string(rune('0'+i%10))
		f.seedBook(t, id, "Book "+id)
		require.NoError(t, f.store.AddToList(ctx, 1, id, domain.ListRead))
	}

	msg := f.action(t, 1, actionListPrefix+string(domain.ListRead))
	assert.Contains(t, msg.Text, "page 1 of 3")
	assert.True(t, hasAction(msg.Menu, actionPagePrefix+string(domain.ListRead)+":2"))

	msg = f.action(t, 1, actionPagePrefix+string(domain.ListRead)+":2")
	assert.Contains(t, msg.Text, "page 2 of 3")
	assert.Contains(t, msg.Text, "11. ")

	// Out-of-range page clamps.
	msg = f.action(t, 1, actionPagePrefix+string(domain.ListRead)+":99")
	assert.Contains(t, msg.Text, "page 3 of 3")
}

func TestEmptyList(t *testing.T) {
	f := newFixture(t)
	f.onboard(t, 1)

	msg := f.action(t, 1, actionListPrefix+string(domain.ListFavorites))
	assert.Contains(t, msg.Text, "empty")
}

func TestTerminalStorageFailureResetsState(t *testing.T) {
	f := newFixture(t)
	f.onboard(t, 1)
	f.seedBook(t, "b1", "The Hobbit")

	f.action(t, 1, actionRatePrefix+"b1")

	// Kill the store mid-flow: the rating write now fails.
	require.NoError(t, f.store.Close())

	msg := f.text(t, 1, "5")
	assert.Equal(t, msgStorageError, msg.Text)
	assert.Equal(t, TagIdle, f.handler.states.Get(1).Tag)
}

func TestBanCoversStartAndAcceptance(t *testing.T) {
	f := newFixture(t)
	f.onboard(t, 1)
	ctx := context.Background()
	require.NoError(t, f.store.BanUser(ctx, 1, time.Now().Add(24*time.Hour), "spam"))

	msg := f.text(t, 1, "hello")
	assert.Contains(t, msg.Text, "banned")
	assert.Contains(t, msg.Text, "spam")

	// Neither /start nor policy acceptance slips past the ban.
	msg = f.command(t, 1, "start")
	assert.Contains(t, msg.Text, "banned")
	assert.False(t, hasAction(msg.Menu, actionSearchTitle))

	msg = f.action(t, 1, actionAcceptPolicy)
	assert.Contains(t, msg.Text, "banned")

	// A banned user who never accepted the policy stays unaccepted.
	_, err := f.store.EnsureUser(ctx, 2, "newcomer")
	require.NoError(t, err)
	require.NoError(t, f.store.BanUser(ctx, 2, time.Now().Add(time.Hour), "ban evasion"))
	msg = f.action(t, 2, actionAcceptPolicy)
	assert.Contains(t, msg.Text, "banned")
	profile, err := f.store.GetUser(ctx, 2)
	require.NoError(t, err)
	assert.False(t, profile.PolicyAccepted)
}
