package conversation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelftalk/shelftalk-bot/internal/domain"
)

func TestAdminCommandRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	f.onboard(t, 1)

	msg := f.command(t, 1, "admin")
	assert.Equal(t, "You can't do that.", msg.Text)

	f.onboard(t, testAdminID)
	msg = f.command(t, testAdminID, "admin")
	assert.Contains(t, msg.Text, "Admin")
	assert.True(t, hasAction(msg.Menu, actionAdminBan))
}

func TestBanFlow(t *testing.T) {
	f := newFixture(t)
	f.onboard(t, 2)
	f.onboard(t, testAdminID)

	f.command(t, testAdminID, "admin")
	msg := f.action(t, testAdminID, actionAdminBan)
	assert.Contains(t, msg.Text, "user ID")

	// Malformed target reprompts in-state.
	msg = f.text(t, testAdminID, "bob")
	assert.Contains(t, msg.Text, "not a user ID")

	msg = f.text(t, testAdminID, "2")
	assert.Contains(t, msg.Text, "how long")

	msg = f.text(t, testAdminID, "soon")
	assert.Contains(t, msg.Text, "can't parse")

	msg = f.text(t, testAdminID, "1d")
	assert.Contains(t, msg.Text, "reason")

	msg = f.text(t, testAdminID, "spam")
	assert.Contains(t, msg.Text, "banned")

	// The banned user is rejected with the reason until the ban elapses.
	msg = f.text(t, 2, "hello")
	assert.Contains(t, msg.Text, "banned")
	assert.Contains(t, msg.Text, "spam")

	profile, err := f.store.GetUser(context.Background(), 2)
	require.NoError(t, err)
	require.NotNil(t, profile.BannedUntil)
}

func TestBanUnknownUserCancels(t *testing.T) {
	f := newFixture(t)
	f.onboard(t, testAdminID)

	f.action(t, testAdminID, actionAdminBan)
	f.text(t, testAdminID, "404")
	f.text(t, testAdminID, "1d")
	msg := f.text(t, testAdminID, "ghost")
	assert.Contains(t, msg.Text, "No such user")
	assert.Equal(t, TagIdle, f.handler.states.Get(testAdminID).Tag)
}

func TestUnbanFlow(t *testing.T) {
	f := newFixture(t)
	f.onboard(t, 2)
	f.onboard(t, testAdminID)

	f.action(t, testAdminID, actionAdminBan)
	f.text(t, testAdminID, "2")
	f.text(t, testAdminID, "1d")
	f.text(t, testAdminID, "spam")

	f.action(t, testAdminID, actionAdminUnban)
	msg := f.text(t, testAdminID, "2")
	assert.Contains(t, msg.Text, "unbanned")

	msg = f.text(t, 2, "hello again")
	assert.Equal(t, msgUseMenu, msg.Text)
}

func TestResetFlow(t *testing.T) {
	f := newFixture(t)
	f.onboard(t, 2)
	f.onboard(t, testAdminID)
	ctx := context.Background()

	f.seedBook(t, "b1", "The Hobbit")
	require.NoError(t, f.store.AddToList(ctx, 2, "b1", domain.ListRead))

	f.action(t, testAdminID, actionAdminReset)
	msg := f.text(t, testAdminID, "2")
	assert.Contains(t, msg.Text, "reset")

	items, err := f.store.ListForUser(ctx, 2, domain.ListRead)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestBroadcastFlow(t *testing.T) {
	f := newFixture(t)
	f.onboard(t, 2)
	f.onboard(t, 3)
	f.onboard(t, testAdminID)

	f.action(t, testAdminID, actionAdminBroadcast)
	msg := f.text(t, testAdminID, "maintenance tonight")
	assert.Contains(t, msg.Text, "Broadcast sent to 3 users")

	assert.Equal(t, "maintenance tonight", f.sender.Responder(2).Last().Text)
	assert.Equal(t, "maintenance tonight", f.sender.Responder(3).Last().Text)
}

func TestAdminStats(t *testing.T) {
	f := newFixture(t)
	f.onboard(t, testAdminID)
	f.seedBook(t, "b1", "The Hobbit")

	msg := f.action(t, testAdminID, actionAdminStats)
	assert.Contains(t, msg.Text, "Books: 1")
	assert.Contains(t, msg.Text, "Users: 1")
}

func TestNonAdminActionRejected(t *testing.T) {
	f := newFixture(t)
	f.onboard(t, 1)

	msg := f.action(t, 1, actionAdminBroadcast)
	assert.Equal(t, "You can't do that.", msg.Text)
	assert.Equal(t, TagIdle, f.handler.states.Get(1).Tag)
}
