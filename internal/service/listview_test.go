package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelftalk/shelftalk-bot/internal/domain"
	apperrors "github.com/shelftalk/shelftalk-bot/internal/errors"
)

func seedList(t *testing.T, v *ListView, userID int64, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("b%02d", i)
		seedBook(t, v.store, id, fmt.Sprintf("Book %02d", i))
		require.NoError(t, v.store.AddToList(ctx, userID, id, domain.ListRead))
	}
}

func TestRenderPage_Continuity(t *testing.T) {
	v := NewListView(newTestStore(t), testLogger(), 10)
	seedList(t, v, 1, 23)
	ctx := context.Background()

	page1, err := v.RenderPage(ctx, 1, domain.ListRead, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, page1.TotalPages)
	assert.Equal(t, 23, page1.Total)
	require.Len(t, page1.Items, 10)
	assert.Equal(t, 1, page1.Items[0].Index)
	assert.Equal(t, 10, page1.Items[9].Index)
	assert.False(t, page1.HasPrev())
	assert.True(t, page1.HasNext())

	page2, err := v.RenderPage(ctx, 1, domain.ListRead, 2)
	require.NoError(t, err)
	require.Len(t, page2.Items, 10)
	assert.Equal(t, 11, page2.Items[0].Index)
	assert.Equal(t, 20, page2.Items[9].Index)

	page3, err := v.RenderPage(ctx, 1, domain.ListRead, 3)
	require.NoError(t, err)
	require.Len(t, page3.Items, 3)
	assert.Equal(t, 21, page3.Items[0].Index)
	assert.Equal(t, 23, page3.Items[2].Index)
	assert.False(t, page3.HasNext())
}

func TestRenderPage_ClampsOutOfRange(t *testing.T) {
	v := NewListView(newTestStore(t), testLogger(), 10)
	seedList(t, v, 1, 23)
	ctx := context.Background()

	high, err := v.RenderPage(ctx, 1, domain.ListRead, 99)
	require.NoError(t, err)
	assert.Equal(t, 3, high.Number)

	low, err := v.RenderPage(ctx, 1, domain.ListRead, -5)
	require.NoError(t, err)
	assert.Equal(t, 1, low.Number)
}

func TestRenderPage_EmptyList(t *testing.T) {
	v := NewListView(newTestStore(t), testLogger(), 10)

	page, err := v.RenderPage(context.Background(), 1, domain.ListFavorites, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 1, page.TotalPages)
	assert.Empty(t, page.Items)
	assert.Empty(t, page.Snapshot)
}

func TestRenderPage_SnapshotCoversWholeList(t *testing.T) {
	v := NewListView(newTestStore(t), testLogger(), 10)
	seedList(t, v, 1, 23)

	page, err := v.RenderPage(context.Background(), 1, domain.ListRead, 2)
	require.NoError(t, err)
	require.Len(t, page.Snapshot, 23)
	assert.Equal(t, "b01", page.Snapshot[0].BookID)
	assert.Equal(t, "b23", page.Snapshot[22].BookID)
}

func TestResolveTarget(t *testing.T) {
	snapshot := []TargetRef{
		{BookID: "b1", Title: "The Hobbit"},
		{BookID: "b2", Title: "Dune"},
		{BookID: "b3", Title: "A Wizard of Earthsea"},
	}

	id, err := ResolveTarget(snapshot, "2")
	require.NoError(t, err)
	assert.Equal(t, "b2", id)

	id, err = ResolveTarget(snapshot, "wizard")
	require.NoError(t, err)
	assert.Equal(t, "b3", id)

	_, err = ResolveTarget(snapshot, "4")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = ResolveTarget(snapshot, "moby dick")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = ResolveTarget(snapshot, "  ")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
