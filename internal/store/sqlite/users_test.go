package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/shelftalk/shelftalk-bot/internal/domain"
	apperrors "github.com/shelftalk/shelftalk-bot/internal/errors"
)

func TestEnsureUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, err := s.EnsureUser(ctx, 100, "alice")
	if err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	if u.UserID != 100 || u.DisplayName != "alice" {
		t.Errorf("unexpected profile: %+v", u)
	}
	if u.PolicyAccepted {
		t.Error("new profile should not have policy accepted")
	}

	// Second call refreshes the display name, keeps the row.
	u, err = s.EnsureUser(ctx, 100, "alice-renamed")
	if err != nil {
		t.Fatalf("EnsureUser again: %v", err)
	}
	if u.DisplayName != "alice-renamed" {
		t.Errorf("DisplayName: got %q", u.DisplayName)
	}

	ids, err := s.ListUserIDs(ctx)
	if err != nil {
		t.Fatalf("ListUserIDs: %v", err)
	}
	if len(ids) != 1 {
		t.Errorf("expected one user, got %v", ids)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetUser(context.Background(), 999)
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPolicyAccepted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.EnsureUser(ctx, 101, "bob"); err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	if err := s.SetPolicyAccepted(ctx, 101, true); err != nil {
		t.Fatalf("SetPolicyAccepted: %v", err)
	}

	u, err := s.GetUser(ctx, 101)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if !u.PolicyAccepted {
		t.Error("policy acceptance not persisted")
	}
}

func TestBanAndUnban(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.EnsureUser(ctx, 102, "mallory"); err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}

	until := time.Now().Add(24 * time.Hour)
	if err := s.BanUser(ctx, 102, until, "spam"); err != nil {
		t.Fatalf("BanUser: %v", err)
	}

	u, err := s.GetUser(ctx, 102)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if !u.IsBanned(time.Now()) {
		t.Error("user should be banned")
	}
	if u.BanReason != "spam" {
		t.Errorf("BanReason: got %q", u.BanReason)
	}
	// banned_until should round-trip to roughly a day out.
	if d := time.Until(*u.BannedUntil); d < 23*time.Hour || d > 25*time.Hour {
		t.Errorf("banned_until not ~86400s in the future: %v", d)
	}

	if err := s.UnbanUser(ctx, 102); err != nil {
		t.Fatalf("UnbanUser: %v", err)
	}
	u, err = s.GetUser(ctx, 102)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if u.IsBanned(time.Now()) || u.BanReason != "" {
		t.Errorf("ban not cleared: %+v", u)
	}
}

func TestBumpRequestWindow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.EnsureUser(ctx, 103, "carol"); err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}

	now := time.Now()
	window := time.Minute

	for want := 1; want <= 3; want++ {
		got, err := s.BumpRequestWindow(ctx, 103, now, window)
		if err != nil {
			t.Fatalf("BumpRequestWindow: %v", err)
		}
		if got != want {
			t.Errorf("count: got %d, want %d", got, want)
		}
	}

	// A request past the window resets the counter.
	got, err := s.BumpRequestWindow(ctx, 103, now.Add(2*time.Minute), window)
	if err != nil {
		t.Fatalf("BumpRequestWindow after window: %v", err)
	}
	if got != 1 {
		t.Errorf("count after window: got %d, want 1", got)
	}
}

func TestResetUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.EnsureUser(ctx, 104, "dave"); err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	if err := s.UpsertBook(ctx, makeTestBook("ol-r1", "Kept Book")); err != nil {
		t.Fatalf("UpsertBook: %v", err)
	}
	if err := s.AddToList(ctx, 104, "ol-r1", domain.ListRead); err != nil {
		t.Fatalf("AddToList: %v", err)
	}
	if err := s.AddToList(ctx, 104, "ol-r1", domain.ListFavorites); err != nil {
		t.Fatalf("AddToList: %v", err)
	}

	if err := s.ResetUser(ctx, 104); err != nil {
		t.Fatalf("ResetUser: %v", err)
	}

	for _, kind := range []domain.ListKind{domain.ListRead, domain.ListFavorites} {
		items, err := s.ListForUser(ctx, 104, kind)
		if err != nil {
			t.Fatalf("ListForUser(%s): %v", kind, err)
		}
		if len(items) != 0 {
			t.Errorf("%s list should be empty after reset", kind)
		}
	}

	// Profile and cached books survive the reset.
	if _, err := s.GetUser(ctx, 104); err != nil {
		t.Errorf("profile should survive reset: %v", err)
	}
	if _, err := s.GetBook(ctx, "ol-r1"); err != nil {
		t.Errorf("book should survive reset: %v", err)
	}
}
