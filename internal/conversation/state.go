// Package conversation implements the per-user finite state machine that
// tracks what a user is in the middle of doing across chat turns: searches,
// manual book entry, list selections, ratings, and admin flows.
package conversation

import (
	"sync"
	"time"

	"github.com/shelftalk/shelftalk-bot/internal/domain"
	"github.com/shelftalk/shelftalk-bot/internal/service"
)

// Tag names the input a user's conversation is currently awaiting.
type Tag string

const (
	TagIdle Tag = "idle"

	TagAwaitTitle  Tag = "await_title"
	TagAwaitGenre  Tag = "await_genre"
	TagAwaitAuthor Tag = "await_author"

	TagAwaitManualTitle       Tag = "await_manual_title"
	TagAwaitManualDescription Tag = "await_manual_description"
	TagAwaitManualCover       Tag = "await_manual_cover"

	TagAwaitListTarget Tag = "await_list_target"
	TagAwaitRating     Tag = "await_rating"

	TagAdminAwaitBroadcast   Tag = "admin_await_broadcast"
	TagAdminAwaitBanTarget   Tag = "admin_await_ban_target"
	TagAdminAwaitBanDuration Tag = "admin_await_ban_duration"
	TagAdminAwaitBanReason   Tag = "admin_await_ban_reason"
	TagAdminAwaitUnbanTarget Tag = "admin_await_unban_target"
	TagAdminAwaitResetTarget Tag = "admin_await_reset_target"
)

// ManualDraft accumulates the manual-entry flow's answers. When EditBookID
// is set the flow edits an existing manual book instead of creating one.
type ManualDraft struct {
	EditBookID  string
	Target      domain.ListKind
	Title       string
	Description string
	CoverRef    string
}

// BanDraft accumulates the chained admin ban flow.
type BanDraft struct {
	TargetID int64
	Duration time.Duration
}

// State is one user's current conversation state: a tag plus the scratch
// values the awaited input will be combined with. A user has exactly one
// State; starting a new flow overwrites it without cleanup.
type State struct {
	Tag Tag

	// Draft is set during the manual-entry flow.
	Draft ManualDraft

	// ListKind and ListOp qualify a pending list-target selection.
	ListKind domain.ListKind
	ListOp   string // "rate", "move", "delete", "edit"

	// Snapshot holds the ordered list the user was shown, captured when the
	// selection prompt was issued. Numeric and title selection resolve
	// against it, not against a live re-query.
	Snapshot []service.TargetRef

	// RatingBookID is the book awaiting a 1-5 rating.
	RatingBookID string

	// Ban is set during the chained admin ban flow.
	Ban BanDraft
}

// Store keeps the per-user conversation states. Idle is the default; a
// missing entry and an explicit idle state are indistinguishable.
type Store struct {
	mu     sync.Mutex
	states map[int64]State
}

// NewStore creates an empty state store.
func NewStore() *Store {
	return &Store{states: make(map[int64]State)}
}

// Get returns the user's current state, idle if none.
func (s *Store) Get(userID int64) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[userID]
	if !ok {
		return State{Tag: TagIdle}
	}
	return st
}

// Set overwrites the user's state. Any unfinished prior flow is abandoned.
func (s *Store) Set(userID int64, st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[userID] = st
}

// Reset returns the user to idle, discarding all scratch state.
func (s *Store) Reset(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, userID)
}
