package conversation

import (
	"context"
	"strconv"
	"strings"

	"github.com/shelftalk/shelftalk-bot/internal/chat"
	"github.com/shelftalk/shelftalk-bot/internal/domain"
	apperrors "github.com/shelftalk/shelftalk-bot/internal/errors"
	"github.com/shelftalk/shelftalk-bot/internal/lookup"
	"github.com/shelftalk/shelftalk-bot/internal/service"
)

// handleSearchInput resolves the free-text query the search flow was
// waiting for. Success presents the book with an add-to-list choice;
// not-found is terminal and returns the user to idle.
func (h *Handler) handleSearchInput(ctx context.Context, ev chat.Event, state State) (chat.Reply, error) {
	if ev.Kind != chat.KindText || strings.TrimSpace(ev.Text) == "" {
		return chat.Reply{Text: "Just send me plain text."}, nil
	}

	var mode lookup.Mode
	switch state.Tag {
	case TagAwaitGenre:
		mode = lookup.ModeGenre
	case TagAwaitAuthor:
		mode = lookup.ModeAuthor
	default:
		mode = lookup.ModeTitle
	}

	book, err := h.resolver.Resolve(ctx, ev.UserID, strings.TrimSpace(ev.Text), mode)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			h.states.Reset(ev.UserID)
			return mainMenuReply(msgNotFound), nil
		}
		return chat.Reply{}, err
	}

	h.states.Reset(ev.UserID)
	intro := "Here's what I found:"
	if mode == lookup.ModeGenre {
		intro = "How about this one?"
	}
	return bookCard(book, intro), nil
}

// handleManualInput walks the three-step manual entry (or edit) flow:
// title, description, then cover photo or the "none" sentinel.
func (h *Handler) handleManualInput(ctx context.Context, ev chat.Event, state State) (chat.Reply, error) {
	switch state.Tag {
	case TagAwaitManualTitle:
		if ev.Kind != chat.KindText || strings.TrimSpace(ev.Text) == "" {
			return chat.Reply{Text: "I need a title. What is it?"}, nil
		}
		state.Draft.Title = strings.TrimSpace(ev.Text)
		state.Tag = TagAwaitManualDescription
		h.states.Set(ev.UserID, state)
		if state.Draft.EditBookID != "" {
			return chat.Reply{Text: "Got it. Now a description (\"none\" keeps the current one)."}, nil
		}
		return chat.Reply{Text: "Got it. Now a short description (or \"none\")."}, nil

	case TagAwaitManualDescription:
		if ev.Kind != chat.KindText {
			return chat.Reply{Text: "Text only for the description, please."}, nil
		}
		text := strings.TrimSpace(ev.Text)
		// In an edit the draft carries the current value, so "none" keeps
		// it; in a fresh entry it leaves the description empty.
		if !isNoneSentinel(text) {
			state.Draft.Description = text
		}
		state.Tag = TagAwaitManualCover
		h.states.Set(ev.UserID, state)
		return chat.Reply{Text: coverPrompt(state.Draft)}, nil

	case TagAwaitManualCover:
		switch {
		case ev.Kind == chat.KindPhoto && ev.PhotoRef != "":
			state.Draft.CoverRef = ev.PhotoRef
		case ev.Kind == chat.KindText && isNoneSentinel(ev.Text):
			// keep the draft's cover: empty for a fresh entry, the
			// current one for an edit
		default:
			return chat.Reply{Text: coverPrompt(state.Draft)}, nil
		}
		return h.finishManualFlow(ctx, ev, state.Draft)
	}

	return mainMenuReply(msgUseMenu), nil
}

func (h *Handler) finishManualFlow(ctx context.Context, ev chat.Event, draft ManualDraft) (chat.Reply, error) {
	req := service.ManualBookRequest{
		Title:       draft.Title,
		Description: draft.Description,
		CoverRef:    draft.CoverRef,
	}

	if draft.EditBookID != "" {
		book, err := h.library.EditManualBook(ctx, draft.EditBookID, req)
		if err != nil {
			return chat.Reply{}, err
		}
		h.states.Reset(ev.UserID)
		return bookCard(book, "Updated."), nil
	}

	book, err := h.library.CreateManualBook(ctx, ev.UserID, req, draft.Target)
	if err != nil {
		return chat.Reply{}, err
	}
	h.states.Reset(ev.UserID)
	return bookCard(book, "Saved to your "+draft.Target.Label()+" list."), nil
}

// handleListTarget resolves the user's number-or-title answer against the
// snapshot taken when the prompt was issued, then applies the pending
// operation. A selection that matches nothing is terminal.
func (h *Handler) handleListTarget(ctx context.Context, ev chat.Event, state State) (chat.Reply, error) {
	if ev.Kind != chat.KindText {
		return chat.Reply{Text: msgTargetPrompt}, nil
	}

	bookID, err := service.ResolveTarget(state.Snapshot, ev.Text)
	if err != nil {
		h.states.Reset(ev.UserID)
		return mainMenuReply("That's not in the list. Back to the menu."), nil
	}

	switch state.ListOp {
	case "rate":
		h.states.Set(ev.UserID, State{Tag: TagAwaitRating, RatingBookID: bookID})
		return chat.Reply{Text: msgRatingPrompt}, nil
	case "move":
		if err := h.library.MoveBetweenLists(ctx, ev.UserID, bookID, state.ListKind); err != nil {
			return chat.Reply{}, err
		}
		h.states.Reset(ev.UserID)
		return mainMenuReply("Moved to your " + state.ListKind.Other().Label() + " list."), nil
	case "delete":
		if err := h.library.RemoveFromList(ctx, ev.UserID, bookID, state.ListKind); err != nil {
			return chat.Reply{}, err
		}
		h.states.Reset(ev.UserID)
		return mainMenuReply("Removed from your " + state.ListKind.Label() + " list."), nil
	case "edit":
		book, err := h.library.GetBook(ctx, bookID)
		if err != nil {
			return chat.Reply{}, err
		}
		if !book.IsManual() {
			h.states.Reset(ev.UserID)
			return mainMenuReply("Only hand-entered books can be edited."), nil
		}
		h.states.Set(ev.UserID, State{
			Tag:   TagAwaitManualTitle,
			Draft: editDraft(book),
		})
		return chat.Reply{Text: "Editing. What's the new title?"}, nil
	}

	h.states.Reset(ev.UserID)
	return mainMenuReply(msgUseMenu), nil
}

// handleRating expects an integer 1-5; anything else reprompts in-state.
func (h *Handler) handleRating(ctx context.Context, ev chat.Event, state State) (chat.Reply, error) {
	if ev.Kind != chat.KindText {
		return chat.Reply{Text: msgRatingInvalid}, nil
	}

	rating, err := strconv.Atoi(strings.TrimSpace(ev.Text))
	if err != nil || rating < 1 || rating > 5 {
		return chat.Reply{Text: msgRatingInvalid}, nil
	}

	if err := h.library.RateBook(ctx, ev.UserID, state.RatingBookID, rating); err != nil {
		return chat.Reply{}, err
	}
	h.states.Reset(ev.UserID)
	return mainMenuReply("Saved, thanks!"), nil
}

// editDraft seeds the manual flow with the book's current fields, so a
// "none" reply keeps a value instead of wiping it.
func editDraft(book *domain.Book) ManualDraft {
	return ManualDraft{
		EditBookID:  book.ID,
		Description: book.Description,
		CoverRef:    book.CoverRef,
	}
}

func coverPrompt(draft ManualDraft) string {
	if draft.EditBookID != "" {
		return msgCoverPromptEdit
	}
	return msgCoverPrompt
}

func isNoneSentinel(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "none", "skip", "-", "no":
		return true
	}
	return false
}
