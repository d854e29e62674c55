package conversation

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shelftalk/shelftalk-bot/internal/chat"
	"github.com/shelftalk/shelftalk-bot/internal/lookup"
)

// handleAction starts or continues a flow from a menu button press.
func (h *Handler) handleAction(ctx context.Context, ev chat.Event) (chat.Reply, error) {
	parts := splitAction(ev.Action)

	switch parts[0] {
	case "search":
		return h.startSearch(ev, parts)
	case "manual":
		return h.startManualEntry(ev, parts)
	case "list":
		return h.showList(ctx, ev, parts, 1)
	case "page":
		if len(parts) != 3 {
			break
		}
		page, err := strconv.Atoi(parts[2])
		if err != nil {
			break
		}
		return h.showList(ctx, ev, parts[:2], page)
	case "pick":
		return h.startListPick(ctx, ev, parts)
	case "item":
		return h.showListItem(ctx, ev, parts)
	case "add":
		return h.addToList(ctx, ev, parts)
	case "move":
		return h.moveItem(ctx, ev, parts)
	case "del":
		return h.deleteItem(ctx, ev, parts)
	case "rate":
		return h.startRating(ev, parts)
	case "edit":
		return h.startManualEdit(ctx, ev, parts)
	case "admin":
		return h.handleAdminAction(ctx, ev, parts)
	}

	h.logger.Warn("unknown action", "user_id", ev.UserID, "action", ev.Action)
	h.states.Reset(ev.UserID)
	return mainMenuReply(msgUseMenu), nil
}

func (h *Handler) startSearch(ev chat.Event, parts []string) (chat.Reply, error) {
	if len(parts) != 2 {
		return mainMenuReply(msgUseMenu), nil
	}

	var (
		tag    Tag
		prompt string
	)
	switch lookup.Mode(parts[1]) {
	case lookup.ModeTitle:
		tag, prompt = TagAwaitTitle, "What's the title?"
	case lookup.ModeGenre:
		tag, prompt = TagAwaitGenre, "What genre are you in the mood for?"
	case lookup.ModeAuthor:
		tag, prompt = TagAwaitAuthor, "Which author?"
	default:
		return mainMenuReply(msgUseMenu), nil
	}

	h.states.Set(ev.UserID, State{Tag: tag})
	return chat.Reply{Text: prompt}, nil
}

func (h *Handler) startManualEntry(ev chat.Event, parts []string) (chat.Reply, error) {
	if len(parts) != 2 {
		return mainMenuReply(msgUseMenu), nil
	}
	kind, ok := listKindArg(parts[1])
	if !ok {
		return mainMenuReply(msgUseMenu), nil
	}

	h.states.Set(ev.UserID, State{
		Tag:   TagAwaitManualTitle,
		Draft: ManualDraft{Target: kind},
	})
	return chat.Reply{Text: "Let's add a book by hand. What's the title?"}, nil
}

func (h *Handler) showList(ctx context.Context, ev chat.Event, parts []string, pageNum int) (chat.Reply, error) {
	if len(parts) < 2 {
		return mainMenuReply(msgUseMenu), nil
	}
	kind, ok := listKindArg(parts[1])
	if !ok {
		return mainMenuReply(msgUseMenu), nil
	}

	page, err := h.lists.RenderPage(ctx, ev.UserID, kind, pageNum)
	if err != nil {
		return chat.Reply{}, err
	}
	h.states.Reset(ev.UserID)
	return listPageReply(page), nil
}

// startListPick enters the typed-selection flow: the full ordered list is
// snapshotted now and carried in the pending state, so the user's later
// "3" or "hobbit" answer resolves against what they were shown even if the
// stored list changes in between.
func (h *Handler) startListPick(ctx context.Context, ev chat.Event, parts []string) (chat.Reply, error) {
	if len(parts) != 3 {
		return mainMenuReply(msgUseMenu), nil
	}
	op := parts[1]
	kind, ok := listKindArg(parts[2])
	if !ok || (op != "rate" && op != "move" && op != "delete" && op != "edit") {
		return mainMenuReply(msgUseMenu), nil
	}

	page, err := h.lists.RenderPage(ctx, ev.UserID, kind, 1)
	if err != nil {
		return chat.Reply{}, err
	}
	if len(page.Snapshot) == 0 {
		h.states.Reset(ev.UserID)
		return mainMenuReply(fmt.Sprintf("Your %s list is empty.", kind.Label())), nil
	}

	h.states.Set(ev.UserID, State{
		Tag:      TagAwaitListTarget,
		ListKind: kind,
		ListOp:   op,
		Snapshot: page.Snapshot,
	})
	return chat.Reply{Text: msgTargetPrompt}, nil
}

func (h *Handler) showListItem(ctx context.Context, ev chat.Event, parts []string) (chat.Reply, error) {
	if len(parts) != 3 {
		return mainMenuReply(msgUseMenu), nil
	}
	kind, ok := listKindArg(parts[1])
	if !ok {
		return mainMenuReply(msgUseMenu), nil
	}

	book, err := h.library.GetBook(ctx, parts[2])
	if err != nil {
		return chat.Reply{}, err
	}
	h.states.Reset(ev.UserID)
	return itemCard(book, kind), nil
}

func (h *Handler) addToList(ctx context.Context, ev chat.Event, parts []string) (chat.Reply, error) {
	if len(parts) != 3 {
		return mainMenuReply(msgUseMenu), nil
	}
	kind, ok := listKindArg(parts[1])
	if !ok {
		return mainMenuReply(msgUseMenu), nil
	}

	if err := h.library.AddToList(ctx, ev.UserID, parts[2], kind); err != nil {
		return chat.Reply{}, err
	}
	h.states.Reset(ev.UserID)
	return mainMenuReply(fmt.Sprintf("Added to your %s list.", kind.Label())), nil
}

func (h *Handler) moveItem(ctx context.Context, ev chat.Event, parts []string) (chat.Reply, error) {
	if len(parts) != 3 {
		return mainMenuReply(msgUseMenu), nil
	}
	from, ok := listKindArg(parts[1])
	if !ok {
		return mainMenuReply(msgUseMenu), nil
	}

	if err := h.library.MoveBetweenLists(ctx, ev.UserID, parts[2], from); err != nil {
		return chat.Reply{}, err
	}
	h.states.Reset(ev.UserID)
	return mainMenuReply(fmt.Sprintf("Moved to your %s list.", from.Other().Label())), nil
}

func (h *Handler) deleteItem(ctx context.Context, ev chat.Event, parts []string) (chat.Reply, error) {
	if len(parts) != 3 {
		return mainMenuReply(msgUseMenu), nil
	}
	kind, ok := listKindArg(parts[1])
	if !ok {
		return mainMenuReply(msgUseMenu), nil
	}

	if err := h.library.RemoveFromList(ctx, ev.UserID, parts[2], kind); err != nil {
		return chat.Reply{}, err
	}
	h.states.Reset(ev.UserID)
	return mainMenuReply(fmt.Sprintf("Removed from your %s list.", kind.Label())), nil
}

func (h *Handler) startRating(ev chat.Event, parts []string) (chat.Reply, error) {
	if len(parts) != 2 || parts[1] == "" {
		return mainMenuReply(msgUseMenu), nil
	}

	h.states.Set(ev.UserID, State{
		Tag:          TagAwaitRating,
		RatingBookID: parts[1],
	})
	return chat.Reply{Text: msgRatingPrompt}, nil
}

func (h *Handler) startManualEdit(ctx context.Context, ev chat.Event, parts []string) (chat.Reply, error) {
	if len(parts) != 2 || parts[1] == "" {
		return mainMenuReply(msgUseMenu), nil
	}

	book, err := h.library.GetBook(ctx, parts[1])
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

func (h *Handler) handleAdminAction(ctx context.Context, ev chat.Event, parts []string) (chat.Reply, error) {
	if err := h.admin.Authorize(ev.UserID); err != nil {
		return chat.Reply{}, err
	}
	if len(parts) != 2 {
		return adminMenu(), nil
	}

	switch parts[1] {
	case "broadcast":
		h.states.Set(ev.UserID, State{Tag: TagAdminAwaitBroadcast})
		return chat.Reply{Text: "Send the broadcast text."}, nil
	case "ban":
		h.states.Set(ev.UserID, State{Tag: TagAdminAwaitBanTarget})
		return chat.Reply{Text: "Send the user ID to ban."}, nil
	case "unban":
		h.states.Set(ev.UserID, State{Tag: TagAdminAwaitUnbanTarget})
		return chat.Reply{Text: "Send the user ID to unban."}, nil
	case "reset":
		h.states.Set(ev.UserID, State{Tag: TagAdminAwaitResetTarget})
		return chat.Reply{Text: "Send the user ID to reset. This wipes their lists."}, nil
	case "stats":
		counts, err := h.admin.Stats(ctx, ev.UserID)
		if err != nil {
			return chat.Reply{}, err
		}
		h.states.Reset(ev.UserID)
		return chat.Reply{Text: fmt.Sprintf(
			"Books: %d\nUsers: %d\nRead entries: %d\nFavorites: %d",
			counts.Books, counts.Users, counts.Read, counts.Favorites,
		)}, nil
	default:
		return adminMenu(), nil
	}
}
