package conversation

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shelftalk/shelftalk-bot/internal/chat"
	apperrors "github.com/shelftalk/shelftalk-bot/internal/errors"
	"github.com/shelftalk/shelftalk-bot/internal/service"
)

// handleAdminInput advances the chained admin flows. The actor is
// re-checked on every step; a non-admin somehow holding admin state is
// rejected without a state change.
func (h *Handler) handleAdminInput(ctx context.Context, ev chat.Event, state State) (chat.Reply, error) {
	if err := h.admin.Authorize(ev.UserID); err != nil {
		return chat.Reply{}, err
	}
	if ev.Kind != chat.KindText {
		return chat.Reply{Text: "Text input, please."}, nil
	}
	text := strings.TrimSpace(ev.Text)

	switch state.Tag {
	case TagAdminAwaitBroadcast:
		res, err := h.admin.Broadcast(ctx, ev.UserID, h.sender, text)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrValidation) {
				return chat.Reply{Text: "The broadcast text is empty. Send it again."}, nil
			}
			return chat.Reply{}, err
		}
		h.states.Reset(ev.UserID)
		return chat.Reply{Text: fmt.Sprintf("Broadcast sent to %d users (%d failed).", res.Sent, res.Failed)}, nil

	case TagAdminAwaitBanTarget:
		targetID, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return chat.Reply{Text: "That's not a user ID. Send a number."}, nil
		}
		state.Ban.TargetID = targetID
		state.Tag = TagAdminAwaitBanDuration
		h.states.Set(ev.UserID, state)
		return chat.Reply{Text: "For how long? e.g. \"12h\" or \"3d\"."}, nil

	case TagAdminAwaitBanDuration:
		duration, err := service.ParseBanDuration(text)
		if err != nil {
			return chat.Reply{Text: "I can't parse that duration. Try \"12h\" or \"3d\"."}, nil
		}
		state.Ban.Duration = duration
		state.Tag = TagAdminAwaitBanReason
		h.states.Set(ev.UserID, state)
		return chat.Reply{Text: "And the reason?"}, nil

	case TagAdminAwaitBanReason:
		err := h.admin.Ban(ctx, ev.UserID, state.Ban.TargetID, state.Ban.Duration, text)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				h.states.Reset(ev.UserID)
				return chat.Reply{Text: "No such user. Cancelled."}, nil
			}
			return chat.Reply{}, err
		}
		h.states.Reset(ev.UserID)
		return chat.Reply{Text: fmt.Sprintf("User %d banned.", state.Ban.TargetID)}, nil

	case TagAdminAwaitUnbanTarget:
		targetID, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return chat.Reply{Text: "That's not a user ID. Send a number."}, nil
		}
		if err := h.admin.Unban(ctx, ev.UserID, targetID); err != nil {
			return chat.Reply{}, err
		}
		h.states.Reset(ev.UserID)
		return chat.Reply{Text: fmt.Sprintf("User %d unbanned.", targetID)}, nil

	case TagAdminAwaitResetTarget:
		targetID, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return chat.Reply{Text: "That's not a user ID. Send a number."}, nil
		}
		if err := h.admin.Reset(ctx, ev.UserID, targetID); err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				h.states.Reset(ev.UserID)
				return chat.Reply{Text: "No such user. Cancelled."}, nil
			}
			return chat.Reply{}, err
		}
		h.states.Reset(ev.UserID)
		return chat.Reply{Text: fmt.Sprintf("User %d reset.", targetID)}, nil
	}

	h.states.Reset(ev.UserID)
	return mainMenuReply(msgUseMenu), nil
}
