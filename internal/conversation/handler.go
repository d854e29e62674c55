package conversation

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shelftalk/shelftalk-bot/internal/chat"
	"github.com/shelftalk/shelftalk-bot/internal/domain"
	apperrors "github.com/shelftalk/shelftalk-bot/internal/errors"
	"github.com/shelftalk/shelftalk-bot/internal/service"
)

// Handler routes normalized chat events through the gate chain and the
// per-user state machine. It is the error boundary: every failure below it
// becomes a user-visible reply, never a crash.
type Handler struct {
	profiles *service.ProfileService
	resolver *service.Resolver
	library  *service.LibraryService
	lists    *service.ListView
	admin    *service.AdminService
	sender   chat.Sender
	states   *Store
	logger   *slog.Logger
}

// NewHandler wires the conversation handler.
func NewHandler(
	profiles *service.ProfileService,
	resolver *service.Resolver,
	library *service.LibraryService,
	lists *service.ListView,
	admin *service.AdminService,
	sender chat.Sender,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		profiles: profiles,
		resolver: resolver,
		library:  library,
		lists:    lists,
		admin:    admin,
		sender:   sender,
		states:   NewStore(),
		logger:   logger,
	}
}

// Handle processes one inbound event to completion and delivers the reply.
func (h *Handler) Handle(ctx context.Context, ev chat.Event, r chat.Responder) error {
	reply, err := h.handle(ctx, ev)
	if err != nil {
		reply = h.replyForError(ev, err)
	}
	return chat.Send(ctx, r, reply)
}

func (h *Handler) handle(ctx context.Context, ev chat.Event) (chat.Reply, error) {
	// /start and policy acceptance must work before the policy gate passes.
	if isGateExempt(ev) {
		return h.handleExempt(ctx, ev)
	}

	if _, err := h.profiles.Gate(ctx, ev.UserID, ev.DisplayName); err != nil {
		return chat.Reply{}, err
	}

	switch ev.Kind {
	case chat.KindCommand:
		return h.handleCommand(ctx, ev)
	case chat.KindAction:
		// A menu action always starts fresh: any unfinished flow is
		// implicitly cancelled by the state overwrite.
		return h.handleAction(ctx, ev)
	case chat.KindText, chat.KindPhoto:
		return h.handleInput(ctx, ev)
	default:
		return mainMenuReply(msgUseMenu), nil
	}
}

func isGateExempt(ev chat.Event) bool {
	return (ev.Kind == chat.KindCommand && ev.Command == "start") ||
		(ev.Kind == chat.KindAction && ev.Action == actionAcceptPolicy)
}

func (h *Handler) handleExempt(ctx context.Context, ev chat.Event) (chat.Reply, error) {
	profile, err := h.profiles.EnsureUser(ctx, ev.UserID, ev.DisplayName)
	if err != nil {
		return chat.Reply{}, err
	}

	// Only the policy gate is exempt here. A ban holds for every event,
	// /start and policy acceptance included.
	if err := h.profiles.CheckBan(profile); err != nil {
		return chat.Reply{}, err
	}

	if ev.Kind == chat.KindAction {
		if err := h.profiles.AcceptPolicy(ctx, ev.UserID); err != nil {
			return chat.Reply{}, err
		}
		return mainMenuReply("Welcome! What would you like to do?"), nil
	}

	// /start
	h.states.Reset(ev.UserID)
	if !profile.PolicyAccepted {
		return policyPrompt(), nil
	}
	return mainMenuReply("Hello again! What would you like to do?"), nil
}

func (h *Handler) handleCommand(ctx context.Context, ev chat.Event) (chat.Reply, error) {
	switch ev.Command {
	case "menu":
		h.states.Reset(ev.UserID)
		return mainMenuReply("What would you like to do?"), nil
	case "admin":
		if err := h.admin.Authorize(ev.UserID); err != nil {
			return chat.Reply{}, err
		}
		h.states.Reset(ev.UserID)
		return adminMenu(), nil
	default:
		return mainMenuReply("I don't know that command. Here's the menu instead."), nil
	}
}

// handleInput dispatches free text and photos on the current state.
func (h *Handler) handleInput(ctx context.Context, ev chat.Event) (chat.Reply, error) {
	state := h.states.Get(ev.UserID)

	switch state.Tag {
	case TagAwaitTitle, TagAwaitGenre, TagAwaitAuthor:
		return h.handleSearchInput(ctx, ev, state)
	case TagAwaitManualTitle, TagAwaitManualDescription, TagAwaitManualCover:
		return h.handleManualInput(ctx, ev, state)
	case TagAwaitListTarget:
		return h.handleListTarget(ctx, ev, state)
	case TagAwaitRating:
		return h.handleRating(ctx, ev, state)
	case TagAdminAwaitBroadcast, TagAdminAwaitBanTarget, TagAdminAwaitBanDuration,
		TagAdminAwaitBanReason, TagAdminAwaitUnbanTarget, TagAdminAwaitResetTarget:
		return h.handleAdminInput(ctx, ev, state)
	default:
		if ev.Kind == chat.KindPhoto {
			return mainMenuReply("I wasn't expecting a photo. Here's the menu."), nil
		}
		return mainMenuReply(msgUseMenu), nil
	}
}

// replyForError converts a failure into a user-visible reply. Storage and
// unexpected errors are terminal: the user's state resets to idle so the
// next message starts clean.
func (h *Handler) replyForError(ev chat.Event, err error) chat.Reply {
	var domainErr *apperrors.Error
	if apperrors.As(err, &domainErr) {
		switch domainErr.Code {
		case apperrors.CodeBanned:
			return chat.Reply{Text: "You are banned. " + domainErr.Message}
		case apperrors.CodeForbidden:
			if domainErr.Message == "policy not accepted" {
				return policyPrompt()
			}
			return chat.Reply{Text: "You can't do that."}
		case apperrors.CodeRateLimited:
			return chat.Reply{Text: msgRateLimited}
		case apperrors.CodeNotFound:
			h.states.Reset(ev.UserID)
			return mainMenuReply(msgNotFound)
		case apperrors.CodeValidation:
			return chat.Reply{Text: domainErr.Message}
		}
	}

	h.logger.Error("unhandled error in conversation",
		"user_id", ev.UserID,
		"error", err,
	)
	h.states.Reset(ev.UserID)
	return mainMenuReply(msgStorageError)
}

// splitAction separates a compound action ID into its parts.
func splitAction(action string) []string {
	return strings.Split(action, ":")
}

func listKindArg(s string) (domain.ListKind, bool) {
	kind := domain.ListKind(s)
	return kind, kind.Valid()
}
