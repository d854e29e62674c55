package conversation

import (
	"fmt"
	"strings"

	"github.com/shelftalk/shelftalk-bot/internal/chat"
	"github.com/shelftalk/shelftalk-bot/internal/domain"
	"github.com/shelftalk/shelftalk-bot/internal/service"
)

// Action identifiers. Compound actions carry their payload after a colon,
// e.g. "add:read:works-OL1W".
const (
	actionAcceptPolicy = "policy:accept"

	actionSearchTitle  = "search:title"
	actionSearchGenre  = "search:genre"
	actionSearchAuthor = "search:author"

	actionManualPrefix = "manual:" // manual:<kind>
	actionListPrefix   = "list:"   // list:<kind>
	actionPagePrefix   = "page:"   // page:<kind>:<n>
	actionPickPrefix   = "pick:"   // pick:<op>:<kind>
	actionItemPrefix   = "item:"   // item:<kind>:<book-id>
	actionAddPrefix    = "add:"    // add:<kind>:<book-id>
	actionMovePrefix   = "move:"   // move:<from-kind>:<book-id>
	actionDeletePrefix = "del:"    // del:<kind>:<book-id>
	actionRatePrefix   = "rate:"   // rate:<book-id>
	actionEditPrefix   = "edit:"   // edit:<book-id>

	actionAdminBroadcast = "admin:broadcast"
	actionAdminBan       = "admin:ban"
	actionAdminUnban     = "admin:unban"
	actionAdminReset     = "admin:reset"
	actionAdminStats     = "admin:stats"
)

const (
	msgPolicyPrompt = "Before we start: this bot stores your book lists and search history. " +
		"Accept to continue."
	msgNotFound        = "I couldn't find that book. Back to the menu."
	msgStorageError    = "Something went wrong on my side. Please try again later."
	msgRateLimited     = "Too many messages. Give me a minute."
	msgUseMenu         = "Pick something from the menu to get started."
	msgCoverPrompt     = "Send a cover photo, or reply \"none\" to skip."
	msgCoverPromptEdit = "Send a new cover photo, or reply \"none\" to keep the current one."
	msgTargetPrompt    = "Reply with the item number or part of the title."
	msgRatingPrompt    = "How would you rate it? Send a number from 1 to 5."
	msgRatingInvalid   = "That's not a rating I understand. Send a number from 1 to 5."
)

func mainMenu() []chat.Action {
	return []chat.Action{
		{ID: actionSearchTitle, Label: "Find by title"},
		{ID: actionSearchGenre, Label: "Suggest by genre"},
		{ID: actionSearchAuthor, Label: "Find by author"},
		{ID: actionListPrefix + string(domain.ListRead), Label: "My read list"},
		{ID: actionListPrefix + string(domain.ListFavorites), Label: "My favorites"},
		{ID: actionManualPrefix + string(domain.ListRead), Label: "Add a book by hand"},
	}
}

func mainMenuReply(text string) chat.Reply {
	return chat.Reply{Text: text, Menu: mainMenu()}
}

func policyPrompt() chat.Reply {
	return chat.Reply{
		Text: msgPolicyPrompt,
		Menu: []chat.Action{{ID: actionAcceptPolicy, Label: "Accept"}},
	}
}

func adminMenu() chat.Reply {
	return chat.Reply{
		Text: "Admin panel.",
		Menu: []chat.Action{
			{ID: actionAdminBroadcast, Label: "Broadcast"},
			{ID: actionAdminBan, Label: "Ban user"},
			{ID: actionAdminUnban, Label: "Unban user"},
			{ID: actionAdminReset, Label: "Reset user"},
			{ID: actionAdminStats, Label: "Stats"},
		},
	}
}

// bookCard renders a resolved book with its action menu. The cover rides
// along as a photo when present.
func bookCard(book *domain.Book, intro string) chat.Reply {
	var b strings.Builder
	if intro != "" {
		b.WriteString(intro)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "%s\n", book.Title)
	fmt.Fprintf(&b, "Genres: %s\n\n", book.GenresLabel())
	b.WriteString(book.Description)

	menu := []chat.Action{
		{ID: actionAddPrefix + string(domain.ListRead) + ":" + book.ID, Label: "I've read it"},
		{ID: actionAddPrefix + string(domain.ListFavorites) + ":" + book.ID, Label: "Favorite"},
		{ID: actionRatePrefix + book.ID, Label: "Rate"},
	}
	if book.IsManual() {
		menu = append(menu, chat.Action{ID: actionEditPrefix + book.ID, Label: "Edit"})
	}

	return chat.Reply{Text: b.String(), PhotoRef: book.CoverRef, Menu: menu}
}

// itemCard renders a book picked from a list, with list-scoped actions.
func itemCard(book *domain.Book, kind domain.ListKind) chat.Reply {
	reply := bookCard(book, "")
	reply.Menu = []chat.Action{
		{ID: actionRatePrefix + book.ID, Label: "Rate"},
		{ID: actionMovePrefix + string(kind) + ":" + book.ID, Label: "Move to " + kind.Other().Label()},
		{ID: actionDeletePrefix + string(kind) + ":" + book.ID, Label: "Remove"},
	}
	if book.IsManual() {
		reply.Menu = append(reply.Menu, chat.Action{ID: actionEditPrefix + book.ID, Label: "Edit"})
	}
	return reply
}

// listPageReply renders one page of a user's list: numbered rows, per-item
// buttons, page navigation, and the typed-selection operations.
func listPageReply(page *service.Page) chat.Reply {
	if page.Total == 0 {
		return mainMenuReply(fmt.Sprintf("Your %s list is empty.", strings.ToLower(page.Kind.Label())))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s — page %d of %d\n\n", page.Kind.Label(), page.Number, page.TotalPages)
	for _, item := range page.Items {
		fmt.Fprintf(&b, "%d. %s", item.Index, item.Book.Title)
		if item.Rating != nil {
			fmt.Fprintf(&b, " (%d/5)", *item.Rating)
		}
		b.WriteString("\n")
	}

	kind := string(page.Kind)
	menu := make([]chat.Action, 0, len(page.Items)+6)
	for _, item := range page.Items {
		menu = append(menu, chat.Action{
			ID:    actionItemPrefix + kind + ":" + item.Book.ID,
			Label: fmt.Sprintf("%d", item.Index),
		})
	}
	if page.HasPrev() {
		menu = append(menu, chat.Action{
			ID:    fmt.Sprintf("%s%s:%d", actionPagePrefix, kind, page.Number-1),
			Label: "Prev",
		})
	}
	if page.HasNext() {
		menu = append(menu, chat.Action{
			ID:    fmt.Sprintf("%s%s:%d", actionPagePrefix, kind, page.Number+1),
			Label: "Next",
		})
	}
	menu = append(menu,
		chat.Action{ID: actionPickPrefix + "rate:" + kind, Label: "Rate an item"},
		chat.Action{ID: actionPickPrefix + "move:" + kind, Label: "Move an item"},
		chat.Action{ID: actionPickPrefix + "delete:" + kind, Label: "Remove an item"},
	)

	return chat.Reply{Text: b.String(), Menu: menu}
}
