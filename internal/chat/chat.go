// Package chat defines the transport boundary of the bot: normalized inbound
// events, outbound replies, and the response-target capabilities the core
// needs from a chat platform. The platform adapter (delivery, button
// rendering, command parsing) lives outside this module.
package chat

import "context"

// EventKind classifies a normalized inbound event.
type EventKind string

const (
	// KindCommand is a slash command, e.g. "/start".
	KindCommand EventKind = "command"
	// KindAction is a menu button press carrying an action identifier.
	KindAction EventKind = "action"
	// KindText is free-form text input.
	KindText EventKind = "text"
	// KindPhoto is a photo upload carrying a platform media handle.
	KindPhoto EventKind = "photo"
)

// Event is a single inbound user event, normalized at the transport boundary.
type Event struct {
	UserID      int64
	DisplayName string
	Kind        EventKind
	Command     string // set when Kind == KindCommand, without the slash
	Action      string // set when Kind == KindAction
	Text        string // set when Kind == KindText
	PhotoRef    string // set when Kind == KindPhoto; opaque media handle
}

// Action is a menu affordance attached to a reply.
type Action struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Reply is the normalized outbound response for one handled event.
type Reply struct {
	Text     string
	PhotoRef string // optional; when set, Text is the caption
	Menu     []Action
}

// Responder is the response-target abstraction: the capabilities the core
// may use to answer a user. It is constructed once per inbound event at the
// transport boundary and never re-inspected downstream.
type Responder interface {
	// SendText sends a text reply with an optional action menu.
	SendText(ctx context.Context, text string, menu []Action) error
	// SendPhoto sends a photo with a caption and an optional action menu.
	SendPhoto(ctx context.Context, photoRef, caption string, menu []Action) error
	// SendDocument sends a file by path, used for backup delivery.
	SendDocument(ctx context.Context, path string) error
}

// Sender delivers unsolicited messages to a user outside of any inbound
// event, used by the scheduler for daily recommendations.
type Sender interface {
	// ResponderFor builds a response target for the given user.
	ResponderFor(userID int64) Responder
}

// Send delivers a Reply through a Responder, choosing the photo or text
// capability based on the reply's content.
func Send(ctx context.Context, r Responder, reply Reply) error {
	if reply.Text == "" && reply.PhotoRef == "" {
		return nil
	}
	if reply.PhotoRef != "" {
		return r.SendPhoto(ctx, reply.PhotoRef, reply.Text, reply.Menu)
	}
	return r.SendText(ctx, reply.Text, reply.Menu)
}
