package chat

import (
	"context"
	"sync"
)

// LocalMessage is one message captured by a LocalResponder.
type LocalMessage struct {
	Text     string
	PhotoRef string
	DocPath  string
	Menu     []Action
}

// LocalResponder records outbound messages in memory. Used by tests and the
// local development gateway.
type LocalResponder struct {
	mu       sync.Mutex
	messages []LocalMessage
	failWith error
}

// NewLocalResponder creates an in-memory responder.
func NewLocalResponder() *LocalResponder {
	return &LocalResponder{}
}

// FailWith makes every subsequent send return err. Used to exercise
// delivery-failure paths.
func (r *LocalResponder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failWith = err
}

// SendText implements Responder.
func (r *LocalResponder) SendText(_ context.Context, text string, menu []Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	r.messages = append(r.messages, LocalMessage{Text: text, Menu: menu})
	return nil
}

// SendPhoto implements Responder.
func (r *LocalResponder) SendPhoto(_ context.Context, photoRef, caption string, menu []Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	r.messages = append(r.messages, LocalMessage{Text: caption, PhotoRef: photoRef, Menu: menu})
	return nil
}

// SendDocument implements Responder.
func (r *LocalResponder) SendDocument(_ context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	r.messages = append(r.messages, LocalMessage{DocPath: path})
	return nil
}

// Messages returns a copy of everything sent so far.
func (r *LocalResponder) Messages() []LocalMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]LocalMessage, len(r.messages))
	copy(out, r.messages)
	return out
}

// Last returns the most recent message, or a zero value if none were sent.
func (r *LocalResponder) Last() LocalMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return LocalMessage{}
	}
	return r.messages[len(r.messages)-1]
}

// LocalSender hands out per-user LocalResponders. Implements Sender.
type LocalSender struct {
	mu         sync.Mutex
	responders map[int64]*LocalResponder
}

// NewLocalSender creates an in-memory sender.
func NewLocalSender() *LocalSender {
	return &LocalSender{responders: make(map[int64]*LocalResponder)}
}

// ResponderFor implements Sender.
func (s *LocalSender) ResponderFor(userID int64) Responder {
	return s.Responder(userID)
}

// Responder returns the concrete recorder for a user, creating it if needed.
func (s *LocalSender) Responder(userID int64) *LocalResponder {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.responders[userID]
	if !ok {
		r = NewLocalResponder()
		s.responders[userID] = r
	}
	return r
}
