// Package dispatch fans inbound chat events out to per-user mailboxes:
// one user's events are handled strictly in order, independent users run
// concurrently.
package dispatch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shelftalk/shelftalk-bot/internal/chat"
	"github.com/shelftalk/shelftalk-bot/internal/ratelimit"
)

// defaultMailboxSize bounds how many events per user may queue before
// Dispatch starts dropping.
const defaultMailboxSize = 16

// Handler processes one inbound event to completion.
type Handler interface {
	Handle(ctx context.Context, ev chat.Event, r chat.Responder) error
}

type envelope struct {
	ev chat.Event
	r  chat.Responder
}

// Dispatcher owns one goroutine and one buffered mailbox per active user.
type Dispatcher struct {
	handler Handler
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger

	mu        sync.Mutex
	mailboxes map[int64]chan envelope
	closed    bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a dispatcher delivering events to the given handler. The
// optional limiter is an in-memory flood guard: events beyond a user's
// token budget are dropped before they reach the mailbox. Pass nil to
// disable.
func New(handler Handler, limiter *ratelimit.KeyedRateLimiter, logger *slog.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		handler:   handler,
		limiter:   limiter,
		logger:    logger,
		mailboxes: make(map[int64]chan envelope),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Dispatch queues one event for its user's mailbox, starting the mailbox
// goroutine on first contact. When the mailbox is full the event is dropped
// with a log line rather than blocking the transport.
func (d *Dispatcher) Dispatch(ev chat.Event, r chat.Responder) {
	if d.limiter != nil && !d.limiter.AllowUser(ev.UserID) {
		d.logger.Debug("flood guard dropped event", "user_id", ev.UserID)
		return
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	box, ok := d.mailboxes[ev.UserID]
	if !ok {
		box = make(chan envelope, defaultMailboxSize)
		d.mailboxes[ev.UserID] = box
		d.wg.Add(1)
		go d.runMailbox(ev.UserID, box)
	}
	d.mu.Unlock()

	select {
	case box <- envelope{ev: ev, r: r}:
	default:
		d.logger.Warn("mailbox full, dropping event",
			"user_id", ev.UserID,
			"kind", string(ev.Kind),
		)
	}
}

// runMailbox drains one user's events sequentially until shutdown.
func (d *Dispatcher) runMailbox(userID int64, box chan envelope) {
	defer d.wg.Done()
	for {
		select {
		case <-d.ctx.Done():
			return
		case env := <-box:
			d.handleSafe(env)
		}
	}
}

// handleSafe runs the handler with a panic guard: a panicking handler
// produces a generic reply and a log entry, never a dead mailbox.
func (d *Dispatcher) handleSafe(env envelope) {
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.Error("handler panic",
				"user_id", env.ev.UserID,
				"panic", rec,
			)
			_ = env.r.SendText(d.ctx, "Something went wrong on my side. Please try again later.", nil)
		}
	}()

	if err := d.handler.Handle(d.ctx, env.ev, env.r); err != nil {
		d.logger.Error("event handling failed",
			"user_id", env.ev.UserID,
			"error", err,
		)
	}
}

// Shutdown stops accepting events and waits for in-flight handlers, up to
// the context deadline.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.cancel()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
