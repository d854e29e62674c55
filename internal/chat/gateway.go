package chat

import "context"

// Gateway connects the core to a chat platform adapter. The adapter parses
// platform updates into Events, builds a Responder per event, and delivers
// unsolicited messages for the scheduler.
type Gateway interface {
	Sender

	// Run delivers inbound events until the context is cancelled.
	Run(ctx context.Context, deliver func(Event, Responder)) error
}

// LocalGateway is a channel-backed Gateway for tests and local development.
// Events are injected programmatically; replies land in per-user
// LocalResponders.
type LocalGateway struct {
	*LocalSender
	events chan Event
}

// NewLocalGateway creates a gateway with a buffered event queue.
func NewLocalGateway() *LocalGateway {
	return &LocalGateway{
		LocalSender: NewLocalSender(),
		events:      make(chan Event, 64),
	}
}

// Inject queues one inbound event.
func (g *LocalGateway) Inject(ev Event) {
	g.events <- ev
}

// Run implements Gateway.
func (g *LocalGateway) Run(ctx context.Context, deliver func(Event, Responder)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-g.events:
			deliver(ev, g.Responder(ev.UserID))
		}
	}
}
