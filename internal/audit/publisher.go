package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	id "voicegate/pkg/domain"
)

var errBufferFull = errors.New("audit buffer full")

// Publisher captures structured audit events. By default Emit appends to
// the store synchronously; with an async buffer, events flow through a
// channel drained by a background worker so emission never blocks the
// request path.
type Publisher struct {
	store  Store
	sink   Sink
	logger *slog.Logger

	inbox     chan Event
	done      chan struct{}
	closeOnce sync.Once
}

type PublisherOption func(*Publisher)

// WithAsyncBuffer switches the publisher to asynchronous mode with the
// given channel capacity. When the buffer is full, Emit returns an error
// instead of blocking.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		p.inbox = make(chan Event, size)
	}
}

// WithSink attaches a best-effort external sink fed by the worker.
func WithSink(sink Sink) PublisherOption {
	return func(p *Publisher) {
		p.sink = sink
	}
}

func WithLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}

	if p.inbox != nil {
		p.done = make(chan struct{})
		w := &worker{store: p.store, sink: p.sink, logger: p.logger}
		go w.run(p.inbox, p.done)
	}

	return p
}

// Emit records an event. A zero timestamp is set to now. In async mode a
// full buffer drops the event with an error; audit must never stall a
// grant.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = AuditEvent(event.Action).Category()
	}

	if p.inbox == nil {
		if err := p.store.Append(ctx, event); err != nil {
			return err
		}
		if p.sink != nil {
			if err := p.sink.Publish(ctx, event); err != nil && p.logger != nil {
				p.logger.Error("audit sink publish failed",
					"action", event.Action,
					"error", err,
				)
			}
		}
		return nil
	}

	select {
	case p.inbox <- event:
		return nil
	default:
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.logger != nil {
		p.logger.Warn("audit event dropped, buffer full", "action", event.Action)
	}
	return errBufferFull
}

// List returns the audit trail for a user.
func (p *Publisher) List(ctx context.Context, userID id.UserID) ([]Event, error) {
	return p.store.ListByUser(ctx, userID)
}

// Close drains pending events and stops the worker. Safe to call more
// than once.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		if p.inbox != nil {
			close(p.inbox)
			<-p.done
		}
		if p.sink != nil {
			p.sink.Close()
		}
	})
}
