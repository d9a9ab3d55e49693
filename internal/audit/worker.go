package audit

import (
	"context"
	"log/slog"
)

// worker drains the publisher's inbox and fans events out to the store
// and the optional sink. A store failure is logged and the event is
// still offered to the sink so one broken backend does not silence the
// other.
type worker struct {
	store  Store
	sink   Sink
	logger *slog.Logger
}

func (w *worker) run(inbox <-chan Event, done chan<- struct{}) {
	defer close(done)
	for event := range inbox {
		w.deliver(event)
	}
}

func (w *worker) deliver(event Event) {
	ctx := context.Background()

	if err := w.store.Append(ctx, event); err != nil && w.logger != nil {
		w.logger.Error("audit store append failed",
			"action", event.Action,
			"error", err,
		)
	}
	if w.sink != nil {
		if err := w.sink.Publish(ctx, event); err != nil && w.logger != nil {
			w.logger.Error("audit sink publish failed",
				"action", event.Action,
				"error", err,
			)
		}
	}
}
