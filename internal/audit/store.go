package audit

import (
	"context"

	id "voicegate/pkg/domain"
)

// Store persists audit events. Implementations must tolerate concurrent
// appends.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, userID id.UserID) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// Sink forwards events to an external system such as Kafka. Sinks are
// best-effort: failures are logged, never propagated to the request path.
type Sink interface {
	Publish(ctx context.Context, event Event) error
	Close()
}
