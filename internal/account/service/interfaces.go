package service

import (
	"context"

	"voicegate/internal/account/models"
	"voicegate/internal/audit"
	id "voicegate/pkg/domain"
)

// AccountStore is the slice of the account store the admin surface
// consumes. Reads serve usage reports; the only write is the per-account
// trial limit override.
type AccountStore interface {
	// Get returns the account for userID, or sentinel.ErrNotFound.
	Get(ctx context.Context, userID id.UserID) (*models.Account, error)

	// SetTrialLimitOverride stores, or clears with nil, the per-account
	// trial limit. Returns sentinel.ErrNotFound for unknown accounts.
	SetTrialLimitOverride(ctx context.Context, userID id.UserID, limit *int) error
}

// AuditReader lists the persisted trail for one user, newest first.
type AuditReader interface {
	ListByUser(ctx context.Context, userID id.UserID) ([]audit.Event, error)
}

// AuditPublisher records admin actions on the audit trail.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
