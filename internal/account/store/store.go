// Package store defines the account persistence contract shared by the
// memory, postgres, and redis backends.
package store

import (
	"context"

	"voicegate/internal/account/models"
	id "voicegate/pkg/domain"
)

// Store is implemented by every account backend. All methods return
// sentinel errors for infrastructure facts; callers translate them into
// domain errors.
type Store interface {
	// Get returns the account for userID, or sentinel.ErrNotFound.
	Get(ctx context.Context, userID id.UserID) (*models.Account, error)

	// Create inserts a new account. Returns sentinel.ErrConflict when an
	// account already exists for the user.
	Create(ctx context.Context, account *models.Account) error

	// IncrementVoiceConversations atomically adds one to the stored count
	// and returns the new value. The increment must be a single store
	// operation, not a read-modify-write. Returns sentinel.ErrNotFound
	// when no account exists.
	IncrementVoiceConversations(ctx context.Context, userID id.UserID) (int, error)

	// SetTrialLimitOverride sets or clears (nil) the per-account trial
	// limit. Returns sentinel.ErrNotFound when no account exists.
	SetTrialLimitOverride(ctx context.Context, userID id.UserID, limit *int) error

	// Health reports whether the backing store is reachable.
	Health(ctx context.Context) error
}
