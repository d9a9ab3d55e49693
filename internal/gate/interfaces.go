package gate

import (
	"context"

	"voicegate/internal/account/models"
	"voicegate/internal/audit"
	"voicegate/internal/entitlement"
	id "voicegate/pkg/domain"
)

// AccountStore is the slice of the account store the gate consumes.
// The gate never creates or deletes accounts; provisioning belongs to
// the registration flow.
type AccountStore interface {
	// Get returns the account for userID, or sentinel.ErrNotFound.
	Get(ctx context.Context, userID id.UserID) (*models.Account, error)

	// IncrementVoiceConversations atomically adds one to the stored
	// count and returns the new value. Must be a single store operation,
	// never a read-modify-write of a count read earlier.
	IncrementVoiceConversations(ctx context.Context, userID id.UserID) (int, error)
}

// EntitlementChecker looks up subscription state for a user.
type EntitlementChecker interface {
	// Configured reports whether the provider credentials are present.
	Configured() bool

	// Check performs one provider lookup. Transport failures and
	// non-2xx responses come back as errors; the gate folds them into
	// denials rather than surfacing them.
	Check(ctx context.Context, userID id.UserID) (*entitlement.Result, error)
}

// TokenIssuer mints a session token for an agent.
type TokenIssuer interface {
	// Configured reports whether the issuer credential is present.
	Configured() bool

	// Issue returns a fresh session token for the agent.
	Issue(ctx context.Context, agentID id.AgentID) (string, error)
}

// AuditPublisher emits audit events for gate decisions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
