// Package audit captures the trail of gate decisions and admin actions.
package audit

import (
	"time"

	id "voicegate/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with billing significance: a
	// consumed trial is money. These need long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers denials and admin overrides, which feed
	// abuse monitoring.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine grants and provider failures.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	UserID    id.UserID
	AgentID   string
	Action    string
	// Decision records the gate outcome ("granted", "denied").
	Decision string
	// Reason explains denials and errors ("no_trials_no_subscription",
	// "entitlement_check_failed", ...).
	Reason string
	// DeviceName and DeviceFingerprint describe the client without
	// storing raw user agents.
	DeviceName        string
	DeviceFingerprint string
	// RequestID is the correlation ID from the HTTP request context.
	RequestID string
	// ActorID tracks who performed the action when different from
	// UserID. Used for admin operations on a user's account.
	ActorID string
}

type AuditEvent string

const (
	// Gate events
	EventVoiceSessionGranted AuditEvent = "voice_session_granted"
	EventVoiceSessionDenied  AuditEvent = "voice_session_denied"
	EventVoiceSessionError   AuditEvent = "voice_session_error"
	EventTrialConsumed       AuditEvent = "trial_consumed"

	// Admin events
	EventTrialLimitOverrideSet AuditEvent = "trial_limit_override_set"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	EventTrialConsumed: CategoryCompliance,

	EventVoiceSessionDenied:    CategorySecurity,
	EventTrialLimitOverrideSet: CategorySecurity,

	EventVoiceSessionGranted: CategoryOperations,
	EventVoiceSessionError:   CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
