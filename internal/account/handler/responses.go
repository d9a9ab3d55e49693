package handler

import (
	"time"

	"voicegate/internal/account/service"
	"voicegate/internal/audit"
)

// UsageResponse is the HTTP response for GET /admin/accounts/{user_id}/usage.
// TrialLimit is the effective limit after any override.
type UsageResponse struct {
	UserID                 string          `json:"user_id"`
	VoiceConversationCount int             `json:"voice_conversation_count"`
	TrialLimit             int             `json:"trial_limit"`
	TrialLimitOverride     *int            `json:"trial_limit_override,omitempty"`
	TrialsRemaining        int             `json:"trials_remaining"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
	RecentEvents           []EventResponse `json:"recent_events"`
}

// EventResponse is one audit trail entry on a usage report.
type EventResponse struct {
	Timestamp  time.Time `json:"timestamp"`
	Action     string    `json:"action"`
	Decision   string    `json:"decision,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	AgentID    string    `json:"agent_id,omitempty"`
	ActorID    string    `json:"actor_id,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	DeviceName string    `json:"device_name,omitempty"`
}

// FromUsage converts an admin usage report to an HTTP response.
func FromUsage(usage *service.Usage) *UsageResponse {
	events := make([]EventResponse, 0, len(usage.RecentEvents))
	for _, event := range usage.RecentEvents {
		events = append(events, fromEvent(event))
	}

	return &UsageResponse{
		UserID:                 usage.Account.UserID.String(),
		VoiceConversationCount: usage.Account.VoiceConversationCount,
		TrialLimit:             usage.TrialLimit,
		TrialLimitOverride:     usage.Account.TrialLimitOverride,
		TrialsRemaining:        usage.TrialsRemaining,
		CreatedAt:              usage.Account.CreatedAt,
		UpdatedAt:              usage.Account.UpdatedAt,
		RecentEvents:           events,
	}
}

func fromEvent(event audit.Event) EventResponse {
	return EventResponse{
		Timestamp:  event.Timestamp,
		Action:     event.Action,
		Decision:   event.Decision,
		Reason:     event.Reason,
		AgentID:    event.AgentID,
		ActorID:    event.ActorID,
		RequestID:  event.RequestID,
		DeviceName: event.DeviceName,
	}
}
