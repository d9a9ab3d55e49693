package handler

import (
	"voicegate/internal/gate"
)

// VoiceSessionResponse is the HTTP response for POST /voice/sessions.
// FreeTrialsRemaining appears only on trial allowances; zero is a real
// value there, so the field is a pointer rather than omitted-when-zero.
type VoiceSessionResponse struct {
	Allowed             bool   `json:"allowed"`
	Token               string `json:"token,omitempty"`
	AgentID             string `json:"agent_id"`
	FreeTrialsRemaining *int   `json:"free_trials_remaining,omitempty"`
}

// FromDecision converts a gate decision to an HTTP response.
func FromDecision(decision *gate.Decision) *VoiceSessionResponse {
	return &VoiceSessionResponse{
		Allowed:             decision.Allowed,
		Token:               decision.Token,
		AgentID:             decision.AgentID.String(),
		FreeTrialsRemaining: decision.FreeTrialsRemaining,
	}
}
