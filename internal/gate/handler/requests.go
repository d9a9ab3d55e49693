package handler

import (
	"strings"

	id "voicegate/pkg/domain"
	dErrors "voicegate/pkg/domain-errors"
)

// CreateVoiceSessionRequest is the HTTP request body for POST /voice/sessions.
// The user identity never appears here; it comes from the platform identity
// header upstream.
type CreateVoiceSessionRequest struct {
	AgentID string `json:"agent_id"`

	// Parsed value (populated by Validate)
	parsedAgentID id.AgentID
}

// Normalize trims surrounding whitespace before validation.
// Implements the Normalizable interface for httputil.DecodeAndPrepare.
func (r *CreateVoiceSessionRequest) Normalize() {
	r.AgentID = strings.TrimSpace(r.AgentID)
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CreateVoiceSessionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	if r.AgentID == "" {
		return dErrors.New(dErrors.CodeValidation, "agent_id is required")
	}

	agentID, err := id.ParseAgentID(r.AgentID)
	if err != nil {
		return err
	}
	r.parsedAgentID = agentID

	return nil
}

// ParsedAgentID returns the validated agent ID.
func (r *CreateVoiceSessionRequest) ParsedAgentID() id.AgentID {
	return r.parsedAgentID
}
