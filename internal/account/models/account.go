// Package models holds the account aggregate consulted by the voice
// session gate.
package models

import (
	"time"

	id "voicegate/pkg/domain"
	dErrors "voicegate/pkg/domain-errors"
)

// Account is the per-user usage record.
//
// Invariants:
//   - VoiceConversationCount is never negative
//   - TrialLimitOverride, when set, is never negative
//   - CreatedAt is immutable after construction
//
// The count only moves through store-level atomic increments, never
// read-modify-write, so concurrent grants cannot lose updates. The
// eligibility check reads a snapshot, which keeps the trial limit soft:
// two requests racing on the last trial may both pass.
type Account struct {
	UserID                 id.UserID `json:"user_id"`
	VoiceConversationCount int       `json:"voice_conversation_count"`
	TrialLimitOverride     *int      `json:"trial_limit_override,omitempty"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// TrialLimit resolves the effective trial limit: the per-account override
// when present, the service-wide default otherwise.
func (a *Account) TrialLimit(defaultLimit int) int {
	if a.TrialLimitOverride != nil {
		return *a.TrialLimitOverride
	}
	return defaultLimit
}

// HasFreeTrial reports whether the account has unused trial conversations
// under the effective limit.
func (a *Account) HasFreeTrial(defaultLimit int) bool {
	return a.VoiceConversationCount < a.TrialLimit(defaultLimit)
}

// TrialsRemaining returns the number of unused trials, never negative.
// Overages from racing grants or a lowered override clamp to zero.
func (a *Account) TrialsRemaining(defaultLimit int) int {
	remaining := a.TrialLimit(defaultLimit) - a.VoiceConversationCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ApplyTrialLimitOverride sets or clears (nil) the per-account limit.
// Call ValidateTrialLimit first when the value comes from outside.
func (a *Account) ApplyTrialLimitOverride(limit *int, now time.Time) {
	a.TrialLimitOverride = limit
	a.UpdatedAt = now
}

// ValidateTrialLimit rejects override values that would corrupt the
// account. Zero is valid and blocks trials entirely.
func ValidateTrialLimit(limit *int) error {
	if limit != nil && *limit < 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "trial limit override cannot be negative")
	}
	return nil
}

// NewAccount creates an account with a zero conversation count and no
// override.
func NewAccount(userID id.UserID, now time.Time) (*Account, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "account requires a user id")
	}
	return &Account{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
