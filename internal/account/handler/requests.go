package handler

import (
	dErrors "voicegate/pkg/domain-errors"
)

// SetTrialLimitRequest is the HTTP request body for
// PUT /admin/accounts/{user_id}/trial-limit. A null or absent limit
// clears the override and the account falls back to the default.
type SetTrialLimitRequest struct {
	Limit *int `json:"limit"`
}

// Validate rejects values the account model would refuse.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *SetTrialLimitRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	if r.Limit != nil && *r.Limit < 0 {
		return dErrors.New(dErrors.CodeValidation, "limit cannot be negative")
	}

	return nil
}
