package gate

import id "voicegate/pkg/domain"

// Config is the deployment-level gate policy, injected at construction
// so tests can vary it without touching process state.
type Config struct {
	// DefaultTrialLimit is the free conversation allowance for accounts
	// without a per-account override.
	DefaultTrialLimit int

	// EnforceEntitlement turns on the subscription lookup for accounts
	// that are out of trials. When off, such accounts are treated as
	// entitled and the provider is never contacted.
	EnforceEntitlement bool
}

// Decision is the per-request outcome. It is computed fresh on every
// evaluation and never persisted.
type Decision struct {
	Allowed bool
	Token   string
	AgentID id.AgentID

	// FreeTrialsRemaining is set only when the allowance was granted
	// from trial eligibility. Zero is a valid value: the request that
	// consumes the last trial still reports it.
	FreeTrialsRemaining *int
}

// Decision reasons, recorded on metrics and audit events.
const (
	ReasonFreeTrial              = "free_trial"
	ReasonSubscriptionActive     = "subscription_active"
	ReasonEnforcementDisabled    = "enforcement_disabled"
	ReasonNoTrialsNoSubscription = "no_trials_no_subscription"
	ReasonEntitlementUnavailable = "entitlement_check_failed"
)
