// Package gate decides whether a user may start a voice session. One
// evaluation reads the account, checks trial eligibility, optionally
// consults the entitlement provider, mints a token, and records usage.
//
// Outcomes split three ways: allowed (token issued), denied (a normal
// response with no token), and error (structured failure). Entitlement
// provider outages fold into denials so the caller cannot tell "not
// entitled" from "provider down".
package gate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"voicegate/internal/audit"
	"voicegate/internal/gate/metrics"
	id "voicegate/pkg/domain"
	dErrors "voicegate/pkg/domain-errors"
	"voicegate/pkg/platform/sentinel"
	"voicegate/pkg/requestcontext"
)

// Service is the voice-session gate.
type Service struct {
	accounts     AccountStore
	entitlements EntitlementChecker
	issuer       TokenIssuer
	cfg          Config

	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// New constructs the gate.
func New(
	accounts AccountStore,
	entitlements EntitlementChecker,
	issuer TokenIssuer,
	cfg Config,
	opts ...Option,
) (*Service, error) {
	if accounts == nil {
		return nil, fmt.Errorf("account store is required")
	}
	if entitlements == nil {
		return nil, fmt.Errorf("entitlement checker is required")
	}
	if issuer == nil {
		return nil, fmt.Errorf("token issuer is required")
	}
	if cfg.DefaultTrialLimit < 0 {
		return nil, fmt.Errorf("default trial limit cannot be negative")
	}

	s := &Service{
		accounts:     accounts,
		entitlements: entitlements,
		issuer:       issuer,
		cfg:          cfg,
		tracer:       otel.Tracer("voicegate/internal/gate"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Evaluate runs the gate for one request. It returns a Decision for
// both allowances and denials; errors are reserved for unknown users,
// misconfiguration, and issuance failures.
func (s *Service) Evaluate(ctx context.Context, userID id.UserID, agentID id.AgentID) (*Decision, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "gate.Evaluate",
		trace.WithAttributes(attribute.String("agent_id", agentID.String())),
	)
	defer span.End()
	defer func() { s.metrics.ObserveEvaluateLatency(time.Since(start)) }()

	account, err := s.accounts.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// Unknown identities leave no audit trail and trigger no
			// outbound calls.
			notFound := dErrors.New(dErrors.CodeNotFound, "account not found")
			return nil, s.fail(ctx, span, userID, agentID, "account_not_found", notFound, false)
		}
		wrapped := dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
		return nil, s.fail(ctx, span, userID, agentID, "account_lookup_failed", wrapped, true)
	}

	limit := account.TrialLimit(s.cfg.DefaultTrialLimit)
	count := account.VoiceConversationCount
	hasFreeTrial := count < limit

	var grantReason string
	switch {
	case hasFreeTrial:
		grantReason = ReasonFreeTrial
	case !s.cfg.EnforceEntitlement:
		grantReason = ReasonEnforcementDisabled
	default:
		if !s.entitlements.Configured() {
			err := dErrors.New(dErrors.CodeInternal, "entitlement provider is not configured")
			return nil, s.fail(ctx, span, userID, agentID, "entitlement_not_configured", err, true)
		}

		providerStart := time.Now()
		result, err := s.entitlements.Check(ctx, userID)
		s.metrics.ObserveProviderLatency("entitlement", time.Since(providerStart))
		if err != nil {
			// Provider unreachable or non-2xx reads as "not entitled";
			// the caller sees an ordinary denial.
			return s.deny(ctx, span, userID, agentID, ReasonEntitlementUnavailable, err), nil
		}
		if !result.Entitled {
			return s.deny(ctx, span, userID, agentID, ReasonNoTrialsNoSubscription, nil), nil
		}
		grantReason = ReasonSubscriptionActive
	}

	if !s.issuer.Configured() {
		err := dErrors.New(dErrors.CodeInternal, "voice token issuer is not configured")
		return nil, s.fail(ctx, span, userID, agentID, "issuer_not_configured", err, true)
	}

	issueStart := time.Now()
	token, err := s.issuer.Issue(ctx, agentID)
	s.metrics.ObserveProviderLatency("issuer", time.Since(issueStart))
	if err != nil {
		wrapped := dErrors.Wrap(err, dErrors.CodeInternal,
			fmt.Sprintf("token issuance failed for user %s", userID))
		return nil, s.fail(ctx, span, userID, agentID, "issuance_failed", wrapped, true)
	}

	// The counter moves iff a token was obtained. The increment is a
	// single atomic store operation, independent of the count read
	// above, so concurrent requests never lose updates.
	newCount, err := s.accounts.IncrementVoiceConversations(ctx, userID)
	if err != nil {
		wrapped := dErrors.Wrap(err, dErrors.CodeInternal,
			fmt.Sprintf("failed to record voice session for user %s", userID))
		return nil, s.fail(ctx, span, userID, agentID, "usage_record_failed", wrapped, true)
	}

	decision := &Decision{Allowed: true, Token: token, AgentID: agentID}
	if grantReason == ReasonFreeTrial {
		remaining := limit - count - 1
		decision.FreeTrialsRemaining = &remaining
	}

	span.SetAttributes(
		attribute.String("outcome", "allowed"),
		attribute.String("reason", grantReason),
	)
	s.metrics.IncrementDecision("allowed", grantReason)

	s.logAudit(ctx, audit.EventVoiceSessionGranted, userID, agentID, "granted", grantReason,
		"voice_conversation_count", newCount,
	)
	if grantReason == ReasonFreeTrial {
		s.logAudit(ctx, audit.EventTrialConsumed, userID, agentID, "granted", grantReason,
			"free_trials_remaining", *decision.FreeTrialsRemaining,
		)
	}

	return decision, nil
}

// deny records a negative decision and builds the denial response.
func (s *Service) deny(
	ctx context.Context,
	span trace.Span,
	userID id.UserID,
	agentID id.AgentID,
	reason string,
	cause error,
) *Decision {
	span.SetAttributes(
		attribute.String("outcome", "denied"),
		attribute.String("reason", reason),
	)
	s.metrics.IncrementDecision("denied", reason)

	attributes := []any{}
	if cause != nil {
		attributes = append(attributes, "error", cause.Error())
	}
	s.logAudit(ctx, audit.EventVoiceSessionDenied, userID, agentID, "denied", reason, attributes...)

	return &Decision{Allowed: false, AgentID: agentID}
}

// fail records an error outcome and returns err unchanged so call
// sites can hand it straight back.
func (s *Service) fail(
	ctx context.Context,
	span trace.Span,
	userID id.UserID,
	agentID id.AgentID,
	reason string,
	err error,
	audited bool,
) error {
	span.RecordError(err)
	span.SetAttributes(
		attribute.String("outcome", "error"),
		attribute.String("reason", reason),
	)
	s.metrics.IncrementDecision("error", reason)

	if s.logger != nil {
		s.logger.ErrorContext(ctx, "voice session evaluation failed",
			"user_id", userID,
			"agent_id", agentID,
			"reason", reason,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	if audited {
		s.emitEvent(ctx, audit.EventVoiceSessionError, userID, agentID, "", reason)
	}
	return err
}

// logAudit writes the audit-grade log line and emits the matching
// audit event.
func (s *Service) logAudit(
	ctx context.Context,
	action audit.AuditEvent,
	userID id.UserID,
	agentID id.AgentID,
	decision, reason string,
	attributes ...any,
) {
	args := append([]any{
		"user_id", userID,
		"agent_id", agentID,
		"decision", decision,
	}, attributes...)
	if reason != "" {
		args = append(args, "reason", reason)
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		args = append(args, "request_id", requestID)
	}
	args = append(args, "event", string(action), "log_type", "audit")
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(action), args...)
	}

	s.emitEvent(ctx, action, userID, agentID, decision, reason)
}

func (s *Service) emitEvent(
	ctx context.Context,
	action audit.AuditEvent,
	userID id.UserID,
	agentID id.AgentID,
	decision, reason string,
) {
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		Timestamp:         requestcontext.Now(ctx),
		UserID:            userID,
		AgentID:           agentID.String(),
		Action:            string(action),
		Decision:          decision,
		Reason:            reason,
		DeviceName:        requestcontext.DeviceName(ctx),
		DeviceFingerprint: requestcontext.DeviceFingerprint(ctx),
		RequestID:         requestcontext.RequestID(ctx),
	})
}
