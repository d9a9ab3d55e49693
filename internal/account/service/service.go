// Package service exposes the operator surface for accounts: usage
// reports and per-account trial limit overrides. It sits behind the
// admin router group and never touches the entitlement provider or the
// token issuer.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"voicegate/internal/account/models"
	"voicegate/internal/audit"
	id "voicegate/pkg/domain"
	dErrors "voicegate/pkg/domain-errors"
	"voicegate/pkg/platform/sentinel"
	"voicegate/pkg/requestcontext"
)

// recentEventLimit caps the audit events returned on a usage report.
const recentEventLimit = 20

// Config carries the tunable the admin surface shares with the gate.
type Config struct {
	// DefaultTrialLimit applies to accounts without an override.
	DefaultTrialLimit int
}

// Usage is the operator view of one account: the stored record plus the
// derived trial position and the recent audit trail.
type Usage struct {
	Account         *models.Account
	TrialLimit      int
	TrialsRemaining int
	RecentEvents    []audit.Event
}

// Service implements the admin operations.
type Service struct {
	accounts AccountStore
	auditLog AuditReader
	cfg      Config

	logger         *slog.Logger
	auditPublisher AuditPublisher
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

// New constructs the admin service.
func New(accounts AccountStore, auditLog AuditReader, cfg Config, opts ...Option) (*Service, error) {
	if accounts == nil {
		return nil, fmt.Errorf("account store is required")
	}
	if auditLog == nil {
		return nil, fmt.Errorf("audit reader is required")
	}
	if cfg.DefaultTrialLimit < 0 {
		return nil, fmt.Errorf("default trial limit cannot be negative")
	}

	s := &Service{
		accounts: accounts,
		auditLog: auditLog,
		cfg:      cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// GetUsage reports the trial position and recent audit trail for one
// account. The account record and the trail load concurrently.
func (s *Service) GetUsage(ctx context.Context, userID id.UserID) (*Usage, error) {
	var (
		account *models.Account
		events  []audit.Event
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := s.accounts.Get(gctx, userID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "account not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
		}
		account = a
		return nil
	})
	g.Go(func() error {
		list, err := s.auditLog.ListByUser(gctx, userID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load audit trail")
		}
		if len(list) > recentEventLimit {
			list = list[:recentEventLimit]
		}
		events = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Usage{
		Account:         account,
		TrialLimit:      account.TrialLimit(s.cfg.DefaultTrialLimit),
		TrialsRemaining: account.TrialsRemaining(s.cfg.DefaultTrialLimit),
		RecentEvents:    events,
	}, nil
}

// SetTrialLimitOverride stores, or clears with nil, the per-account
// trial limit. actor identifies the operator for the audit trail.
func (s *Service) SetTrialLimitOverride(ctx context.Context, userID id.UserID, limit *int, actor string) error {
	if limit != nil && *limit < 0 {
		return dErrors.New(dErrors.CodeValidation, "trial limit override cannot be negative")
	}

	if err := s.accounts.SetTrialLimitOverride(ctx, userID, limit); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal,
			fmt.Sprintf("failed to set trial limit override for user %s", userID))
	}

	s.logAudit(ctx, userID, limit, actor)
	return nil
}

func (s *Service) logAudit(ctx context.Context, userID id.UserID, limit *int, actor string) {
	reason := "override cleared"
	if limit != nil {
		reason = fmt.Sprintf("limit set to %d", *limit)
	}

	args := []any{
		"user_id", userID,
		"actor_id", actor,
		"reason", reason,
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		args = append(args, "request_id", requestID)
	}
	args = append(args, "event", string(audit.EventTrialLimitOverrideSet), "log_type", "audit")
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(audit.EventTrialLimitOverrideSet), args...)
	}

	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		UserID:    userID,
		Action:    string(audit.EventTrialLimitOverrideSet),
		Reason:    reason,
		ActorID:   actor,
		RequestID: requestcontext.RequestID(ctx),
	})
}
