package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"voicegate/internal/gate"
	id "voicegate/pkg/domain"
	dErrors "voicegate/pkg/domain-errors"
	"voicegate/pkg/platform/httputil"
	"voicegate/pkg/requestcontext"
)

// Service defines the interface for voice session gating.
type Service interface {
	Evaluate(ctx context.Context, userID id.UserID, agentID id.AgentID) (*gate.Decision, error)
}

// Handler wires the voice session endpoint to the gate.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a gate handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the voice session endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/voice/sessions", h.HandleCreate)
}

// HandleCreate handles POST /voice/sessions requests. Allowed and denied
// outcomes both return 200; only errors use the error envelope.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	// Require a platform-forwarded identity
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	// Decode and validate request
	req, ok := httputil.DecodeAndPrepare[CreateVoiceSessionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	agentID := req.ParsedAgentID()

	// Run the gate
	decision, err := h.service.Evaluate(ctx, userID, agentID)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeNotFound) {
			h.logger.WarnContext(ctx, "voice session requested for unknown account",
				"request_id", requestID,
				"user_id", userID,
			)
		} else {
			h.logger.ErrorContext(ctx, "voice session evaluation failed",
				"request_id", requestID,
				"user_id", userID,
				"agent_id", agentID,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "voice session evaluated",
		"request_id", requestID,
		"user_id", userID,
		"agent_id", agentID,
		"allowed", decision.Allowed,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromDecision(decision))
}
