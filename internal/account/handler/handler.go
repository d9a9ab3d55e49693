package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"voicegate/internal/account/service"
	id "voicegate/pkg/domain"
	dErrors "voicegate/pkg/domain-errors"
	"voicegate/pkg/platform/httputil"
	"voicegate/pkg/requestcontext"
)

// HeaderAdminActor names the operator behind an admin request for the
// audit trail. Optional; unattributed requests record "admin".
const HeaderAdminActor = "X-Admin-Actor"

// Service defines the interface for account administration.
type Service interface {
	GetUsage(ctx context.Context, userID id.UserID) (*service.Usage, error)
	SetTrialLimitOverride(ctx context.Context, userID id.UserID, limit *int, actor string) error
}

// Handler wires the admin account endpoints to the admin service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an admin account handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the account endpoints on the router. The caller is
// expected to wrap the router in the admin token middleware.
func (h *Handler) Register(r chi.Router) {
	r.Get("/accounts/{user_id}/usage", h.HandleGetUsage)
	r.Put("/accounts/{user_id}/trial-limit", h.HandleSetTrialLimit)
}

// HandleGetUsage handles GET /admin/accounts/{user_id}/usage requests.
func (h *Handler) HandleGetUsage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID, ok := h.userIDFromPath(w, r)
	if !ok {
		return
	}

	usage, err := h.service.GetUsage(ctx, userID)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeNotFound) {
			h.logger.WarnContext(ctx, "usage requested for unknown account",
				"request_id", requestID,
				"user_id", userID,
			)
		} else {
			h.logger.ErrorContext(ctx, "usage report failed",
				"request_id", requestID,
				"user_id", userID,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromUsage(usage))
}

// HandleSetTrialLimit handles PUT /admin/accounts/{user_id}/trial-limit
// requests. A null limit clears the override.
func (h *Handler) HandleSetTrialLimit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID, ok := h.userIDFromPath(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[SetTrialLimitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	actor := r.Header.Get(HeaderAdminActor)
	if actor == "" {
		actor = "admin"
	}

	if err := h.service.SetTrialLimitOverride(ctx, userID, req.Limit, actor); err != nil {
		if dErrors.Is(err, dErrors.CodeNotFound) {
			h.logger.WarnContext(ctx, "override requested for unknown account",
				"request_id", requestID,
				"user_id", userID,
			)
		} else {
			h.logger.ErrorContext(ctx, "trial limit override failed",
				"request_id", requestID,
				"user_id", userID,
				"actor_id", actor,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) userIDFromPath(w http.ResponseWriter, r *http.Request) (id.UserID, bool) {
	userID, err := id.ParseUserID(chi.URLParam(r, "user_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.UserID{}, false
	}
	return userID, true
}
