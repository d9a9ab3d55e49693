// Package httpapi assembles the HTTP surface: the public voice-session
// endpoint, liveness and readiness probes, Prometheus metrics, and the
// token-protected admin group.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"voicegate/internal/platform/metrics"
	"voicegate/pkg/platform/httputil"
	"voicegate/pkg/platform/middleware/admin"
	"voicegate/pkg/platform/middleware/auth"
	"voicegate/pkg/platform/middleware/device"
	"voicegate/pkg/platform/middleware/metadata"
	"voicegate/pkg/platform/middleware/request"
	"voicegate/pkg/platform/middleware/requesttime"
)

// readyTimeout bounds the whole readiness sweep, not each check.
const readyTimeout = 5 * time.Second

// Registrar mounts a handler's routes on a router group.
type Registrar interface {
	Register(r chi.Router)
}

// HealthChecker reports one dependency's readiness.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Deps carries everything the router mounts. Gate is the public
// surface; Admin is mounted only when an admin credential is set.
type Deps struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	Gate  Registrar
	Admin Registrar

	// Device is optional; without it audit events carry no device names.
	Device device.Describer

	InternalAuthSecret string
	AdminToken         string
	AdminTokenHash     string

	// ReadyChecks run on every /readyz request, keyed by dependency name.
	ReadyChecks map[string]HealthChecker
}

// New assembles the router. Middleware order matters: the request ID
// and time come first so every later log line can carry them, and the
// metrics wrapper sits last so it times the handlers alone.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(request.ID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	if deps.Device != nil {
		r.Use(device.Describe(deps.Device))
	}
	r.Use(metrics.Middleware(deps.Metrics))

	r.Get("/healthz", handleLive)
	r.Get("/readyz", handleReady(deps.Logger, deps.ReadyChecks))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireIdentity(deps.InternalAuthSecret, deps.Logger))
		deps.Gate.Register(r)
	})

	if deps.Admin != nil && (deps.AdminToken != "" || deps.AdminTokenHash != "") {
		r.Route("/admin", func(r chi.Router) {
			r.Use(admin.RequireAdminToken(deps.AdminToken, deps.AdminTokenHash, deps.Logger))
			deps.Admin.Register(r)
		})
	}

	return r
}

func handleLive(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady probes every registered dependency. Any failure flips the
// response to 503 so the platform stops routing traffic here. Failure
// detail stays in the logs; the body only names the broken dependency.
func handleReady(logger *slog.Logger, checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check.Health(ctx); err != nil {
				status = http.StatusServiceUnavailable
				results[name] = "unavailable"
				if logger != nil {
					logger.WarnContext(ctx, "readiness check failed",
						"dependency", name,
						"error", err,
					)
				}
				continue
			}
			results[name] = "ok"
		}

		body := map[string]any{"status": "ok", "checks": results}
		if status != http.StatusOK {
			body["status"] = "degraded"
		}
		httputil.WriteJSON(w, status, body)
	}
}
