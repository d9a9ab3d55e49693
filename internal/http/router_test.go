package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicegate/pkg/platform/middleware/auth"
	"voicegate/pkg/platform/middleware/request"
	"voicegate/pkg/requestcontext"
)

type registrarFunc func(r chi.Router)

func (f registrarFunc) Register(r chi.Router) { f(r) }

type healthFunc func(ctx context.Context) error

func (f healthFunc) Health(ctx context.Context) error { return f(ctx) }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// echoGate registers a route that reports whether an identity reached it.
func echoGate() Registrar {
	return registrarFunc(func(r chi.Router) {
		r.Post("/voice/sessions", func(w http.ResponseWriter, req *http.Request) {
			userID := requestcontext.UserID(req.Context())
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(userID.String()))
		})
	})
}

func TestRouterHealthz(t *testing.T) {
	router := New(Deps{Logger: testLogger(), Gate: echoGate()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestRouterReadyz(t *testing.T) {
	t.Run("all dependencies healthy", func(t *testing.T) {
		router := New(Deps{
			Logger: testLogger(),
			Gate:   echoGate(),
			ReadyChecks: map[string]HealthChecker{
				"account_store": healthFunc(func(context.Context) error { return nil }),
			},
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"account_store":"ok"`)
	})

	t.Run("failing dependency degrades readiness", func(t *testing.T) {
		router := New(Deps{
			Logger: testLogger(),
			Gate:   echoGate(),
			ReadyChecks: map[string]HealthChecker{
				"account_store": healthFunc(func(context.Context) error { return nil }),
				"kafka":         healthFunc(func(context.Context) error { return errors.New("no brokers") }),
			},
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
		assert.Contains(t, rec.Body.String(), `"kafka":"unavailable"`)
		assert.NotContains(t, rec.Body.String(), "no brokers", "failure detail stays out of the body")
	})
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router := New(Deps{Logger: testLogger(), Gate: echoGate()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
}

func TestRouterGateRequiresIdentity(t *testing.T) {
	router := New(Deps{Logger: testLogger(), Gate: echoGate()})

	t.Run("missing identity header is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/voice/sessions", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("platform identity reaches the handler", func(t *testing.T) {
		userID := uuid.NewString()
		req := httptest.NewRequest(http.MethodPost, "/voice/sessions", nil)
		req.Header.Set(auth.HeaderUserID, userID)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, userID, rec.Body.String())
	})
}

func TestRouterAdminGroup(t *testing.T) {
	adminRoutes := registrarFunc(func(r chi.Router) {
		r.Get("/accounts/{user_id}/usage", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})
	path := "/admin/accounts/" + uuid.NewString() + "/usage"

	t.Run("absent without an admin credential", func(t *testing.T) {
		router := New(Deps{Logger: testLogger(), Gate: echoGate(), Admin: adminRoutes})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("mounted behind the admin token", func(t *testing.T) {
		router := New(Deps{
			Logger:     testLogger(),
			Gate:       echoGate(),
			Admin:      adminRoutes,
			AdminToken: "super-secret",
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("X-Admin-Token", "super-secret")
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRouterAssignsRequestIDs(t *testing.T) {
	router := New(Deps{Logger: testLogger(), Gate: echoGate()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.NotEmpty(t, rec.Header().Get(request.HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(request.HeaderRequestID, "req-inbound")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "req-inbound", rec.Header().Get(request.HeaderRequestID))
}
