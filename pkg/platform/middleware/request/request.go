// Package request assigns each request a correlation ID. Every log line and
// audit event downstream carries it, so one ID follows a request across the
// service and its outbound calls.
package request

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"voicegate/pkg/requestcontext"
)

// HeaderRequestID is honored on inbound requests so platform-assigned IDs
// survive the hop, and set on every response.
const HeaderRequestID = "X-Request-ID"

// ID creates middleware that ensures a request ID is present. Inbound IDs
// are reused; otherwise a fresh UUID is assigned.
func ID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set(HeaderRequestID, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
