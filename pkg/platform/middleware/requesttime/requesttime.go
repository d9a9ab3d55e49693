// Package requesttime pins a single "now" per HTTP request. Audit events,
// account timestamps, and log lines within one request all agree on the
// time, and tests can inject a fixed clock through the same context slot.
package requesttime

import (
	"net/http"
	"time"

	"voicegate/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request and
// stores it in the context. Read it back with requestcontext.Now.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
