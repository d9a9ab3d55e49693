// Package auth trusts the hosting platform's authentication layer. The
// platform terminates user auth and forwards the resolved identity in the
// X-User-ID header; this middleware validates the identity's shape and,
// when configured, a shared internal secret proving the request came
// through the platform.
package auth

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"

	id "voicegate/pkg/domain"
	request "voicegate/pkg/platform/middleware/request"
	"voicegate/pkg/requestcontext"
)

// Headers set by the hosting platform on forwarded requests.
const (
	HeaderUserID       = "X-User-ID"
	HeaderInternalAuth = "X-Internal-Auth"
)

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireIdentity creates middleware that rejects requests without a valid
// forwarded identity. An empty internalSecret skips the secret check for
// deployments where the network path already guarantees provenance.
func RequireIdentity(internalSecret string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if internalSecret != "" {
				provided := r.Header.Get(HeaderInternalAuth)
				if subtle.ConstantTimeCompare([]byte(provided), []byte(internalSecret)) != 1 {
					logger.WarnContext(ctx, "internal auth secret mismatch",
						"request_id", request.GetRequestID(ctx),
					)
					writeJSONError(w, http.StatusUnauthorized, "unauthorized", "invalid internal credentials")
					return
				}
			}

			rawUserID := r.Header.Get(HeaderUserID)
			if rawUserID == "" {
				logger.WarnContext(ctx, "request missing platform identity",
					"request_id", request.GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "missing platform identity")
				return
			}

			userID, err := id.ParseUserID(rawUserID)
			if err != nil {
				logger.WarnContext(ctx, "request carries malformed platform identity",
					"error", err,
					"request_id", request.GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "invalid platform identity")
				return
			}

			ctx = requestcontext.WithUserID(ctx, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
