// Package admin guards the operator surface with a shared token. Deployments
// provide either the plaintext token or a bcrypt hash of it; the hash wins
// when both are set so the plaintext can be dropped from the environment.
package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	request "voicegate/pkg/platform/middleware/request"
)

// HeaderAdminToken carries the operator token on admin requests.
const HeaderAdminToken = "X-Admin-Token"

// RequireAdminToken creates middleware that rejects requests without the
// operator token. With both expectedToken and expectedHash empty every
// request is rejected; mount admin routes conditionally instead of relying
// on that.
func RequireAdminToken(expectedToken, expectedHash string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(HeaderAdminToken)

			if !adminTokenMatches(token, expectedToken, expectedHash) {
				ctx := r.Context()
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", request.GetRequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"admin token required"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func adminTokenMatches(token, expectedToken, expectedHash string) bool {
	if token == "" {
		return false
	}
	if expectedHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(expectedHash), []byte(token)) == nil
	}
	if expectedToken == "" {
		return false
	}
	// Constant-time comparison to prevent timing attacks.
	return subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) == 1
}
