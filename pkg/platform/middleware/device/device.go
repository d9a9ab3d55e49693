// Package device annotates requests with a device display name and stable
// fingerprint derived from the client user agent. Audit events record these
// instead of raw user-agent strings.
package device

import (
	"net/http"

	"voicegate/pkg/requestcontext"
)

// Describer turns a raw user agent into a display name and fingerprint.
type Describer interface {
	Describe(rawUA string) (name, fingerprint string)
}

// Describe creates middleware that derives device information from the
// user agent already captured in the context. Apply after the client
// metadata middleware.
func Describe(describer Describer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			name, fingerprint := describer.Describe(requestcontext.UserAgent(ctx))

			ctx = requestcontext.WithDeviceName(ctx, name)
			if fingerprint != "" {
				ctx = requestcontext.WithDeviceFingerprint(ctx, fingerprint)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
