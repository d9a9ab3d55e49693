// Package device derives display names and stable fingerprints from client
// user-agent strings. Audit events record these instead of raw user agents.
package device

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mssola/useragent"
)

// Service computes device fingerprints for audit correlation. When disabled
// it produces empty fingerprints and events carry only the display name.
type Service struct {
	enabled bool
}

// NewService creates a device service. Pass false to skip fingerprinting.
func NewService(enabled bool) *Service {
	return &Service{enabled: enabled}
}

// ParseUserAgent turns a raw user-agent string into a short display name
// such as "Chrome on Intel Mac OS X 10_15_7". Unparseable agents still
// produce a non-empty name.
func ParseUserAgent(rawUA string) string {
	if rawUA == "" {
		return "Unknown Device"
	}

	ua := useragent.New(rawUA)
	browser, _ := ua.Browser()
	os := ua.OS()

	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = "Unknown OS"
	}

	return strings.TrimSpace(fmt.Sprintf("%s on %s", browser, os))
}

// ComputeFingerprint hashes the browser family, its major version, and the
// platform into a stable hex digest. Minor browser updates do not change
// the result, so one device keeps one fingerprint across auto-updates.
func (s *Service) ComputeFingerprint(rawUA string) string {
	if !s.enabled {
		return ""
	}

	ua := useragent.New(rawUA)
	browser, version := ua.Browser()

	major := version
	if i := strings.Index(version, "."); i >= 0 {
		major = version[:i]
	}

	material := fmt.Sprintf("%s|%s|%s|%s", browser, major, ua.OS(), ua.Platform())
	sum := sha256.Sum256([]byte(material))
	return hex.EncodeToString(sum[:])
}

// Describe resolves both audit fields for a raw user agent in one call.
func (s *Service) Describe(rawUA string) (name, fingerprint string) {
	return ParseUserAgent(rawUA), s.ComputeFingerprint(rawUA)
}
