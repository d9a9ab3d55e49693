// Package domain holds the typed identifiers shared across the service.
// Distinct ID types keep user, session, and agent identifiers from being
// swapped at compile time.
package domain

import (
	"strings"
	"unicode"

	"github.com/google/uuid"

	dErrors "voicegate/pkg/domain-errors"
)

// UserID identifies an account holder. The value is the identity resolved by
// the hosting platform's authentication layer.
type UserID uuid.UUID

// SessionID identifies a single issued voice session.
type SessionID uuid.UUID

// AgentID names a voice agent as known to the token issuer. The value is
// opaque to this service beyond basic syntax checks.
type AgentID string

// maxAgentIDLength bounds agent identifiers at the trust boundary.
const maxAgentIDLength = 128

func parseUUID(raw, kind string) (uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be empty")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be the nil UUID")
	}
	return parsed, nil
}

// ParseUserID validates a raw identity string. IDs must be valid, non-empty,
// non-nil UUIDs.
func ParseUserID(raw string) (UserID, error) {
	parsed, err := parseUUID(raw, "user id")
	if err != nil {
		return UserID{}, err
	}
	return UserID(parsed), nil
}

// ParseSessionID validates a raw session identifier.
func ParseSessionID(raw string) (SessionID, error) {
	parsed, err := parseUUID(raw, "session id")
	if err != nil {
		return SessionID{}, err
	}
	return SessionID(parsed), nil
}

// NewSessionID mints a fresh session identifier.
func NewSessionID() SessionID {
	return SessionID(uuid.New())
}

// ParseAgentID validates a raw agent identifier: non-empty, bounded length,
// no whitespace or control characters.
func ParseAgentID(raw string) (AgentID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "agent id cannot be empty")
	}
	if len(trimmed) > maxAgentIDLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "agent id exceeds maximum length")
	}
	for _, r := range trimmed {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "agent id contains invalid characters")
		}
	}
	return AgentID(trimmed), nil
}

func (u UserID) String() string { return uuid.UUID(u).String() }

// IsNil reports whether the ID is the zero value.
func (u UserID) IsNil() bool { return uuid.UUID(u) == uuid.Nil }

// MarshalText renders the ID as its canonical UUID string so structs carrying
// typed IDs serialize to JSON as strings rather than byte arrays.
func (u UserID) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText parses the canonical UUID string form.
func (u *UserID) UnmarshalText(text []byte) error {
	parsed, err := ParseUserID(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

func (s SessionID) String() string { return uuid.UUID(s).String() }

// IsNil reports whether the ID is the zero value.
func (s SessionID) IsNil() bool { return uuid.UUID(s) == uuid.Nil }

// MarshalText renders the ID as its canonical UUID string.
func (s SessionID) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses the canonical UUID string form.
func (s *SessionID) UnmarshalText(text []byte) error {
	parsed, err := ParseSessionID(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (a AgentID) String() string { return string(a) }

// IsZero reports whether the agent ID is unset.
func (a AgentID) IsZero() bool { return a == "" }
