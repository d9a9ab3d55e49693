package issuer

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "voicegate/pkg/domain"
	dErrors "voicegate/pkg/domain-errors"
)

// Claims are the payload of locally minted session tokens.
type Claims struct {
	SessionID string `json:"session_id"`
	AgentID   string `json:"agent_id"`
	jwt.RegisteredClaims
}

// JWTIssuer signs short-lived HS256 session tokens in-process. Meant
// for development deployments where no remote issuer exists; the token
// claims mirror what the remote issuer embeds.
type JWTIssuer struct {
	signingKey []byte
	ttl        time.Duration
}

func NewJWTIssuer(signingKey string, ttl time.Duration) *JWTIssuer {
	return &JWTIssuer{signingKey: []byte(signingKey), ttl: ttl}
}

// Configured reports whether the signer can mint tokens.
func (j *JWTIssuer) Configured() bool {
	return len(j.signingKey) > 0 && j.ttl > 0
}

// Issue mints a fresh session token for the agent.
func (j *JWTIssuer) Issue(_ context.Context, agentID id.AgentID) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		SessionID: id.NewSessionID().String(),
		AgentID:   agentID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "voicegate",
			ID:        uuid.NewString(),
		},
	})

	signed, err := token.SignedString(j.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign session token")
	}
	return signed, nil
}

// Parse validates a locally minted token and returns its claims.
func (j *JWTIssuer) Parse(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return j.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "session token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid session token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid session token")
	}
	return claims, nil
}
