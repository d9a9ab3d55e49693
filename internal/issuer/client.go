// Package issuer mints voice-session tokens. The remote client fronts
// the production token service; the JWT issuer is a self-contained
// signer for local development. Tokens are opaque to this service and
// never persisted.
package issuer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	id "voicegate/pkg/domain"
)

// Config carries the remote issuer endpoint and service credential.
type Config struct {
	BaseURL string
	APIKey  string
}

type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient builds a remote issuer client. A nil httpClient falls back
// to a bounded default.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{cfg: cfg, http: httpClient}
}

// Configured reports whether the service credential is present. The
// gate checks this before issuing and fails hard when it is not.
func (c *Client) Configured() bool {
	return c.cfg.BaseURL != "" && c.cfg.APIKey != ""
}

// Issue requests a session token for the agent. Non-2xx responses and
// transport failures are errors; no retries.
func (c *Client) Issue(ctx context.Context, agentID id.AgentID) (string, error) {
	endpoint := fmt.Sprintf("%s/v1/agents/%s/session-token",
		strings.TrimRight(c.cfg.BaseURL, "/"),
		url.PathEscape(agentID.String()),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build issuer request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("issuer responded with status %d", resp.StatusCode)
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode issuer response: %w", err)
	}
	if body.Token == "" {
		return "", fmt.Errorf("issuer returned an empty token")
	}
	return body.Token, nil
}
