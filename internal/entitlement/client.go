// Package entitlement queries the subscription provider that knows
// whether a user has paid for voice access. The gate treats every
// failure here as "not entitled", so the client reports errors
// faithfully and leaves the fail-closed translation to its caller.
package entitlement

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

// Config carries the provider endpoint and credentials.
type Config struct {
	BaseURL   string
	APIKey    string
	ProjectID string
}

// Item is a single subscription entry from the provider.
type Item struct {
	Status    string     `json:"status"`
	ProductID string     `json:"product_id,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Result is the outcome of a completed provider lookup.
type Result struct {
	Entitled bool
	Items    []Item
}

// statusActive is the only status that grants access. The provider also
// reports "expired", "cancelled" and "trialing"; none of those count.
const statusActive = "active"

type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient builds a provider client. A nil httpClient falls back to a
// bounded default so a hung provider cannot pin request goroutines.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{cfg: cfg, http: httpClient}
}

// Configured reports whether the provider can be called at all.
func (c *Client) Configured() bool {
	return c.cfg.BaseURL != "" && c.cfg.APIKey != "" && c.cfg.ProjectID != ""
}

// Check looks up the user's subscriptions. An empty item list is a
// successful lookup meaning "no subscriptions". Transport errors and
// non-2xx responses are returned as errors; no retries.
func (c *Client) Check(ctx context.Context, userID id.UserID) (*Result, error) {
	endpoint := fmt.Sprintf("%s/projects/%s/subscribers/%s/subscriptions",
		strings.TrimRight(c.cfg.BaseURL, "/"),
		url.PathEscape(c.cfg.ProjectID),
		url.PathEscape(userID.String()),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build entitlement request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("entitlement lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("entitlement lookup failed with status %d", resp.StatusCode)
	}

	var body struct {
		Items []Item `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode entitlement response: %w", err)
	}

	result := &Result{Items: body.Items}
	for _, item := range body.Items {
		if item.Status == statusActive {
			result.Entitled = true
			break
		}
	}
	return result, nil
}
