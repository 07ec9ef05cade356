// Package hunter provides a client for the Hunter email verifier API.
package hunter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"github.com/talentbridge/enrich-cli/internal/resilience"
)

// Client defines the mailbox verification operations.
type Client interface {
	// Verify checks a single address for deliverability.
	Verify(ctx context.Context, email string) (*Verification, error)
}

// Verification is the deliverability verdict for one address.
type Verification struct {
	Email  string `json:"email"`
	Status string `json:"status"` // "valid", "invalid", "accept_all", "unknown"
	Result string `json:"result"` // "deliverable", "undeliverable", "risky"
	Score  int    `json:"score"`  // 0-100
}

// Deliverable reports whether the verifier considered the mailbox real.
func (v *Verification) Deliverable() bool {
	return v.Result == "deliverable" || v.Status == "valid"
}

// verifyResponse is the API envelope.
type verifyResponse struct {
	Data Verification `json:"data"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Hunter API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://api.hunter.io/v2",
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Verify(ctx context.Context, email string) (*Verification, error) {
	u := c.baseURL + "/email-verifier?email=" + url.QueryEscape(email) + "&api_key=" + url.QueryEscape(c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, eris.Wrap(err, "hunter: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "hunter: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "hunter: read response body")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("hunter: unexpected status %d: %s", resp.StatusCode, string(body))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	var result verifyResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "hunter: unmarshal response")
	}

	return &result.Data, nil
}
