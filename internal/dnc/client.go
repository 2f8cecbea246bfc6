// Package dnc provides the client for the external Do-Not-Call registry
// the compliance gate verifies against.
package dnc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"dialer_backend/internal/dialer/compliance"
	"dialer_backend/platform/config"
	"dialer_backend/platform/logger"
)

// Client is the HTTP client for the DNC registry API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	log        *logger.Logger
}

// New creates a new DNC registry client.
func New(baseURL, apiKey string, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		log:        log,
	}
}

// NewChecker returns the registry checker for the compliance gate: the
// HTTP client when a registry is configured, the static pass otherwise.
func NewChecker(cfg config.DNCConfig, log *logger.Logger) compliance.RegistryChecker {
	if !cfg.IsDNCRegistryEnabled() {
		log.Warn("DNC registry not configured, treating dial set as clear")
		return StaticChecker{Clear: true}
	}
	return New(cfg.GetDNCRegistryURL(), cfg.GetDNCRegistryAPIKey(), log)
}

type verifyResponse struct {
	Clear bool `json:"clear"`
}

// Check verifies the active dial set against the registry. It returns
// true when the set is clear to dial.
func (c *Client) Check(ctx context.Context) (bool, error) {
	reqURL := c.baseURL + "/v1/verify"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("dnc registry request failed", "error", err)
		return false, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Error("dnc registry upstream error", "status", resp.StatusCode)
		return false, fmt.Errorf("upstream error: status %d", resp.StatusCode)
	}

	var out verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.log.Error("dnc registry decode failed", "error", err)
		return false, fmt.Errorf("decode response: %w", err)
	}
	return out.Clear, nil
}

type lookupResponse struct {
	Listed bool `json:"listed"`
}

// Lookup checks a single number against the registry. Used by the
// background re-verify task to keep stored do-not-call flags current.
func (c *Client) Lookup(ctx context.Context, phoneNumber string) (bool, error) {
	reqURL := fmt.Sprintf("%s/v1/numbers/%s", c.baseURL, url.PathEscape(phoneNumber))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("dnc lookup failed", "error", err)
		return false, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Success - continue to decode
	case http.StatusNotFound:
		// Unknown number is not listed.
		return false, nil
	default:
		c.log.Error("dnc lookup upstream error", "status", resp.StatusCode)
		return false, fmt.Errorf("upstream error: status %d", resp.StatusCode)
	}

	var out lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return out.Listed, nil
}

// StaticChecker is a fixed-result checker for deployments without a
// registry integration.
type StaticChecker struct {
	Clear bool
}

// Check returns the configured result.
func (s StaticChecker) Check(_ context.Context) (bool, error) {
	return s.Clear, nil
}
