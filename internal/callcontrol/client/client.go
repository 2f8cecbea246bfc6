// Package client provides the HTTP client for the external call-control
// service that places and tears down calls.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"dialer_backend/platform/logger"

	"github.com/google/uuid"
)

// Client is the HTTP client for the call-control API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	log        *logger.Logger
}

// New creates a new call-control API client.
func New(baseURL, apiKey string, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		log:        log,
	}
}

type initiateRequest struct {
	To     string `json:"to"`
	LeadID string `json:"leadId"`
}

type initiateResponse struct {
	CallID string `json:"callId"`
}

// InitiateCall asks call control to dial the number. It returns the
// provider's call ID; lifecycle updates arrive later via webhook.
func (c *Client) InitiateCall(ctx context.Context, phoneNumber string, leadID uuid.UUID) (string, error) {
	body, err := json.Marshal(initiateRequest{To: phoneNumber, LeadID: leadID.String()})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	reqURL := c.baseURL + "/v1/calls"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("call-control request failed", "error", err, "url", reqURL)
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		// Success - continue to decode
	case http.StatusUnauthorized:
		c.log.Error("call-control unauthorized", "status", resp.StatusCode)
		return "", fmt.Errorf("unauthorized: invalid API key")
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		c.log.Error("call-control rejected dial", "status", resp.StatusCode)
		return "", fmt.Errorf("dial rejected: status %d", resp.StatusCode)
	default:
		c.log.Error("call-control upstream error", "status", resp.StatusCode)
		return "", fmt.Errorf("upstream error: status %d", resp.StatusCode)
	}

	var out initiateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.log.Error("call-control decode failed", "error", err)
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.CallID == "" {
		return "", fmt.Errorf("call-control returned empty call id")
	}
	return out.CallID, nil
}

// EndCall asks call control to hang up an in-flight call. A call the
// provider no longer knows about is treated as already ended.
func (c *Client) EndCall(ctx context.Context, callID string) error {
	reqURL := fmt.Sprintf("%s/v1/calls/%s/hangup", c.baseURL, url.PathEscape(callID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("call-control hangup failed", "error", err, "callId", callID)
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		c.log.Error("call-control hangup error", "status", resp.StatusCode, "callId", callID)
		return fmt.Errorf("upstream error: status %d", resp.StatusCode)
	}
}
