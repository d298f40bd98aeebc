// Package client provides a Go client for the session replay API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// BaseClient provides common HTTP functionality for the API clients.
type BaseClient struct {
	BaseURL    string
	UserID     string
	HTTPClient *http.Client
}

// NewBaseClient creates a new base client
func NewBaseClient(baseURL string, userID string) *BaseClient {
	return &BaseClient{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		UserID:     userID,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// GetUserIDOrDefault returns the given userID, falling back to the client's
// configured default.
func (c *BaseClient) GetUserIDOrDefault(userID string) string {
	if userID != "" {
		return userID
	}
	return c.UserID
}

func (c *BaseClient) do(ctx context.Context, method, path string, body interface{}, userID string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		q := req.URL.Query()
		q.Set("user_id", userID)
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// Get performs a GET request against path.
func (c *BaseClient) Get(ctx context.Context, path string, userID string) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, path, nil, userID)
}

// Post performs a POST request with a JSON body.
func (c *BaseClient) Post(ctx context.Context, path string, body interface{}, userID string) (*http.Response, error) {
	return c.do(ctx, http.MethodPost, path, body, userID)
}

// DecodeResponse decodes a JSON response body into target, treating non-2xx
// statuses as errors.
func DecodeResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if target == nil {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
