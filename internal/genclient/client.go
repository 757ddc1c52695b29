// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package genclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the generation client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeStatus
	ErrTypeInvalidResponse
)

// String returns a short name for logging.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeConnection:
		return "connection"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeStatus:
		return "status"
	case ErrTypeInvalidResponse:
		return "invalid_response"
	default:
		return "unknown"
	}
}

// Sentinel errors for easy checking.
var (
	ErrNotReachable = &ClientError{Type: ErrTypeConnection, Message: "generation endpoint is not reachable"}
	ErrTimeout      = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
)

// IsTimeout reports whether err is a client timeout.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	return errors.As(err, &clientErr) && clientErr.Type == ErrTypeTimeout
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// DefaultBaseURL is where the generation backend listens by default.
const DefaultBaseURL = "http://localhost:8000"

// DefaultTimeout bounds a single generation request.
const DefaultTimeout = 120 * time.Second

// maxErrorBody caps how much of a failed response is read for the log.
const maxErrorBody = 4 << 10

// ClientConfig holds configuration options for the client.
type ClientConfig struct {
	// BaseURL is the endpoint base URL (default: http://localhost:8000)
	BaseURL string

	// Timeout bounds each request. Zero means wait indefinitely.
	Timeout time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the generation endpoint.
//
// The Client is safe for concurrent use. SetConfig may be called while
// requests are running; it applies to the next request.
type Client struct {
	mu         sync.RWMutex
	config     ClientConfig
	httpClient *http.Client
}

// NewClient creates a client with the default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a client with a custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	c := &Client{
		// Per-request deadlines come from the context
		httpClient: &http.Client{},
	}
	c.SetConfig(config)
	return c
}

// SetConfig replaces the client configuration.
func (c *Client) SetConfig(config *ClientConfig) {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := *config

	// Fill in defaults for any zero values
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout < 0 {
		cfg.Timeout = 0
	}

	c.mu.Lock()
	c.config = cfg
	c.mu.Unlock()
}

// Config returns a copy of the current configuration.
func (c *Client) Config() ClientConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

// BaseURL returns the configured endpoint base URL.
func (c *Client) BaseURL() string {
	return c.Config().BaseURL
}

// CloseIdleConnections closes keep-alive connections held by the client.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// CheckHealth verifies that the endpoint is reachable and reports ok.
func (c *Client) CheckHealth(ctx context.Context) error {
	cfg := c.Config()
	ctx, cancel := withTimeout(ctx, cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.BaseURL+"/", nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ClientError{
			Type:    ErrTypeStatus,
			Message: "unexpected status from endpoint: " + resp.Status,
		}
	}

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode health response", Cause: err}
	}
	if health.Status != "ok" {
		return &ClientError{Type: ErrTypeStatus, Message: fmt.Sprintf("endpoint reports status %q", health.Status)}
	}

	return nil
}

// =============================================================================
// GENERATION
// =============================================================================

// Generate sends one generation request and returns the decoded response.
// Any non-2xx status, transport failure, or undecodable body is an error.
func (c *Client) Generate(ctx context.Context, request GenerateRequest) (*GenerateResponse, error) {
	cfg := c.Config()
	ctx, cancel := withTimeout(ctx, cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(request)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.BaseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp)
	}

	var result GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	return &result, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	if errors.Is(err, context.Canceled) {
		return &ClientError{Type: ErrTypeConnection, Message: "request canceled", Cause: err}
	}
	return &ClientError{Type: ErrTypeConnection, Message: ErrNotReachable.Message, Cause: err}
}

func statusError(resp *http.Response) error {
	msg := "generation request failed: " + resp.Status

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var errBody ErrorResponse
	if err := json.Unmarshal(raw, &errBody); err == nil && errBody.Detail != "" {
		msg += ": " + errBody.Detail
	}

	return &ClientError{Type: ErrTypeStatus, Message: msg}
}
