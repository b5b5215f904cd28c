// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package zenbot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/zenbot-labs/zenbot-tui/internal/logging"
	"github.com/zenbot-labs/zenbot-tui/internal/model"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultBaseURL is the address of a locally running ZenBot service.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeout bounds non-streaming requests. The chat stream has no timeout.
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize caps non-streaming response bodies.
	MaxResponseSize = 10 * 1024 * 1024
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNoBody indicates a 2xx response that carried no body to read.
	ErrNoBody = errors.New("response has no body")

	// ErrEmptyMessage indicates a chat request with a blank message.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrInvalidResponse indicates a 2xx response whose body is not the expected JSON.
	ErrInvalidResponse = errors.New("invalid response")
)

// APIError represents a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if detail := detailFromBody(body); detail != "" {
		body = detail
	}
	if body == "" {
		return fmt.Sprintf("zenbot error (HTTP %d)", e.StatusCode)
	}
	return fmt.Sprintf("zenbot error (HTTP %d): %s", e.StatusCode, body)
}

// detailFromBody extracts the "detail" field of a FastAPI-style error body.
func detailFromBody(body string) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return ""
	}
	return payload.Detail
}

// =============================================================================
// REQUEST / RESPONSE TYPES
// =============================================================================

// ChatRequest is the body of both chat endpoints.
type ChatRequest struct {
	Message string     `json:"message"`
	Mode    model.Mode `json:"mode"`
}

// ChatResponse is the body of the non-streaming chat endpoint.
type ChatResponse struct {
	Response       string            `json:"response"`
	Evaluation     *model.Evaluation `json:"evaluation"`
	ConversationID int               `json:"conversation_id"`
}

// HealthResponse is the optional body of the health endpoint.
type HealthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	ZenbotReady *bool  `json:"zenbot_ready"`
}

// HistoryEntry is one stored exchange.
type HistoryEntry struct {
	ID         int               `json:"id"`
	Timestamp  string            `json:"timestamp"`
	Query      string            `json:"query"`
	Response   string            `json:"response"`
	Mode       model.Mode        `json:"mode"`
	Evaluation *model.Evaluation `json:"evaluation"`
}

// HistoryResponse is the body of the history endpoint.
type HistoryResponse struct {
	Total         int            `json:"total"`
	Conversations []HistoryEntry `json:"conversations"`
}

// ServiceInfo is the body of the service root.
type ServiceInfo struct {
	Service   string   `json:"service"`
	Version   string   `json:"version"`
	Status    string   `json:"status"`
	Endpoints []string `json:"endpoints"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to a ZenBot service. It is safe for concurrent use.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	streamClient *http.Client
}

// NewClient creates a client for the service at baseURL.
// An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: DefaultTimeout},
		streamClient: &http.Client{},
	}
}

// WithTimeout sets the timeout for non-streaming requests.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// WithHTTPClient replaces the underlying HTTP client for all requests.
// The stream keeps no timeout regardless of hc.Timeout.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	stream := *hc
	stream.Timeout = 0
	c.streamClient = &stream
	return c
}

// BaseURL returns the service address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// ENDPOINTS
// =============================================================================

// Health probes the service. Any 2xx response with a well-formed JSON body
// counts as healthy; the returned error explains anything else.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/health", nil)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: health body is not JSON", ErrInvalidResponse)
	}
	health := &HealthResponse{}
	// Shape is optional; a non-object body is still healthy.
	_ = json.Unmarshal(body, health)
	return health, nil
}

// Metrics fetches the aggregate quality snapshot.
func (c *Client) Metrics(ctx context.Context) (*model.Metrics, error) {
	var metrics model.Metrics
	if err := c.getJSON(ctx, "/api/metrics", &metrics); err != nil {
		return nil, err
	}
	return &metrics, nil
}

// Chat sends one message and waits for the complete answer.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrEmptyMessage
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	body, err := c.do(ctx, http.MethodPost, "/api/chat", payload)
	if err != nil {
		return nil, err
	}
	var resp ChatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if resp.Evaluation != nil {
		normalized := resp.Evaluation.Normalize()
		resp.Evaluation = &normalized
	}
	return &resp, nil
}

// History returns up to limit of the most recent stored exchanges.
// A limit of zero or less uses the server default.
func (c *Client) History(ctx context.Context, limit int) (*HistoryResponse, error) {
	path := "/api/history"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}
	var hist HistoryResponse
	if err := c.getJSON(ctx, path, &hist); err != nil {
		return nil, err
	}
	return &hist, nil
}

// ClearHistory deletes all stored exchanges and metrics on the server.
func (c *Client) ClearHistory(ctx context.Context) (string, error) {
	body, err := c.do(ctx, http.MethodDelete, "/api/history", nil)
	if err != nil {
		return "", err
	}
	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return resp.Message, nil
}

// Info fetches the service description from the root endpoint.
func (c *Client) Info(ctx context.Context) (*ServiceInfo, error) {
	var info ServiceInfo
	if err := c.getJSON(ctx, "/", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

// do performs a non-streaming request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.Debugw("zenbot request failed", "method", method, "path", path, "error", err)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	logging.Debugw("zenbot response", "method", method, "path", path,
		"status", resp.StatusCode, "duration", time.Since(start))

	body, err := readResponse(resp)
	if err != nil {
		return nil, err
	}
	if !isSuccess(resp.StatusCode) {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrNoBody
	}
	return body, nil
}

// readResponse reads a body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(body) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
